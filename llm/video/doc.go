// 版权所有 2024 logomotion Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 video 提供基于 Google Veo 的异步视频生成后端。

# 核心接口

  - JobBackend：job.Backend（Submit/Status）加上 Download 与 Name。
  - VeoProvider：调用 models/{model}:predictLongRunning 提交任务，
    通过 GET v1beta/{operation} 查询状态，完成后下载 generatedSamples
    中的视频 URI。

# 状态映射

  - operation.error 存在：Failed(error.message)。
  - done=false：Pending。
  - done=true 且有视频 URI：Done(uri)。
  - done=true 但被安全过滤：Failed(过滤原因)；否则 Done("")，
    由 job.Poller 判定为 MISSING_RESULT。

下载返回非 2xx 时产生 DOWNLOAD_ERROR，消息中带状态码与状态文本。
*/
package video
