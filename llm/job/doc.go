/*
包 job 驱动托管 API 上的单个异步生成任务：提交、周期轮询、进度提示、
终态结果提取。

# 两个计时器

  - 轮询计时器：每 PollInterval（默认 10s）查询一次 Backend.Status。
  - 消息计时器：每 MessageInterval（默认 5s）在独立 goroutine 中循环推送
    DefaultMessages，第 i 次为 list[i mod N]，启动时立即推送 list[0]。

两个计时器互不依赖。任何退出路径（完成、失败、查询出错、ctx 取消、
MaxWait 超时）都会恰好停止一次消息计时器，并在返回前等待其 goroutine 退出，
因此返回后不会再回调 onProgress。

# 错误

  - 提交被同步拒绝：SUBMISSION_ERROR（保留上游消息）。
  - 终态 Failed：JOB_FAILED，原因原样透传。
  - 终态 Done 但无结果引用：MISSING_RESULT。
  - 超过 MaxWait：TIMEOUT。
*/
package job
