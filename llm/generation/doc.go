/*
包 generation 把两个领域操作翻译为托管 API 调用：

  - GenerateLogo：并行调用栅格生成（image.Provider）与 SVG 生成
    （vector.Provider），两部分都必须成功，否则返回 PARTIAL_ARTIFACT。
  - GenerateVideo：通过 job.Poller 提交并等待单个视频任务，然后带凭据
    下载结果引用。

两个操作在发起任何网络调用之前都会检查凭据，缺失时返回
CONFIGURATION_ERROR。每次调用包在一个 OpenTelemetry span 中，并通过
Recorder 记录结果与耗时。
*/
package generation
