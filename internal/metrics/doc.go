/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖
HTTP、生成任务、视频轮询与工作流四个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离。

# 主要能力

  - HTTP 指标：请求总数、请求耗时、请求/响应体大小，
    按 method/path/status 分组，状态码归类为 2xx/3xx/4xx/5xx。
  - 生成指标：logo 与视频生成次数和耗时，按 kind/status 分组。
    Collector 实现 generation.Recorder。
  - 轮询指标：视频任务状态查询次数，按 pending/done/failed/error 分组。
    Collector 实现 job.PollObserver。
  - 工作流指标：状态事件计数与活跃进度流数量。
*/
package metrics
