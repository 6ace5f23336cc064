// Copyright (c) logomotion Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 Logomotion HTTP API 的请求处理器实现。

# 概述

handlers 包实现了 logo → 视频向导的全部 HTTP 端点，
包括状态查询、logo 生成与上传、视频生成、凭据选择、产物下载、
WebSocket 进度流以及健康检查。所有 Handler 均遵循标准 net/http 接口。

# 核心类型

  - StudioHandler    — 向导端点，生成任务在后台执行，?wait=true 时同步等待
  - HealthHandler    — 服务健康检查（/health, /healthz, /ready）
  - Response         — 统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo        — 结构化错误信息，含 code、message、retryable 标记
  - ResponseWriter   — 包装 http.ResponseWriter 以捕获状态码
  - HealthCheck      — 可插拔健康检查接口（FuncHealthCheck、UpstreamHealthCheck）

# 主要能力

  - 统一响应格式：WriteSuccess / WriteError / WriteAPIError 辅助函数
  - 请求验证：DecodeJSONBody（1 MB 限制 + 严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码自动映射（4xx/5xx）
  - 进度流：/api/v1/progress 首条推送快照，之后推送每次状态变化
  - 产物下载：PNG、SVG、MP4 以附件形式返回
*/
package handlers
