// Copyright (c) logomotion Authors.
// Licensed under the MIT License.

/*
Package main 提供 Logomotion 服务端程序入口。

# 概述

cmd/logomotion 是 logo → 视频向导的可执行入口，提供 HTTP API 服务、
健康检查和版本查询等子命令。程序支持 YAML 配置文件与 .env 加载、
结构化日志（zap）、Prometheus 指标采集以及 OpenTelemetry 追踪。

# 核心类型

  - Server               — 主服务器，组装生成链路并管理 HTTP、Metrics 双端口及优雅关闭
  - Middleware           — HTTP 中间件函数签名 func(http.Handler) http.Handler
  - metricsResponseWriter — 记录状态码与响应大小，支持 WebSocket 升级

# 主要能力

  - 子命令：serve（启动服务）、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、OTelTracing、Metrics、
    RequestLogger、CORS、RateLimiter（基于 IP）、APIKeyAuth（X-API-Key / query 参数）
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 优雅关闭：信号监听 → 关闭进度流与 HTTP → 取消后台生成并等待 → 关闭 Metrics → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
