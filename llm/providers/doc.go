// Copyright 2026 logomotion Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供托管生成服务（Gemini Developer API）适配的公共基础层。
image、vector、video 三个子能力包依赖本包完成鉴权、错误映射与 JSON 调用。

# 核心类型

  - BaseProviderConfig — 所有 Provider 共享的基础配置（APIKey、BaseURL、Model、Timeout）

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为语义化的 types.Error（含 Retryable 标记）
  - ReadErrorMessage — 解析 Google 风格错误体 {"error":{"message":...}}
  - ResolveAPIKey — 请求级凭据覆盖优先于配置中的 APIKey
  - DoJSON — 发送 JSON 请求并解码 2xx 响应
*/
package providers
