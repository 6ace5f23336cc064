// Copyright (c) logomotion Authors.
// Licensed under the MIT License.

/*
Package types 提供 logomotion 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 llm、workflow、api 等上层
模块提供统一的类型契约，以避免循环依赖。

# 核心类型

  - GenerationRequest — 一次提交给托管生成服务的请求（logo 或 video），提交后不可变
  - AspectRatio       — 视频宽高比（16:9、9:16、1:1）
  - LogoArtifact      — logo 产物（PNG + SVG），两部分齐全才算完整
  - VideoArtifact     — 下载得到的视频字节
  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码、Retryable、Provider 标记

# 错误分类

  - CONFIGURATION_ERROR — 凭据缺失，任何网络调用之前即失败
  - SUBMISSION_ERROR    — 托管服务同步拒绝请求
  - JOB_FAILED          — 异步任务以失败终止
  - MISSING_RESULT      — 任务成功但没有结果引用
  - DOWNLOAD_ERROR      — 结果下载返回非 2xx
  - PARTIAL_ARTIFACT    — logo 只产生了 PNG 或 SVG 之一

# 主要能力

  - Context 传播：WithRequestID / WithTraceID
  - 错误工具链：AsError / IsErrorCode / GetErrorCode / Message
*/
package types
