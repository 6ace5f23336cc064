// Copyright (c) logomotion Authors.
// Licensed under the MIT License.

/*
包 llm 是托管生成服务接入层的根包，负责访问凭据的选择与传递。

# 概述

所有对托管 API 的调用都需要一个 API Key。本包提供进程内唯一的凭据存储，
以及通过 context 传递请求级凭据覆盖的辅助函数，子包中的 Provider 在发起
请求前通过 providers.ResolveAPIKey 读取它。

# 核心类型

  - [CredentialStore]：当前选中的凭据，同时实现 [CredentialSource] 与 [CredentialVerifier]
  - [CredentialOverride]：单次请求凭据覆盖，通过 context 传递，序列化时脱敏

# 相关子包

  - llm/providers：Gemini Developer API 公共层（配置、错误映射、JSON 调用）
  - llm/image：Imagen 栅格 logo 生成
  - llm/vector：Gemini 文本模型生成 SVG 标记
  - llm/video：Veo 视频任务的提交、查询与下载
  - llm/job：长任务轮询器与进度文案轮换
  - llm/generation：logo 与视频两条生成流水线
*/
package llm
