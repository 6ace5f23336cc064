// Copyright 2026 logomotion Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 logomotion 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 断言工具: AssertJSONEqual / AssertNoError / AssertError / AssertContains 等
  - 异步断言: AssertEventuallyTrue / AssertEventuallyEqual，
    支持超时轮询等待条件满足
  - 托管 API 替身: FakeGeminiAPI 基于 httptest 模拟 Imagen、Gemini、
    Veo 与文件下载，记录每类调用次数与携带的 API Key

# 子包

  - testutil/mocks: MockImageProvider、MockVectorProvider、MockVideoBackend，
    支持错误注入、延迟与调用记录
  - testutil/fixtures: PNG/MP4/SVG 样例载荷与各接口响应体工厂

# 使用示例

	api := testutil.NewFakeGeminiAPI(t)
	api.PendingPolls = 2
	provider := video.NewVeoProvider(cfg).WithHTTPClient(api.Client())
*/
package testutil
