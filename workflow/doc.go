// Copyright (c) logomotion Authors.
// Licensed under the MIT License.

/*
Package workflow 持有向导的 UI 可见状态并编排两个生成阶段。

# 状态机

	generate --(logo 生成成功 / 上传)--> animate
	animate  --(StartOver)-------------> generate

StartOver 无条件清空产物、错误、忙碌标记与进度，并使重置前发起的请求
结果在返回时被丢弃。

# 核心类型

  - Controller：唯一的 State 持有者，所有变更都经过先校验阶段的方法。
  - State：step、忙碌标记、logo/视频产物、错误、凭据提示、进度。
  - Generator：被编排的生成接口，通常为 generation.Client。
  - Classifier / ClassifyError：独立的错误分类策略，将包含
    "Requested entity was not found" 的上游错误归为凭据无效。
  - Event / Subscribe：每次状态变更后推送快照，供进度流使用。

# 并发

同一 Controller 最多各有一个 logo 请求与一个视频请求在途；重复提交返回
BUSY。阶段不匹配返回 INVALID_TRANSITION。
*/
package workflow
