// Package config 提供 Logomotion 的配置加载。
//
// 配置优先级: 默认值 → YAML 文件 → .env 文件 → 环境变量。
// 环境变量统一使用 LOGOMOTION_ 前缀，例如 LOGOMOTION_GEMINI_API_KEY。
// 托管 API 凭据另外兼容 GEMINI_API_KEY 与 API_KEY。
package config
