package providers

import "time"

// DefaultGeminiBaseURL 是 Gemini Developer API 的默认入口。
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// BaseProviderConfig 所有 Provider 共享的基础配置字段。
// 通过嵌入此结构体，各 Provider 的 Config 自动获得 APIKey、BaseURL、Model、Timeout 四个字段，
// 避免重复定义。
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// WithDefaults fills empty fields from the given fallbacks.
func (c BaseProviderConfig) WithDefaults(model string, timeout time.Duration) BaseProviderConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultGeminiBaseURL
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.Timeout == 0 {
		c.Timeout = timeout
	}
	return c
}
