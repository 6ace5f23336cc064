package vector

import (
	"time"

	"github.com/BaSui01/logomotion/llm/providers"
)

// GeminiConfig 配置 SVG 生成所用的 Gemini 文本模型。
type GeminiConfig struct {
	providers.BaseProviderConfig `yaml:",inline"`
}

// DefaultGeminiConfig returns gemini-2.5-pro with a 120s timeout.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			BaseURL: providers.DefaultGeminiBaseURL,
			Model:   "gemini-2.5-pro",
			Timeout: 120 * time.Second,
		},
	}
}
