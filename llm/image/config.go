package image

import (
	"time"

	"github.com/BaSui01/logomotion/llm/providers"
)

// ImagenConfig配置了Google Imagen 4供应商.
type ImagenConfig struct {
	providers.BaseProviderConfig `yaml:",inline"`
}

// 默认 ImagenConfig 返回默认 Imagen 4 配置 。
func DefaultImagenConfig() ImagenConfig {
	return ImagenConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			BaseURL: providers.DefaultGeminiBaseURL,
			Model:   "imagen-4.0-generate-001",
			Timeout: 120 * time.Second,
		},
	}
}
