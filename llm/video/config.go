package video

import (
	"time"

	"github.com/BaSui01/logomotion/llm/providers"
)

// VeoConfig配置了谷歌Veo视频生成供应商.
type VeoConfig struct {
	providers.BaseProviderConfig `yaml:",inline"`
	Resolution                   string `json:"resolution,omitempty" yaml:"resolution,omitempty"` // 720p, 1080p
	// DownloadTimeout bounds the artifact fetch; generation itself is polled.
	DownloadTimeout time.Duration `json:"download_timeout,omitempty" yaml:"download_timeout,omitempty"`
}

// 默认 VeoConfig 返回默认 Veo 配置 。
func DefaultVeoConfig() VeoConfig {
	return VeoConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			BaseURL: providers.DefaultGeminiBaseURL,
			Model:   "veo-3.1-fast-generate-preview",
			Timeout: 60 * time.Second,
		},
		Resolution:      "720p",
		DownloadTimeout: 300 * time.Second,
	}
}
