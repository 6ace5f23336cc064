package config

import "time"

// DefaultConfig 返回完整的默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Gemini:    DefaultGeminiConfig(),
		Video:     DefaultVideoConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
		MaxUploadBytes:  10 << 20,
	}
}

// DefaultGeminiConfig 返回默认托管 API 配置
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		BaseURL:    "https://generativelanguage.googleapis.com",
		ImageModel: "imagen-4.0-generate-001",
		SVGModel:   "gemini-2.5-pro",
		VideoModel: "veo-3.1-fast-generate-preview",
		Timeout:    120 * time.Second,
	}
}

// DefaultVideoConfig 返回默认视频轮询配置
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		PollInterval:    10 * time.Second,
		MessageInterval: 5 * time.Second,
		Resolution:      "720p",
		DownloadTimeout: 5 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "logomotion",
		SampleRate:   0.1,
	}
}
