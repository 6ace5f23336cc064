package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/BaSui01/logomotion/api/handlers"
	"github.com/BaSui01/logomotion/config"
	"github.com/BaSui01/logomotion/internal/metrics"
	"github.com/BaSui01/logomotion/internal/server"
	"github.com/BaSui01/logomotion/internal/telemetry"
	"github.com/BaSui01/logomotion/internal/tlsutil"
	"github.com/BaSui01/logomotion/llm"
	"github.com/BaSui01/logomotion/llm/generation"
	"github.com/BaSui01/logomotion/llm/image"
	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/llm/providers"
	"github.com/BaSui01/logomotion/llm/vector"
	"github.com/BaSui01/logomotion/llm/video"
	"github.com/BaSui01/logomotion/workflow"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 Logomotion 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	otel   *telemetry.Providers

	metricsNamespace string

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// 向导
	credentials *llm.CredentialStore
	controller  *workflow.Controller

	// Handlers
	healthHandler *handlers.HealthHandler
	studioHandler *handlers.StudioHandler

	// 指标收集器
	metricsCollector *metrics.Collector

	// 后台生成任务的根 context，关闭时取消
	baseCancel context.CancelFunc

	// Rate limiter 生命周期管理
	rateLimiterCancel context.CancelFunc
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger, otel *telemetry.Providers) *Server {
	return &Server{
		cfg:              cfg,
		logger:           logger,
		otel:             otel,
		metricsNamespace: "logomotion",
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	// 1. 初始化指标收集器
	s.metricsCollector = metrics.NewCollector(s.metricsNamespace, s.logger)

	// 2. 组装生成链路与工作流
	s.initStudio()

	// 3. 初始化 Handlers
	s.initHandlers()

	// 4. 启动 Metrics 服务器（就绪检查依赖它，先于 HTTP 启动）
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	// 5. 启动 HTTP 服务器
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.String("http_addr", s.httpManager.Addr()),
		zap.String("metrics_addr", s.metricsManager.Addr()),
	)

	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initStudio 组装 Provider → Poller → generation.Client → workflow.Controller
func (s *Server) initStudio() {
	gcfg := s.cfg.Gemini
	vcfg := s.cfg.Video

	// 凭据统一由 CredentialStore 提供，Provider 自身不持有 key
	base := func(model string) providers.BaseProviderConfig {
		return providers.BaseProviderConfig{
			BaseURL: gcfg.BaseURL,
			Model:   model,
			Timeout: gcfg.Timeout,
		}
	}

	images := image.NewImagenProvider(image.ImagenConfig{BaseProviderConfig: base(gcfg.ImageModel)})
	vectors := vector.NewGeminiProvider(vector.GeminiConfig{BaseProviderConfig: base(gcfg.SVGModel)})
	videos := video.NewVeoProvider(video.VeoConfig{
		BaseProviderConfig: base(gcfg.VideoModel),
		Resolution:         vcfg.Resolution,
		DownloadTimeout:    vcfg.DownloadTimeout,
	})

	poller := job.NewPoller(videos, job.Config{
		PollInterval:    vcfg.PollInterval,
		MessageInterval: vcfg.MessageInterval,
		MaxWait:         vcfg.MaxWait,
		Messages:        vcfg.Messages,
	}, s.logger).WithObserver(s.metricsCollector)

	s.credentials = llm.NewCredentialStore(gcfg.APIKey)

	client := generation.NewClient(generation.Deps{
		Images:      images,
		Vectors:     vectors,
		Videos:      videos,
		Poller:      poller,
		Credentials: s.credentials,
		Recorder:    s.metricsCollector,
	}, s.logger)

	s.controller = workflow.NewController(client, s.credentials, s.credentials, s.logger)
	s.controller.Subscribe(func(ev workflow.Event) {
		s.metricsCollector.RecordWorkflowEvent(string(ev.Type))
	})

	s.logger.Info("Studio initialized",
		zap.String("image_model", gcfg.ImageModel),
		zap.String("svg_model", gcfg.SVGModel),
		zap.String("video_model", gcfg.VideoModel),
		zap.Bool("credential_selected", s.credentials.APIKey() != ""),
	)
}

// initHandlers 初始化所有 handlers
func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewUpstreamHealthCheck(
		"gemini_api", s.cfg.Gemini.BaseURL, tlsutil.SecureHTTPClient(5*time.Second)))
	s.healthHandler.RegisterCheck(handlers.NewFuncHealthCheck("metrics_server", func(context.Context) error {
		if s.metricsManager == nil || !s.metricsManager.IsRunning() {
			return errors.New("metrics server is not running")
		}
		return nil
	}))

	baseCtx, cancel := context.WithCancel(context.Background())
	s.baseCancel = cancel

	s.studioHandler = handlers.NewStudioHandler(baseCtx, s.controller, s.cfg.Server.MaxUploadBytes, s.logger).
		WithOriginPatterns(originPatterns(s.cfg.Server.CORSAllowedOrigins)).
		WithStreamObserver(s.metricsCollector)

	s.logger.Info("Handlers initialized")
}

// originPatterns 将 CORS 来源转换为 WebSocket 允许的 host 模式
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// buildHandler 注册路由并构建中间件链
func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// 向导 API
	s.studioHandler.Register(mux)

	skipAuthPaths := []string{"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics"}
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	return Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		MetricsMiddleware(s.metricsCollector),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(rateLimiterCtx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, s.logger),
		APIKeyAuth(s.cfg.Server.APIKeys, skipAuthPaths, s.cfg.Server.AllowQueryAPIKey, s.logger),
	)
}

// startHTTPServer 启动 HTTP 服务器
func (s *Server) startHTTPServer() error {
	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(s.buildHandler(), serverConfig, s.logger)
	s.httpManager.OnShutdown(s.studioHandler.CloseStreams)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.String("addr", s.httpManager.Addr()))
	return nil
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

// startMetricsServer 启动 Metrics 服务器
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.String("addr", s.metricsManager.Addr()))
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}

	s.Shutdown()
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	// 1. 关闭 HTTP 服务器（进度流通过 OnShutdown 回调关闭）
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 2. 取消后台生成任务并等待其退出
	if s.baseCancel != nil {
		s.baseCancel()
	}
	if s.studioHandler != nil {
		s.studioHandler.Wait()
	}

	// 3. 停止 rate limiter 清理 goroutine
	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	// 4. 关闭 Metrics 服务器
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	// 5. 刷新遥测数据
	if s.otel != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.otel.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
