package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/BaSui01/logomotion/api"
	"github.com/BaSui01/logomotion/types"
	"github.com/BaSui01/logomotion/workflow"
	"go.uber.org/zap"
)

// =============================================================================
// 🎬 向导 Handler
// =============================================================================

// Studio 是 StudioHandler 驱动的工作流，由 *workflow.Controller 实现。
type Studio interface {
	Snapshot() workflow.State
	StartLogo(ctx context.Context, description string) (*workflow.Task[*types.LogoArtifact], error)
	UploadLogo(data []byte, mimeType string) error
	StartVideo(ctx context.Context, prompt string, aspect types.AspectRatio) (*workflow.Task[*types.VideoArtifact], error)
	SelectCredential(key string) error
	StartOver() workflow.State
	Subscribe(h workflow.EventHandler) string
	Unsubscribe(id string)
}

// StreamObserver 观察进度流的打开与关闭
type StreamObserver interface {
	StreamOpened()
	StreamClosed()
}

// DefaultMaxUploadBytes 上传 logo 的默认大小上限
const DefaultMaxUploadBytes int64 = 10 << 20

// StudioHandler 向导接口处理器
type StudioHandler struct {
	studio Studio
	logger *zap.Logger

	// baseCtx 是后台生成任务的上下文，服务关闭时取消
	baseCtx   context.Context
	maxUpload int64

	originPatterns []string
	streams        StreamObserver

	tasks     sync.WaitGroup
	closing   chan struct{}
	closeOnce sync.Once
}

// NewStudioHandler 创建向导处理器。后台生成在 ctx 取消时终止。
func NewStudioHandler(ctx context.Context, studio Studio, maxUpload int64, logger *zap.Logger) *StudioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &StudioHandler{
		studio:    studio,
		logger:    logger.With(zap.String("component", "studio_handler")),
		baseCtx:   ctx,
		maxUpload: maxUpload,
		closing:   make(chan struct{}),
	}
}

// WithOriginPatterns 设置进度 WebSocket 允许的跨域来源（host 模式）
func (h *StudioHandler) WithOriginPatterns(patterns []string) *StudioHandler {
	h.originPatterns = patterns
	return h
}

// WithStreamObserver 设置进度流观察者
func (h *StudioHandler) WithStreamObserver(o StreamObserver) *StudioHandler {
	h.streams = o
	return h
}

// Register 在 mux 上注册所有向导路由
func (h *StudioHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/state", h.HandleState)
	mux.HandleFunc("POST /api/v1/logo", h.HandleGenerateLogo)
	mux.HandleFunc("POST /api/v1/logo/upload", h.HandleUploadLogo)
	mux.HandleFunc("POST /api/v1/video", h.HandleGenerateVideo)
	mux.HandleFunc("POST /api/v1/credential", h.HandleSelectCredential)
	mux.HandleFunc("POST /api/v1/reset", h.HandleReset)
	mux.HandleFunc("GET /api/v1/artifacts/{name}", h.HandleArtifact)
	mux.HandleFunc("GET /api/v1/progress", h.HandleProgress)
}

// Wait 等待所有后台生成任务结束
func (h *StudioHandler) Wait() {
	h.tasks.Wait()
}

// CloseStreams 关闭所有进度流，可重复调用
func (h *StudioHandler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// =============================================================================
// 🎯 HTTP 处理程序
// =============================================================================

// HandleState 返回当前状态
// @Summary 向导状态
// @Tags 向导
// @Produce json
// @Success 200 {object} api.StudioState
// @Router /api/v1/state [get]
func (h *StudioHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, api.NewStudioState(h.studio.Snapshot()))
}

// HandleGenerateLogo 开始生成 logo
// 默认立即返回 202，?wait=true 时等待生成完成
// @Summary 生成 logo
// @Tags 向导
// @Accept json
// @Produce json
// @Param request body api.LogoRequest true "logo 描述"
// @Success 202 {object} api.StudioState
// @Failure 409 {object} Response "生成中或步骤不符"
// @Router /api/v1/logo [post]
func (h *StudioHandler) HandleGenerateLogo(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req api.LogoRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	task, err := h.studio.StartLogo(h.baseCtx, req.Description)
	if err != nil {
		WriteAPIError(w, err, h.logger)
		return
	}
	track(h, types.KindLogo, task)
	h.respond(w, r, func() error {
		_, err := task.Wait(r.Context())
		return err
	})
}

// HandleUploadLogo 上传已有 logo，multipart 字段名为 image
// @Summary 上传 logo
// @Tags 向导
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} api.StudioState
// @Failure 413 {object} Response "文件过大"
// @Router /api/v1/logo/upload [post]
func (h *StudioHandler) HandleUploadLogo(w http.ResponseWriter, r *http.Request) {
	// multipart 头部需要少量额外空间
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+64<<10)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.writeUploadError(w, err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, types.NewInvalidRequestError("multipart field \"image\" is required").WithCause(err), h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	if int64(len(data)) > h.maxUpload {
		h.writeUploadError(w, &http.MaxBytesError{Limit: h.maxUpload})
		return
	}

	if err := h.studio.UploadLogo(data, uploadMIMEType(header.Header.Get("Content-Type"), data)); err != nil {
		WriteAPIError(w, err, h.logger)
		return
	}
	WriteSuccess(w, api.NewStudioState(h.studio.Snapshot()))
}

// HandleGenerateVideo 开始生成视频
// @Summary 生成视频
// @Tags 向导
// @Accept json
// @Produce json
// @Param request body api.VideoRequest true "动画参数"
// @Success 202 {object} api.StudioState
// @Failure 409 {object} Response "生成中或尚无 logo"
// @Failure 428 {object} Response "需要选择凭据"
// @Router /api/v1/video [post]
func (h *StudioHandler) HandleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req api.VideoRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	aspect, err := types.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		WriteAPIError(w, err, h.logger)
		return
	}

	task, err := h.studio.StartVideo(h.baseCtx, req.Prompt, aspect)
	if err != nil {
		WriteAPIError(w, err, h.logger)
		return
	}
	track(h, types.KindVideo, task)
	h.respond(w, r, func() error {
		_, err := task.Wait(r.Context())
		return err
	})
}

// HandleSelectCredential 选择托管 API 凭据
// @Summary 选择凭据
// @Tags 向导
// @Accept json
// @Produce json
// @Param request body api.CredentialRequest true "API Key"
// @Success 200 {object} api.StudioState
// @Router /api/v1/credential [post]
func (h *StudioHandler) HandleSelectCredential(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req api.CredentialRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if err := h.studio.SelectCredential(req.APIKey); err != nil {
		WriteAPIError(w, err, h.logger)
		return
	}
	WriteSuccess(w, api.NewStudioState(h.studio.Snapshot()))
}

// HandleReset 重新开始
// @Summary 重新开始
// @Tags 向导
// @Produce json
// @Success 200 {object} api.StudioState
// @Router /api/v1/reset [post]
func (h *StudioHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, api.NewStudioState(h.studio.StartOver()))
}

// HandleArtifact 以附件形式下载 logo.png、logo.svg 或 video.mp4
// @Summary 下载产物
// @Tags 向导
// @Produce octet-stream
// @Param name path string true "logo.png | logo.svg | video.mp4"
// @Success 200 {file} file
// @Failure 404 {object} Response "产物不存在"
// @Router /api/v1/artifacts/{name} [get]
func (h *StudioHandler) HandleArtifact(w http.ResponseWriter, r *http.Request) {
	snap := h.studio.Snapshot()

	var (
		data        []byte
		contentType string
		filename    string
	)
	switch name := r.PathValue("name"); name {
	case "logo.png":
		if snap.Logo != nil && len(snap.Logo.PNG) > 0 {
			data, contentType = snap.Logo.PNG, snap.Logo.MIMEType
			filename = "logo" + imageExtension(contentType)
		}
	case "logo.svg":
		if snap.Logo.HasSVG() {
			data, contentType, filename = []byte(snap.Logo.SVG), "image/svg+xml", name
		}
	case "video.mp4":
		if snap.HasVideo() {
			data, contentType, filename = snap.Video.Data, snap.Video.MIMEType, name
		}
	default:
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound, "unknown artifact "+strconv.Quote(name), h.logger)
		return
	}
	if data == nil {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound, "artifact is not available yet", h.logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, bytes.NewReader(data))
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// respond 返回 202，或在 ?wait=true 时等待任务完成后返回最终状态
func (h *StudioHandler) respond(w http.ResponseWriter, r *http.Request, wait func() error) {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("wait")); !ok {
		WriteSuccessStatus(w, http.StatusAccepted, api.NewStudioState(h.studio.Snapshot()))
		return
	}
	if err := wait(); err != nil {
		WriteAPIError(w, err, h.logger)
		return
	}
	WriteSuccess(w, api.NewStudioState(h.studio.Snapshot()))
}

// track 跟踪后台任务，Wait 用于优雅关闭
func track[T any](h *StudioHandler, kind types.GenerationKind, task *workflow.Task[T]) {
	h.tasks.Add(1)
	go func() {
		defer h.tasks.Done()
		if _, err := task.Wait(context.Background()); err != nil {
			h.logger.Debug("background generation ended with error",
				zap.String("kind", string(kind)),
				zap.String("code", string(types.GetErrorCode(err))),
			)
		}
	}()
}

func (h *StudioHandler) writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		WriteError(w, types.NewInvalidRequestError("uploaded image exceeds "+strconv.FormatInt(h.maxUpload, 10)+" bytes").
			WithHTTPStatus(http.StatusRequestEntityTooLarge), h.logger)
		return
	}
	WriteError(w, types.NewInvalidRequestError("invalid multipart upload").WithCause(err), h.logger)
}

// uploadMIMEType 优先使用客户端声明的 image/* 类型，否则按内容嗅探
func uploadMIMEType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	return http.DetectContentType(data)
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
