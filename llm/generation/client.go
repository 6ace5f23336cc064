package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/logomotion/llm"
	"github.com/BaSui01/logomotion/llm/image"
	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/llm/vector"
	"github.com/BaSui01/logomotion/llm/video"
	"github.com/BaSui01/logomotion/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/BaSui01/logomotion/llm/generation"

// DefaultVideoPrompt is used when the caller leaves the animation prompt empty.
const DefaultVideoPrompt = "A cool, dynamic animation of this logo."

// Recorder 记录每次生成的结果与耗时，通常由 internal/metrics.Collector 实现。
type Recorder interface {
	RecordGeneration(kind, status string, duration time.Duration)
}

// Deps 生成客户端依赖。Poller 为空时基于 Videos 与默认配置创建。
type Deps struct {
	Images      image.Provider
	Vectors     vector.Provider
	Videos      video.JobBackend
	Poller      *job.Poller
	Credentials llm.CredentialSource
	Recorder    Recorder
}

// Client translates "generate a logo" and "generate a video" into calls
// against the hosted generation API.
type Client struct {
	images      image.Provider
	vectors     vector.Provider
	videos      video.JobBackend
	poller      *job.Poller
	credentials llm.CredentialSource
	recorder    Recorder
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewClient creates a generation client.
func NewClient(deps Deps, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	poller := deps.Poller
	if poller == nil && deps.Videos != nil {
		poller = job.NewPoller(deps.Videos, job.DefaultConfig(), logger)
	}
	return &Client{
		images:      deps.Images,
		vectors:     deps.Vectors,
		videos:      deps.Videos,
		poller:      poller,
		credentials: deps.Credentials,
		recorder:    deps.Recorder,
		tracer:      otel.Tracer(instrumentationName),
		logger:      logger.With(zap.String("component", "generation")),
	}
}

// LogoPrompt is the raster prompt built from a free-text description.
func LogoPrompt(description string) string {
	return fmt.Sprintf(`A professional, modern, minimalist logo for a company that does "%s". Flat design, vector style, on a transparent background, high contrast, PNG format.`, description)
}

// authorize 在任何网络调用之前检查凭据，并把它写入请求级 context。
func (c *Client) authorize(ctx context.Context) (context.Context, error) {
	var key string
	if c.credentials != nil {
		key = c.credentials.APIKey()
	}
	if key == "" {
		return ctx, types.NewConfigurationError("API key is not configured. Set GEMINI_API_KEY or select an API key.")
	}
	return llm.WithCredentialOverride(ctx, llm.CredentialOverride{APIKey: key}), nil
}

// GenerateLogo runs the raster and vector calls in parallel from description
// alone. Both parts are required: a missing part fails the whole call and no
// partial artifact is returned.
func (c *Client) GenerateLogo(ctx context.Context, description string) (art *types.LogoArtifact, err error) {
	req := types.NewLogoRequest(description)
	ctx, span := c.tracer.Start(ctx, "generation.logo",
		trace.WithAttributes(attribute.String("generation.kind", string(req.Kind))))
	start := time.Now()
	defer func() { c.finish(span, types.KindLogo, start, err) }()

	ctx, err = c.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if req.Prompt == "" {
		return nil, types.NewInvalidRequestError("logo description must not be empty")
	}

	var (
		png     []byte
		pngMIME string
		svg     string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := c.images.Generate(gctx, &image.GenerateRequest{
			Prompt:         LogoPrompt(req.Prompt),
			N:              1,
			AspectRatio:    string(req.AspectRatio),
			OutputMIMEType: "image/png",
		})
		if err != nil {
			return err
		}
		png, pngMIME, err = resp.First()
		return err
	})
	g.Go(func() error {
		resp, err := c.vectors.Generate(gctx, &vector.GenerateRequest{Description: req.Prompt})
		if err != nil {
			return err
		}
		svg = vector.StripFences(resp.SVG)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Warn("logo generation failed", zap.Error(err))
		return nil, err
	}

	// 模型可能返回拒绝或说明文字而不是标记，这类回复同样视为缺失。
	hasSVG := vector.LooksLikeSVG(svg)
	if svg != "" && !hasSVG {
		c.logger.Warn("vector reply is not SVG markup", zap.Int("bytes", len(svg)))
	}

	switch {
	case len(png) == 0 && !hasSVG:
		return nil, types.NewError(types.ErrPartialArtifact, "Logo generation failed to return an image and/or SVG.")
	case len(png) == 0:
		return nil, types.NewError(types.ErrPartialArtifact, "Failed to generate the PNG logo image.")
	case !hasSVG:
		return nil, types.NewError(types.ErrPartialArtifact, "Successfully generated PNG, but failed to generate the SVG.")
	}
	if pngMIME == "" {
		pngMIME = "image/png"
	}

	c.logger.Info("logo generated", zap.Int("png_bytes", len(png)), zap.Int("svg_bytes", len(svg)))
	return &types.LogoArtifact{PNG: png, MIMEType: pngMIME, SVG: svg}, nil
}

// GenerateVideo submits a single-video job animating image, waits for it via
// the poller and downloads the result. onProgress receives the poller's
// rotating messages.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, img []byte, mimeType string, aspect types.AspectRatio, onProgress job.ProgressFunc) (art *types.VideoArtifact, err error) {
	if prompt == "" {
		prompt = DefaultVideoPrompt
	}
	req := types.NewVideoRequest(prompt, img, mimeType, aspect)
	ctx, span := c.tracer.Start(ctx, "generation.video",
		trace.WithAttributes(
			attribute.String("generation.kind", string(req.Kind)),
			attribute.String("generation.aspect_ratio", string(req.AspectRatio)),
		))
	start := time.Now()
	defer func() { c.finish(span, types.KindVideo, start, err) }()

	ctx, err = c.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.SourceImage) == 0 {
		return nil, types.NewInvalidRequestError("No logo image available to animate.")
	}
	if c.poller == nil || c.videos == nil {
		return nil, types.NewConfigurationError("video backend is not configured")
	}

	res, err := c.poller.Run(ctx, req, onProgress)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("job.polls", res.Polls))

	data, videoMIME, err := c.videos.Download(ctx, res.ResultRef)
	if err != nil {
		return nil, err
	}
	c.logger.Info("video generated",
		zap.String("handle", string(res.Handle)),
		zap.Int("polls", res.Polls),
		zap.Int("bytes", len(data)))
	return &types.VideoArtifact{Data: data, MIMEType: videoMIME}, nil
}

func (c *Client) finish(span trace.Span, kind types.GenerationKind, start time.Time, err error) {
	defer span.End()
	status := "success"
	if err != nil {
		status = string(types.GetErrorCode(err))
		if status == "" {
			status = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, types.Message(err))
	}
	if c.recorder != nil {
		c.recorder.RecordGeneration(string(kind), status, time.Since(start))
	}
}
