package video

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BaSui01/logomotion/internal/tlsutil"
	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/llm/providers"
	"github.com/BaSui01/logomotion/types"
)

// VeoProvider使用Google Veo 3.1执行视频生成.
// Submit/Status 对应 :predictLongRunning 与 operations 查询，轮询本身交给 job.Poller。
type VeoProvider struct {
	cfg            VeoConfig
	client         *http.Client
	downloadClient *http.Client
}

// NewVeoProvider创建了一个新的Veo视频提供商.
func NewVeoProvider(cfg VeoConfig) *VeoProvider {
	def := DefaultVeoConfig()
	cfg.BaseProviderConfig = cfg.BaseProviderConfig.WithDefaults(def.Model, def.Timeout)
	if cfg.Resolution == "" {
		cfg.Resolution = def.Resolution
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = def.DownloadTimeout
	}

	return &VeoProvider{
		cfg:            cfg,
		client:         tlsutil.SecureHTTPClient(cfg.Timeout),
		downloadClient: tlsutil.SecureHTTPClient(cfg.DownloadTimeout),
	}
}

// WithHTTPClient replaces both outbound clients.
func (p *VeoProvider) WithHTTPClient(c *http.Client) *VeoProvider {
	p.client = c
	p.downloadClient = c
	return p
}

func (p *VeoProvider) Name() string { return "veo" }

type veoRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParams     `json:"parameters"`
}

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
}

type veoParams struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	SampleCount int    `json:"sampleCount"`
}

type veoOperation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
			RaiMediaFilteredCount   int      `json:"raiMediaFilteredCount,omitempty"`
			RaiMediaFilteredReasons []string `json:"raiMediaFilteredReasons,omitempty"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Submit starts a single-video job animating req.SourceImage.
func (p *VeoProvider) Submit(ctx context.Context, req *types.GenerationRequest) (job.Handle, error) {
	if req == nil {
		return "", types.NewInvalidRequestError("nil generation request")
	}

	instance := veoInstance{Prompt: req.Prompt}
	if len(req.SourceImage) > 0 {
		mimeType := req.SourceMIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		instance.Image = &veoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.SourceImage),
			MimeType:           mimeType,
		}
	}

	body := veoRequest{
		Instances: []veoInstance{instance},
		Parameters: veoParams{
			AspectRatio: string(req.AspectRatio),
			Resolution:  p.cfg.Resolution,
			SampleCount: 1,
		},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predictLongRunning", p.baseURL(), p.cfg.Model)

	var op veoOperation
	apiKey := providers.ResolveAPIKey(ctx, p.cfg.APIKey)
	if err := providers.DoJSON(ctx, p.client, http.MethodPost, url, apiKey, p.Name(), body, &op); err != nil {
		return "", err
	}
	return job.Handle(op.Name), nil
}

// Status queries the operation once.
func (p *VeoProvider) Status(ctx context.Context, h job.Handle) (job.Status, error) {
	url := fmt.Sprintf("%s/v1beta/%s", p.baseURL(), strings.TrimLeft(string(h), "/"))

	var op veoOperation
	apiKey := providers.ResolveAPIKey(ctx, p.cfg.APIKey)
	if err := providers.DoJSON(ctx, p.client, http.MethodGet, url, apiKey, p.Name(), nil, &op); err != nil {
		return job.Status{}, err
	}
	return op.status(), nil
}

func (op *veoOperation) status() job.Status {
	if op.Error != nil {
		return job.Failed(op.Error.Message)
	}
	if !op.Done {
		return job.Pending()
	}
	if op.Response == nil {
		return job.Done("")
	}
	resp := op.Response.GenerateVideoResponse
	for _, s := range resp.GeneratedSamples {
		if s.Video.URI != "" {
			return job.Done(s.Video.URI)
		}
	}
	if len(resp.RaiMediaFilteredReasons) > 0 {
		return job.Failed(strings.Join(resp.RaiMediaFilteredReasons, "; "))
	}
	return job.Done("")
}

// Download fetches the finished video. The URI requires the same API key.
func (p *VeoProvider) Download(ctx context.Context, ref string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", types.NewError(types.ErrDownload, "invalid download reference").WithCause(err)
	}
	providers.GoogleAPIKeyHeaders(httpReq, providers.ResolveAPIKey(ctx, p.cfg.APIKey))

	resp, err := p.downloadClient.Do(httpReq)
	if err != nil {
		return nil, "", types.NewError(types.ErrDownload, "Failed to download video").
			WithCause(err).
			WithProvider(p.Name())
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", types.NewError(types.ErrDownload,
			fmt.Sprintf("Failed to download video: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))).
			WithHTTPStatus(resp.StatusCode).
			WithProvider(p.Name())
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", types.NewError(types.ErrDownload, "Failed to read video payload").WithCause(err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = VideoFormatMP4.MIMEType()
	}
	return data, mimeType, nil
}

func (p *VeoProvider) baseURL() string {
	return strings.TrimRight(p.cfg.BaseURL, "/")
}
