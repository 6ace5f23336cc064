package image

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/logomotion/internal/tlsutil"
	"github.com/BaSui01/logomotion/llm/providers"
)

// ImagenProvider implements raster generation with Google Imagen through the
// Gemini API :predict endpoint.
type ImagenProvider struct {
	cfg    ImagenConfig
	client *http.Client
}

// NewImagenProvider creates a new Imagen provider.
func NewImagenProvider(cfg ImagenConfig) *ImagenProvider {
	def := DefaultImagenConfig()
	cfg.BaseProviderConfig = cfg.BaseProviderConfig.WithDefaults(def.Model, def.Timeout)

	return &ImagenProvider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
	}
}

// WithHTTPClient replaces the outbound client.
func (p *ImagenProvider) WithHTTPClient(c *http.Client) *ImagenProvider {
	p.client = c
	return p
}

func (p *ImagenProvider) Name() string { return "imagen" }

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParams     `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParams struct {
	SampleCount   int                  `json:"sampleCount"`
	AspectRatio   string               `json:"aspectRatio,omitempty"`
	OutputOptions *imagenOutputOptions `json:"outputOptions,omitempty"`
}

type imagenOutputOptions struct {
	MimeType string `json:"mimeType"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
		RaiFilteredReason  string `json:"raiFilteredReason,omitempty"`
	} `json:"predictions"`
}

// Generate creates images from a text prompt.
func (p *ImagenProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	n := req.N
	if n <= 0 {
		n = 1
	}

	body := imagenRequest{
		Instances: []imagenInstance{{Prompt: req.Prompt}},
		Parameters: imagenParams{
			SampleCount: n,
			AspectRatio: req.AspectRatio,
		},
	}
	if req.OutputMIMEType != "" {
		body.Parameters.OutputOptions = &imagenOutputOptions{MimeType: req.OutputMIMEType}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict", strings.TrimRight(p.cfg.BaseURL, "/"), model)

	var iResp imagenResponse
	apiKey := providers.ResolveAPIKey(ctx, p.cfg.APIKey)
	if err := providers.DoJSON(ctx, p.client, http.MethodPost, url, apiKey, p.Name(), body, &iResp); err != nil {
		return nil, err
	}

	var images []ImageData
	for _, pred := range iResp.Predictions {
		if pred.BytesBase64Encoded == "" {
			continue
		}
		mimeType := pred.MimeType
		if mimeType == "" {
			mimeType = req.OutputMIMEType
		}
		images = append(images, ImageData{
			B64JSON:  pred.BytesBase64Encoded,
			MIMEType: mimeType,
		})
	}

	return &GenerateResponse{
		Provider: p.Name(),
		Model:    model,
		Images:   images,
		Usage: ImageUsage{
			ImagesGenerated: len(images),
		},
		CreatedAt: time.Now(),
	}, nil
}
