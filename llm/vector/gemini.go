package vector

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/logomotion/internal/tlsutil"
	"github.com/BaSui01/logomotion/llm/providers"
)

// GeminiProvider 通过 models/{model}:generateContent 生成 SVG 标记。
type GeminiProvider struct {
	cfg    GeminiConfig
	client *http.Client
}

// NewGeminiProvider creates a new SVG provider.
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	def := DefaultGeminiConfig()
	cfg.BaseProviderConfig = cfg.BaseProviderConfig.WithDefaults(def.Model, def.Timeout)
	return &GeminiProvider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
	}
}

// WithHTTPClient replaces the outbound client.
func (p *GeminiProvider) WithHTTPClient(c *http.Client) *GeminiProvider {
	p.client = c
	return p
}

func (p *GeminiProvider) Name() string { return "gemini-svg" }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// Generate asks the model for SVG markup and strips code fences from the reply.
// An empty SVG field means the model returned nothing usable.
func (p *GeminiProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	var parts []geminiPart
	withRef := len(req.ReferenceImage) > 0
	if withRef {
		mimeType := req.ReferenceMIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(req.ReferenceImage),
		}})
	}
	parts = append(parts, geminiPart{Text: BuildPrompt(req.Description, withRef)})

	body := geminiRequest{Contents: []geminiContent{{Role: "user", Parts: parts}}}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(p.cfg.BaseURL, "/"), model)

	var gResp geminiResponse
	apiKey := providers.ResolveAPIKey(ctx, p.cfg.APIKey)
	if err := providers.DoJSON(ctx, p.client, http.MethodPost, url, apiKey, p.Name(), body, &gResp); err != nil {
		return nil, err
	}

	raw := gResp.text()
	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     model,
		SVG:       StripFences(raw),
		Raw:       raw,
		CreatedAt: time.Now(),
	}, nil
}

func (r *geminiResponse) text() string {
	var sb strings.Builder
	for _, c := range r.Candidates {
		for _, part := range c.Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}
