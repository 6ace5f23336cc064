// Package vector generates SVG logo markup with a text/vision model.
package vector

import (
	"context"
	"time"
)

// GenerateRequest 描述一次 SVG 生成。ReferenceImage 非空时走图像转矢量模式。
type GenerateRequest struct {
	Description       string `json:"description"`
	Model             string `json:"model,omitempty"`
	ReferenceImage    []byte `json:"-"`
	ReferenceMIMEType string `json:"reference_mime_type,omitempty"`
}

// GenerateResponse carries sanitized markup and the raw model text.
type GenerateResponse struct {
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	SVG       string    `json:"svg"`
	Raw       string    `json:"raw,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider 定义 SVG 生成提供者接口.
type Provider interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
}
