// 包图像提供统一的图像生成提供者接口.
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
)

// 生成请求代表图像生成请求 。
type GenerateRequest struct {
	Prompt         string            `json:"prompt"`
	Model          string            `json:"model,omitempty"`
	N              int               `json:"n,omitempty"`            // Number of images
	AspectRatio    string            `json:"aspect_ratio,omitempty"` // 1:1, 16:9, 9:16 ...
	OutputMIMEType string            `json:"output_mime_type,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// 生成响应(Generate Response)代表图像生成的响应.
type GenerateResponse struct {
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	Images    []ImageData `json:"images"`
	Usage     ImageUsage  `json:"usage,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ImageData代表生成的图像.
type ImageData struct {
	B64JSON  string `json:"b64_json,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// Bytes decodes the base64 payload.
func (d ImageData) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(d.B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}

// First returns the first non-empty decoded image, or nil when there is none.
func (r *GenerateResponse) First() ([]byte, string, error) {
	if r == nil {
		return nil, "", nil
	}
	for _, img := range r.Images {
		if img.B64JSON == "" {
			continue
		}
		data, err := img.Bytes()
		if err != nil {
			return nil, "", err
		}
		if len(data) > 0 {
			return data, img.MIMEType, nil
		}
	}
	return nil, "", nil
}

// ImageUsage代表使用统计.
type ImageUsage struct {
	ImagesGenerated int `json:"images_generated"`
}

// 提供方定义了图像生成提供者接口.
type Provider interface {
	// 从文本提示生成图像 。
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// 名称返回提供者名称 。
	Name() string
}
