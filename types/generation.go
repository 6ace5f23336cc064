package types

import (
	"bytes"
	"strings"
)

// AspectRatio is the frame shape of a generated video.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

// DefaultAspectRatio is used when a video request leaves the ratio empty.
const DefaultAspectRatio = AspectLandscape

// ParseAspectRatio validates s. An empty string yields DefaultAspectRatio.
func ParseAspectRatio(s string) (AspectRatio, error) {
	switch AspectRatio(strings.TrimSpace(s)) {
	case "":
		return DefaultAspectRatio, nil
	case AspectLandscape:
		return AspectLandscape, nil
	case AspectPortrait:
		return AspectPortrait, nil
	case AspectSquare:
		return AspectSquare, nil
	default:
		return "", NewInvalidRequestError("unsupported aspect ratio: " + s)
	}
}

// GenerationKind 区分生成阶段。
type GenerationKind string

const (
	KindLogo  GenerationKind = "logo"
	KindVideo GenerationKind = "video"
)

// GenerationRequest is one submission to the hosted generation API.
// It is treated as immutable once built; constructors copy caller buffers.
type GenerationRequest struct {
	Kind           GenerationKind `json:"kind"`
	Prompt         string         `json:"prompt"`
	SourceImage    []byte         `json:"-"`
	SourceMIMEType string         `json:"source_mime_type,omitempty"`
	AspectRatio    AspectRatio    `json:"aspect_ratio,omitempty"`
}

// NewLogoRequest builds a logo request from a free-text description.
func NewLogoRequest(description string) *GenerationRequest {
	return &GenerationRequest{
		Kind:        KindLogo,
		Prompt:      description,
		AspectRatio: AspectSquare,
	}
}

// NewVideoRequest builds a video request animating image.
func NewVideoRequest(prompt string, image []byte, mimeType string, aspect AspectRatio) *GenerationRequest {
	if mimeType == "" {
		mimeType = "image/png"
	}
	if aspect == "" {
		aspect = DefaultAspectRatio
	}
	return &GenerationRequest{
		Kind:           KindVideo,
		Prompt:         prompt,
		SourceImage:    bytes.Clone(image),
		SourceMIMEType: mimeType,
		AspectRatio:    aspect,
	}
}

// LogoArtifact 是 logo 阶段的产物：PNG 与 SVG 两部分。
// 上传的 logo 只有栅格部分。
type LogoArtifact struct {
	PNG      []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	SVG      string `json:"svg,omitempty"`
	Uploaded bool   `json:"uploaded"`
}

// Complete reports whether both raster and vector parts are present.
func (a *LogoArtifact) Complete() bool {
	return a != nil && len(a.PNG) > 0 && a.SVG != ""
}

// HasSVG reports whether a vector rendition is available for download.
func (a *LogoArtifact) HasSVG() bool {
	return a != nil && a.SVG != ""
}

// VideoArtifact holds the downloaded video payload.
type VideoArtifact struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}
