package api

import (
	"github.com/BaSui01/logomotion/types"
	"github.com/BaSui01/logomotion/workflow"
)

// 下载地址
const (
	LogoPNGPath  = "/api/v1/artifacts/logo.png"
	LogoSVGPath  = "/api/v1/artifacts/logo.svg"
	VideoMP4Path = "/api/v1/artifacts/video.mp4"
)

// =============================================================================
// 工作流请求类型
// =============================================================================

// LogoRequest 根据文字描述生成 logo。
// @Description logo 生成请求
type LogoRequest struct {
	// 品牌或产品的文字描述
	Description string `json:"description" example:"A minimalist coffee shop logo"`
}

// VideoRequest 将当前 logo 制作成动画。
// @Description 视频生成请求
type VideoRequest struct {
	// 动画描述，为空时使用默认描述
	Prompt string `json:"prompt,omitempty" example:"A cool, dynamic animation of this logo."`
	// 画面比例：16:9、9:16 或 1:1
	AspectRatio string `json:"aspect_ratio,omitempty" example:"16:9"`
}

// CredentialRequest 选择托管 API 凭据。
// @Description 凭据选择请求
type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

// =============================================================================
// 工作流状态类型
// =============================================================================

// LogoInfo 描述当前 logo，二进制内容通过下载地址获取。
type LogoInfo struct {
	MIMEType string `json:"mime_type"`
	Uploaded bool   `json:"uploaded"`
	ImageURL string `json:"image_url"`
	SVGURL   string `json:"svg_url,omitempty"`
	// 内联 SVG 源码，便于直接渲染
	SVG string `json:"svg,omitempty"`
}

// VideoInfo 描述已完成的视频。
type VideoInfo struct {
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
	URL      string `json:"url"`
}

// StudioState 是工作流状态的对外视图。
// @Description 向导当前状态
type StudioState struct {
	Step            string     `json:"step" example:"generate"`
	GeneratingLogo  bool       `json:"generating_logo"`
	GeneratingVideo bool       `json:"generating_video"`
	Logo            *LogoInfo  `json:"logo,omitempty"`
	Video           *VideoInfo `json:"video,omitempty"`
	Error           string     `json:"error,omitempty"`
	NeedsCredential bool       `json:"needs_credential"`
	Progress        string     `json:"progress,omitempty"`
	Revision        uint64     `json:"revision"`
}

// NewStudioState converts a workflow snapshot into its API view.
func NewStudioState(s workflow.State) StudioState {
	out := StudioState{
		Step:            string(s.Step),
		GeneratingLogo:  s.GeneratingLogo,
		GeneratingVideo: s.GeneratingVideo,
		Error:           s.Error,
		NeedsCredential: s.NeedsCredential,
		Progress:        s.Progress,
		Revision:        s.Revision,
	}
	if s.Logo != nil && len(s.Logo.PNG) > 0 {
		out.Logo = newLogoInfo(s.Logo)
	}
	if s.HasVideo() {
		out.Video = &VideoInfo{
			MIMEType: s.Video.MIMEType,
			Size:     len(s.Video.Data),
			URL:      VideoMP4Path,
		}
	}
	return out
}

func newLogoInfo(l *types.LogoArtifact) *LogoInfo {
	info := &LogoInfo{
		MIMEType: l.MIMEType,
		Uploaded: l.Uploaded,
		ImageURL: LogoPNGPath,
	}
	if l.HasSVG() {
		info.SVGURL = LogoSVGPath
		info.SVG = l.SVG
	}
	return info
}

// StudioEvent 是进度流推送的一条消息。
// @Description 工作流事件
type StudioEvent struct {
	Type  string      `json:"type" example:"progress"`
	State StudioState `json:"state"`
}

// NewStudioEvent converts a workflow event.
func NewStudioEvent(ev workflow.Event) StudioEvent {
	return StudioEvent{Type: string(ev.Type), State: NewStudioState(ev.State)}
}
