package workflow

import (
	"bytes"

	"github.com/BaSui01/logomotion/types"
)

// Step 是向导当前所处阶段。
type Step string

const (
	// StepGenerate collects a logo by description or upload.
	StepGenerate Step = "generate"
	// StepAnimate has a logo and collects animation parameters.
	StepAnimate Step = "animate"
)

// State is the single mutable record owned by the Controller. Values handed
// out by Snapshot are deep copies.
type State struct {
	Step            Step                 `json:"step"`
	GeneratingLogo  bool                 `json:"generating_logo"`
	GeneratingVideo bool                 `json:"generating_video"`
	Logo            *types.LogoArtifact  `json:"logo,omitempty"`
	Video           *types.VideoArtifact `json:"video,omitempty"`
	Error           string               `json:"error,omitempty"`
	NeedsCredential bool                 `json:"needs_credential"`
	Progress        string               `json:"progress,omitempty"`
	Revision        uint64               `json:"revision"`
}

// InitialState returns the state after construction or StartOver.
func InitialState() State {
	return State{Step: StepGenerate}
}

// Busy reports whether any generation is in flight.
func (s State) Busy() bool {
	return s.GeneratingLogo || s.GeneratingVideo
}

// HasVideo reports whether a finished video is available.
func (s State) HasVideo() bool {
	return s.Video != nil && len(s.Video.Data) > 0
}

func (s State) clone() State {
	out := s
	if s.Logo != nil {
		logo := *s.Logo
		logo.PNG = bytes.Clone(s.Logo.PNG)
		out.Logo = &logo
	}
	if s.Video != nil {
		v := *s.Video
		v.Data = bytes.Clone(s.Video.Data)
		out.Video = &v
	}
	return out
}
