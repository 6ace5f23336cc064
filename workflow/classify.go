package workflow

import "strings"

// Classification 是对上游错误的分类结果。
type Classification int

const (
	// ClassGeneric errors are shown with their raw message.
	ClassGeneric Classification = iota
	// ClassCredentialInvalid errors prompt the user to select a new key.
	ClassCredentialInvalid
)

func (c Classification) String() string {
	switch c {
	case ClassCredentialInvalid:
		return "credential_invalid"
	default:
		return "generic"
	}
}

// Classifier maps an error to a Classification.
type Classifier func(err error) Classification

// entityNotFound is the upstream text the hosted API returns when the key
// belongs to a project without access to the model.
const entityNotFound = "Requested entity was not found"

// 面向用户的固定提示
const (
	MsgNoLogo            = "No logo image available to animate."
	MsgSelectKey         = "Please select an API key to generate videos. You may need to enable billing for your project."
	MsgVerifyKeyFailed   = "Could not verify API key. Please select one to proceed."
	MsgInvalidKey        = "Your API key is invalid. Please select a new key and ensure billing is enabled for your project."
	MsgLogoBusy          = "Designing your unique logo (PNG & SVG)..."
	MsgUnknownLogoError  = "An unknown error occurred during logo generation."
	MsgUnknownVideoError = "An unknown error occurred during video generation."
)

// ClassifyError is a plain substring match on the error text. It is the
// only place that knows about the entity-not-found wording.
func ClassifyError(err error) Classification {
	if err == nil {
		return ClassGeneric
	}
	if strings.Contains(err.Error(), entityNotFound) {
		return ClassCredentialInvalid
	}
	return ClassGeneric
}
