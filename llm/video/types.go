// Package video provides the asynchronous video generation backend.
package video

import (
	"context"

	"github.com/BaSui01/logomotion/llm/job"
)

// VideoFormat represents supported video formats.
type VideoFormat string

const (
	VideoFormatMP4 VideoFormat = "mp4"
)

// MIMEType returns the container MIME type.
func (f VideoFormat) MIMEType() string {
	switch f {
	case VideoFormatMP4:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

// JobBackend is a long-running video generation backend: the job.Backend
// contract plus retrieval of the finished artifact.
type JobBackend interface {
	job.Backend

	// Download fetches the bytes behind a result reference.
	Download(ctx context.Context, ref string) (data []byte, mimeType string, err error)

	// Name returns the provider name.
	Name() string
}
