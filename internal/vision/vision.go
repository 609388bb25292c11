// Package vision defines the interface to vision-capable LLM
// providers used for room and furniture analysis.
package vision

import (
	"context"
	"errors"
	"os"
)

// ErrUnavailable marks a transient provider condition (maintenance,
// 5xx). Callers retry these a bounded number of times.
var ErrUnavailable = errors.New("vision provider unavailable")

// Image is an encoded image handed to a provider alongside the prompt.
type Image struct {
	Data     []byte
	MimeType string
}

// Request carries one prompt plus the images it refers to. Providers
// must accept up to six images per call.
type Request struct {
	Model       string
	Prompt      string
	Images      []Image
	Temperature float64
}

// Client is a vision-capable LLM provider. Responses are free text
// that is expected, but not guaranteed, to contain JSON.
type Client interface {
	Analyze(ctx context.Context, req Request) (string, error)
}

// DefaultModel returns the configured model for a provider, falling
// back to a sensible default.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-1.5-flash"
	default:
		return ""
	}
}
