package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/roomstager-app/roomstager/internal/vision"
	"google.golang.org/api/option"
)

// Gemini is a vision provider backed by Google Gemini.
type Gemini struct{}

// New returns a new Gemini provider.
func New() *Gemini {
	return &Gemini{}
}

// Analyze sends the prompt and images to Gemini and returns the text
// of the first candidate.
func (g *Gemini) Analyze(ctx context.Context, req vision.Request) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))

	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData(imageFormat(img.MimeType), img.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		if strings.Contains(err.Error(), "503") || strings.Contains(err.Error(), "UNAVAILABLE") {
			return "", fmt.Errorf("%w: %v", vision.ErrUnavailable, err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}

// imageFormat maps a MIME type to the bare format name genai expects.
func imageFormat(mime string) string {
	format := strings.TrimPrefix(mime, "image/")
	if format == "" {
		return "png"
	}
	return format
}
