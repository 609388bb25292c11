// Package segment removes backgrounds from furniture photos through an
// external segmentation API. Removal is best effort: when the service
// is not configured or fails, the original image is used as-is.
package segment

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

const defaultAPIURL = "https://api.remove.bg/v1.0/removebg"

// Remover strips the background from the image at path, writing the
// result back to the same file. The returned path is the image to use
// afterwards, which may be the unmodified original.
type Remover interface {
	RemoveBackground(path string) (string, error)
}

// NoOp leaves images untouched.
type NoOp struct{}

func (NoOp) RemoveBackground(path string) (string, error) { return path, nil }

// API calls a remove.bg-compatible endpoint.
type API struct {
	URL        string
	HTTPClient *http.Client
}

// New picks a remover from the environment: the segmentation API when
// REMOVEBG_API_KEY is set, otherwise a no-op.
func New() Remover {
	if os.Getenv("REMOVEBG_API_KEY") == "" {
		slog.Info("Background removal disabled, REMOVEBG_API_KEY not set")
		return NoOp{}
	}
	return &API{
		URL:        defaultAPIURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RemoveBackground sends the image to the segmentation API and
// overwrites the file with the cutout. Any failure keeps the original
// file and returns its path without an error.
func (a *API) RemoveBackground(path string) (string, error) {
	cutout, err := a.remove(path)
	if err != nil {
		slog.Warn("Background removal failed, keeping original image", "path", path, "error", err)
		return path, nil
	}
	if err := os.WriteFile(path, cutout, 0644); err != nil {
		return "", fmt.Errorf("failed to write cutout: %w", err)
	}
	return path, nil
}

func (a *API) remove(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image_file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.WriteField("size", "auto"); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Api-Key", os.Getenv("REMOVEBG_API_KEY"))

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("segmentation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("segmentation API returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
