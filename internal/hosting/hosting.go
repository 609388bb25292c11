// Package hosting turns local images into references the generation
// service can fetch: a short-lived hosted URL when the hosting API is
// configured and reachable, an inline base64 data URI otherwise.
package hosting

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/roomstager-app/roomstager/internal/imageops"
)

const (
	defaultAPIURL = "https://api.imgbb.com/1/upload"

	// Hosted images only need to live long enough for the generation
	// service to fetch them.
	defaultExpirationSeconds = 600
)

// Uploader publishes images through an ImgBB-compatible API.
type Uploader struct {
	APIURL     string
	HTTPClient *http.Client
	Expiration int
}

// NewUploader builds an uploader from the environment.
func NewUploader() *Uploader {
	apiURL := os.Getenv("IMGBB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Uploader{
		APIURL:     apiURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Expiration: defaultExpirationSeconds,
	}
}

// ImageRef returns a reference for the image at path: the hosted URL
// when possible, otherwise a data URI. Only both paths failing is an
// error.
func (u *Uploader) ImageRef(path string) (string, error) {
	if hostedURL, err := u.upload(path); err == nil {
		return hostedURL, nil
	} else {
		slog.Warn("Image hosting unavailable, falling back to data URI", "path", path, "error", err)
	}

	dataURL, err := imageops.DataURL(path)
	if err != nil {
		return "", fmt.Errorf("failed to build image reference: %w", err)
	}
	return dataURL, nil
}

func (u *Uploader) upload(path string) (string, error) {
	apiKey := os.Getenv("IMGBB_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("IMGBB_API_KEY environment variable not set")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	form := url.Values{
		"key":        {apiKey},
		"image":      {base64.StdEncoding.EncodeToString(data)},
		"expiration": {strconv.Itoa(u.Expiration)},
	}

	resp, err := u.HTTPClient.PostForm(u.APIURL, form)
	if err != nil {
		return "", fmt.Errorf("failed to call hosting API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hosting API returned status %d", resp.StatusCode)
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode hosting response: %w", err)
	}
	if !result.Success || result.Data.URL == "" {
		return "", fmt.Errorf("hosting API rejected the upload")
	}

	slog.Debug("Image hosted", "url", result.Data.URL)
	return result.Data.URL, nil
}
