package imageops

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// SaveUpload decodes uploaded image bytes, flattens any alpha channel
// onto a white background, and stores the result as a PNG with a
// random name under dir. Returns the saved path and dimensions.
func SaveUpload(data []byte, dir string) (string, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	flattened := imaging.Overlay(
		imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White),
		img, image.Pt(0, 0), 1.0,
	)

	path := filepath.Join(dir, uuid.New().String()+".png")
	if err := imaging.Save(flattened, path); err != nil {
		return "", 0, 0, fmt.Errorf("failed to save image: %w", err)
	}
	return path, flattened.Bounds().Dx(), flattened.Bounds().Dy(), nil
}

// SavePNG stores an image as a PNG with a random name under dir.
func SavePNG(img image.Image, dir, prefix string) (string, error) {
	path := filepath.Join(dir, prefix+uuid.New().String()+".png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}

// Load opens and decodes an image file.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// Download fetches an image from a URL and saves it as a PNG with a
// random name under dir.
func Download(client *http.Client, url, dir string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode downloaded image: %w", err)
	}

	return SavePNG(img, dir, "")
}

// DataURL encodes an image file as a base64 data URI.
func DataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
