// Package compose selects and runs an image composition strategy: a
// local pixel composite or a generative call against the external
// image model, in "place" or "replace" mode.
package compose

import (
	"context"

	"github.com/roomstager-app/roomstager/internal/analysis"
)

// Placement modes.
const (
	ModePlace   = "place"
	ModeReplace = "replace"
)

// MaxFurnitureItems caps the furniture images per request.
const MaxFurnitureItems = 5

// Request carries everything a composition backend needs. Analysis is
// the fully resolved placement: manual overrides and the request's
// rotation and wall alignment have already been merged in.
type Request struct {
	RoomPath       string
	FurniturePaths []string
	PlacementMode  string
	ReplaceHint    string
	Analysis       *analysis.PlacementAnalysis
	OutputDir      string
}

// Result is the dispatcher's output contract, identical across
// backends.
type Result struct {
	ResultImagePath   string                      `json:"result_image_path"`
	ResultImageURL    string                      `json:"result_image_url"`
	GenerationTime    float64                     `json:"generation_time_seconds"`
	ModelUsed         string                      `json:"model_used"`
	PreservesOriginal bool                        `json:"preserves_original"`
	Analysis          *analysis.PlacementAnalysis `json:"analysis"`
	FurnitureCount    int                         `json:"furniture_count"`
}

// Backend is one interchangeable composition strategy.
// PreservesOriginal is a static capability flag: true only when the
// backend copies furniture pixels verbatim instead of re-rendering
// them.
type Backend interface {
	Compose(ctx context.Context, req *Request) (string, error)
	ModelName() string
	PreservesOriginal() bool
}
