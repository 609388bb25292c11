package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/roomstager-app/roomstager/internal/geometry"
	"github.com/roomstager-app/roomstager/internal/imageops"
)

// maxResultSide bounds the result image's longest side so response
// payloads stay uniform across backends.
const maxResultSide = 1200

// Dispatcher validates a composition request, routes it to the
// configured backend, and post-processes the result.
type Dispatcher struct {
	backend   Backend
	resultURL string
}

// NewDispatcher builds a dispatcher over the given backend. resultURL
// is the public URL prefix under which result files are served.
func NewDispatcher(backend Backend, resultURL string) *Dispatcher {
	if resultURL == "" {
		resultURL = "/results"
	}
	return &Dispatcher{backend: backend, resultURL: resultURL}
}

// Validate fails fast on malformed requests before any backend work.
func Validate(req *Request) error {
	n := len(req.FurniturePaths)
	if n == 0 {
		return fmt.Errorf("%w: at least one furniture image is required", geometry.ErrInvalidInput)
	}
	if n > MaxFurnitureItems {
		return fmt.Errorf("%w: at most %d furniture images are allowed, got %d", geometry.ErrInvalidInput, MaxFurnitureItems, n)
	}
	if req.PlacementMode == ModeReplace && n != 1 {
		return fmt.Errorf("%w: replace mode requires exactly one furniture image, got %d", geometry.ErrInvalidInput, n)
	}
	if req.Analysis == nil {
		return fmt.Errorf("%w: missing placement analysis", geometry.ErrInvalidInput)
	}
	if _, err := geometry.ValidateRotation(req.Analysis.Placement.Rotation); err != nil {
		return err
	}
	return nil
}

// Dispatch runs the full composition for one request: validate, invoke
// the backend, bound the result image size, and assemble the output
// contract.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	resultPath, err := d.backend.Compose(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := boundImage(resultPath); err != nil {
		return nil, err
	}

	return &Result{
		ResultImagePath:   resultPath,
		ResultImageURL:    d.resultURL + "/" + filepath.Base(resultPath),
		GenerationTime:    time.Since(start).Seconds(),
		ModelUsed:         d.backend.ModelName(),
		PreservesOriginal: d.backend.PreservesOriginal(),
		Analysis:          req.Analysis,
		FurnitureCount:    len(req.FurniturePaths),
	}, nil
}

// boundImage downscales the image at path in place so its longest
// side is at most maxResultSide. Images already within the bound are
// left untouched.
func boundImage(path string) error {
	img, err := imageops.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load result image: %w", err)
	}
	resized := imageops.FitWithin(img, maxResultSide)
	if resized == img {
		return nil
	}
	if err := imaging.Save(resized, path); err != nil {
		return fmt.Errorf("failed to save result image: %w", err)
	}
	return nil
}
