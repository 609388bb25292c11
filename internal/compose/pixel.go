package compose

import (
	"context"
	"fmt"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/imageops"
)

// PixelComposite pastes furniture pixels directly onto the room image.
// No external calls, no quality magic: furniture appearance is
// preserved exactly, realism is not.
type PixelComposite struct{}

func (PixelComposite) ModelName() string       { return "Pixel Composite" }
func (PixelComposite) PreservesOriginal() bool { return true }

func (PixelComposite) Compose(ctx context.Context, req *Request) (string, error) {
	if req.PlacementMode == ModeReplace {
		return "", fmt.Errorf("replace mode requires a generative backend")
	}

	room, err := imageops.Load(req.RoomPath)
	if err != nil {
		return "", fmt.Errorf("failed to load room image: %w", err)
	}

	n := len(req.FurniturePaths)
	result := room
	for i, path := range req.FurniturePaths {
		furniture, err := imageops.Load(path)
		if err != nil {
			return "", fmt.Errorf("failed to load furniture image: %w", err)
		}

		placement := itemPlacement(req.Analysis, i, n)
		if placement.Rotation == 90 {
			furniture = imageops.Rotate90(furniture)
		}
		result = imageops.Composite(result, furniture, placement.Rect)
	}

	return imageops.SavePNG(result, req.OutputDir, "composite_")
}

// itemPlacement resolves the target rectangle for item i: the per-item
// analysis when present, the request-level placement for a single
// item, else the deterministic layout.
func itemPlacement(a *analysis.PlacementAnalysis, i, n int) analysis.Placement {
	for _, item := range a.FurnitureItems {
		if item.Index == i && item.Placement != nil {
			return *item.Placement
		}
	}
	if n == 1 {
		return a.Placement
	}
	return analysis.Placement{Rect: analysis.FallbackRect(i, n)}
}
