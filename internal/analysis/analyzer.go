package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roomstager-app/roomstager/internal/backoff"
	"github.com/roomstager-app/roomstager/internal/geometry"
	"github.com/roomstager-app/roomstager/internal/vision"
)

// Analyzer obtains a PlacementAnalysis from a vision provider. A
// transient provider outage is retried three times with a fixed delay;
// an unparseable response degrades to DefaultAnalysis rather than
// failing.
type Analyzer struct {
	client vision.Client
	model  string
	retry  backoff.Policy
}

// New creates an Analyzer on top of the given vision client.
func New(client vision.Client, model string) *Analyzer {
	return &Analyzer{
		client: client,
		model:  model,
		retry: backoff.Policy{
			MaxAttempts: 3,
			Delay:       2 * time.Second,
			Retryable:   func(err error) bool { return errors.Is(err, vision.ErrUnavailable) },
		},
	}
}

// SetRetryDelay overrides the delay between retry attempts.
func (a *Analyzer) SetRetryDelay(d time.Duration) {
	a.retry.Delay = d
}

// AnalyzePlacement asks the vision model where the furniture items
// belong in the room. The room image goes first, furniture images
// follow in request order. When manual is set, the prompt pins the
// placement to the user's chosen position instead of asking the model
// to pick one.
func (a *Analyzer) AnalyzePlacement(ctx context.Context, room vision.Image, furniture []vision.Image, manual *geometry.Point) (*PlacementAnalysis, error) {
	var prompt string
	if manual != nil {
		prompt = buildManualPlacementPrompt(manual.X, manual.Y, len(furniture))
	} else {
		prompt = buildAutoPlacementPrompt(len(furniture))
	}

	content, err := a.call(ctx, prompt, append([]vision.Image{room}, furniture...))
	if err != nil {
		return nil, err
	}

	var result PlacementAnalysis
	if err := ExtractJSON(content, &result); err != nil {
		slog.Warn("Failed to parse placement analysis, using defaults", "error", err)
		return DefaultAnalysis(), nil
	}

	normalize(&result, len(furniture))
	return &result, nil
}

// AnalyzeRoomForReplace lists the furniture the model can clearly see
// in a room photo. An empty list is a valid result, and any parse
// failure is treated as "nothing clearly visible".
func (a *Analyzer) AnalyzeRoomForReplace(ctx context.Context, room vision.Image) ([]VisibleItem, error) {
	content, err := a.call(ctx, buildReplaceScanPrompt(), []vision.Image{room})
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []VisibleItem `json:"items"`
	}
	if err := ExtractJSON(content, &result); err != nil {
		slog.Warn("Failed to parse room scan, assuming no visible furniture", "error", err)
		return nil, nil
	}
	return result.Items, nil
}

func (a *Analyzer) call(ctx context.Context, prompt string, images []vision.Image) (string, error) {
	var content string
	err := a.retry.Do(ctx, func() error {
		var callErr error
		content, callErr = a.client.Analyze(ctx, vision.Request{
			Model:       a.model,
			Prompt:      prompt,
			Images:      images,
			Temperature: 0.3,
		})
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("vision analysis failed: %w", err)
	}
	if content == "" {
		return "", fmt.Errorf("vision analysis returned empty content")
	}
	return content, nil
}

// normalize backfills missing per-item data so downstream code can
// index furniture_items by request position.
func normalize(a *PlacementAnalysis, itemCount int) {
	if itemCount <= 1 {
		return
	}
	byIndex := make(map[int]FurnitureItem, len(a.FurnitureItems))
	for _, item := range a.FurnitureItems {
		byIndex[item.Index] = item
	}
	items := make([]FurnitureItem, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		item, ok := byIndex[i]
		if !ok {
			item = FallbackItem(i, itemCount)
		}
		if item.Placement == nil {
			rect := FallbackRect(i, itemCount)
			item.Placement = &Placement{Rect: rect, WallAlignment: geometry.WallAuto}
		}
		items = append(items, item)
	}
	a.FurnitureItems = items
	a.Placement = *items[0].Placement
}

func buildAutoPlacementPrompt(itemCount int) string {
	itemsClause := "The second image is the furniture to place."
	itemsSchema := ""
	if itemCount > 1 {
		itemsClause = fmt.Sprintf("Images 2 through %d are %d separate furniture items, in order.", itemCount+1, itemCount)
		itemsSchema = `
  "furniture_items": [
    {
      "index": 0,
      "type": "...",
      "color": "...",
      "style": "...",
      "estimated_size": "...",
      "placement": {"x_percent": 0, "y_percent": 0, "width_percent": 0, "height_percent": 0, "reasoning": "..."}
    }
  ],`
	}

	return fmt.Sprintf(`You are an expert in interior design and 3D composition.
Analyze the photos and determine the BEST spot to place the furniture in the room.

The first image is the room. %s

CRITICAL:
- The room and the furniture must remain COMPLETELY unchanged
- Describe the furniture as precisely as possible: exact color with its shade, exact shape, exact details
- You only choose the area where the furniture is inserted, never alter its appearance
- Account for perspective, lighting and proportions
- Coordinates are percentages of the room image, x_percent/y_percent is the rectangle CENTER

Respond with ONLY a JSON object:

{
  "room_analysis": {
    "size_estimate": "approximate size in meters",
    "lighting": "lighting description",
    "style": "interior style",
    "perspective": "camera perspective",
    "free_spaces": ["list of free areas"]
  },
  "furniture_analysis": {
    "type": "furniture type (sofa, armchair, table...)",
    "estimated_size": "approximate size in meters",
    "style": "detailed style description",
    "color": "EXACT color with shade (e.g. 'deep purple', 'burgundy')",
    "features": ["arm shape, upholstery, cushions, leg shape, ..."]
  },%s
  "placement": {
    "x_percent": 50,
    "y_percent": 60,
    "width_percent": 35,
    "height_percent": 25,
    "reasoning": "why this is the best spot"
  }
}`, itemsClause, itemsSchema)
}

func buildManualPlacementPrompt(x, y, itemCount int) string {
	itemsClause := "The second image is the furniture."
	if itemCount > 1 {
		itemsClause = fmt.Sprintf("Images 2 through %d are the furniture items, in order.", itemCount+1)
	}
	return fmt.Sprintf(`You are an expert in interior design.
The user wants the furniture placed at pixel position (%d, %d) in the room image.

The first image is the room. %s

Determine:
1. Whether this spot suits the furniture
2. What size the furniture should have at this spot
3. At what angle to place it

Do NOT change any detail of the room. Respond with ONLY the same JSON
object shape as for automatic placement, but keep the placement
centered on the requested position.`, x, y, itemsClause)
}

func buildReplaceScanPrompt() string {
	return `Look at this room photo and list the furniture pieces that are CLEARLY visible.
Only include items you can identify with confidence; an empty list is a valid answer.

Respond with ONLY a JSON object:

{
  "items": [
    {"type": "sofa", "position": "along the left wall"},
    {"type": "coffee table", "position": "center of the room"}
  ]
}`
}
