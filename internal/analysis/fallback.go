package analysis

import "github.com/roomstager-app/roomstager/internal/geometry"

// FallbackRect is the deterministic placement for item i of n when no
// vision analysis is available. Items spread left to right across the
// central half of the room width, alternating between two rows so the
// rectangles can never overlap. Note the n=1 case: the denominator
// max(1, n-1) is 1, so a single item lands at x=25, not centered.
func FallbackRect(i, n int) geometry.Rect {
	if n < 1 {
		n = 1
	}
	den := n - 1
	if den < 1 {
		den = 1
	}
	return geometry.Rect{
		XPercent:      25 + float64(i)*50/float64(den),
		YPercent:      55 + float64(i%2)*8,
		WidthPercent:  30 / float64(n),
		HeightPercent: 25 / float64(n),
	}
}

// FallbackItem builds the full per-item analysis for the degraded path.
func FallbackItem(i, n int) FurnitureItem {
	return FurnitureItem{
		Index: i,
		Type:  "furniture item",
		Color: "neutral",
		Style: "modern",
		Placement: &Placement{
			Rect:          FallbackRect(i, n),
			Rotation:      0,
			WallAlignment: geometry.WallAuto,
			Reasoning:     "deterministic layout, vision analysis unavailable",
		},
	}
}

// FallbackAnalysis fabricates a complete analysis for n furniture
// items. Used whenever the vision call fails in place mode so that
// placement always produces a result.
func FallbackAnalysis(n int) *PlacementAnalysis {
	a := &PlacementAnalysis{
		RoomAnalysis: RoomAnalysis{
			Lighting: "natural lighting",
			Style:    "modern",
		},
		FurnitureAnalysis: FurnitureAnalysis{
			Type:          "furniture item",
			EstimatedSize: "medium",
			Style:         "modern",
			Color:         "neutral",
		},
	}
	for i := 0; i < n; i++ {
		a.FurnitureItems = append(a.FurnitureItems, FallbackItem(i, n))
	}
	if len(a.FurnitureItems) > 0 {
		a.Placement = *a.FurnitureItems[0].Placement
	}
	return a
}

// DefaultAnalysis is the hardcoded analysis used when the vision call
// succeeded but its response could not be parsed as JSON.
func DefaultAnalysis() *PlacementAnalysis {
	return &PlacementAnalysis{
		RoomAnalysis: RoomAnalysis{
			SizeEstimate: "unknown",
			Lighting:     "natural",
			Style:        "modern",
			Perspective:  "eye-level",
		},
		FurnitureAnalysis: FurnitureAnalysis{
			Type:          "furniture",
			EstimatedSize: "medium",
			Style:         "modern",
			Color:         "neutral",
		},
		Placement: Placement{
			Rect: geometry.Rect{
				XPercent:      50,
				YPercent:      50,
				WidthPercent:  30,
				HeightPercent: 30,
			},
			Rotation:  0,
			Reasoning: "Default placement",
		},
	}
}
