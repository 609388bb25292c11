package analysis

import "github.com/roomstager-app/roomstager/internal/geometry"

// RoomAnalysis describes the room photo as seen by the vision model.
type RoomAnalysis struct {
	SizeEstimate string   `json:"size_estimate,omitempty"`
	Lighting     string   `json:"lighting,omitempty"`
	Style        string   `json:"style,omitempty"`
	Perspective  string   `json:"perspective,omitempty"`
	FreeSpaces   []string `json:"free_spaces,omitempty"`
}

// FurnitureAnalysis describes one furniture photo.
type FurnitureAnalysis struct {
	Type          string   `json:"type,omitempty"`
	EstimatedSize string   `json:"estimated_size,omitempty"`
	Style         string   `json:"style,omitempty"`
	Color         string   `json:"color,omitempty"`
	Features      []string `json:"features,omitempty"`
}

// Placement is the target rectangle plus the finalized rotation and
// wall alignment. After the request parameters are merged in,
// WallAlignment is never "auto" when a manual box was supplied.
type Placement struct {
	geometry.Rect
	Rotation      int           `json:"rotation"`
	WallAlignment geometry.Wall `json:"wall_alignment,omitempty"`
	Reasoning     string        `json:"reasoning,omitempty"`
}

// FurnitureItem is the per-item analysis for multi-furniture requests.
// Index is the 0-based position of the item in the request's furniture
// list, which is also its left-to-right position in the reference
// collage.
type FurnitureItem struct {
	Index         int        `json:"index"`
	Type          string     `json:"type,omitempty"`
	Color         string     `json:"color,omitempty"`
	Style         string     `json:"style,omitempty"`
	EstimatedSize string     `json:"estimated_size,omitempty"`
	Placement     *Placement `json:"placement,omitempty"`
}

// PlacementAnalysis is the root aggregate produced once per generation
// request, either by the vision provider or by the deterministic
// fallback. It is mutated in place as manual overrides are merged:
// a manual box supersedes the suggested placement, and the request's
// rotation and wall alignment always overwrite whatever the model
// proposed.
type PlacementAnalysis struct {
	RoomAnalysis       RoomAnalysis      `json:"room_analysis"`
	FurnitureAnalysis  FurnitureAnalysis `json:"furniture_analysis"`
	FurnitureItems     []FurnitureItem   `json:"furniture_items,omitempty"`
	Placement          Placement         `json:"placement"`
	OverallComposition string            `json:"overall_composition,omitempty"`
}

// VisibleItem is one piece of furniture the vision model asserts is
// clearly visible in a room photo, used to pick a replace target.
type VisibleItem struct {
	Type     string `json:"type"`
	Position string `json:"position"`
}
