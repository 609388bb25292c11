package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates a caller-supplied placement parameter that
// fails validation. Handlers map it to a 400 response.
var ErrInvalidInput = errors.New("invalid placement input")

// Rect is a placement rectangle expressed as percentages of the room
// image's dimensions. XPercent/YPercent locate the rectangle's center.
// The rectangle may extend past the image edges; composition backends
// clamp independently.
type Rect struct {
	XPercent      float64 `json:"x_percent"`
	YPercent      float64 `json:"y_percent"`
	WidthPercent  float64 `json:"width_percent"`
	HeightPercent float64 `json:"height_percent"`
}

// Wall is a coarse hint for which wall placed furniture should sit
// flush against.
type Wall string

const (
	WallAuto  Wall = "auto"
	WallLeft  Wall = "left"
	WallRight Wall = "right"
	WallBack  Wall = "back"
)

// ValidWall reports whether s is one of the accepted wall alignment
// values.
func ValidWall(s string) bool {
	switch Wall(s) {
	case WallAuto, WallLeft, WallRight, WallBack:
		return true
	}
	return false
}

// ValidateRotation accepts only the two supported furniture rotations.
func ValidateRotation(deg int) (int, error) {
	if deg != 0 && deg != 90 {
		return 0, fmt.Errorf("%w: furniture_rotation must be 0 or 90, got %d", ErrInvalidInput, deg)
	}
	return deg, nil
}

// ManualBox is a user-selected rectangle in original room-image pixel
// coordinates.
type ManualBox struct {
	X, Y, W, H int
}

// Point is a pixel coordinate in the room image. Kept for the legacy
// click-to-place request shape.
type Point struct {
	X, Y int
}

// ResolveManualPosition derives the manual anchor point for the vision
// prompt. Outside manual mode placement is left entirely to the
// analysis, so the result is nil. A fully specified box wins over a
// legacy point; the box's center becomes the anchor.
func ResolveManualPosition(mode string, box *ManualBox, point *Point) *Point {
	if mode != "manual" {
		return nil
	}
	if box != nil {
		return &Point{X: box.X + box.W/2, Y: box.Y + box.H/2}
	}
	return point
}

// ClampBox constrains a manual box to the room image so that
// 0 <= x <= w-1, 1 <= w <= roomW-x, and likewise vertically.
func ClampBox(box ManualBox, roomW, roomH int) ManualBox {
	box.X = max(0, min(box.X, roomW-1))
	box.Y = max(0, min(box.Y, roomH-1))
	box.W = max(1, min(box.W, roomW-box.X))
	box.H = max(1, min(box.H, roomH-box.Y))
	return box
}

// BoxToRect converts a clamped pixel box to a center-based percent
// rectangle.
func BoxToRect(box ManualBox, roomW, roomH int) Rect {
	return Rect{
		XPercent:      (float64(box.X) + float64(box.W)/2) / float64(roomW) * 100,
		YPercent:      (float64(box.Y) + float64(box.H)/2) / float64(roomH) * 100,
		WidthPercent:  float64(box.W) / float64(roomW) * 100,
		HeightPercent: float64(box.H) / float64(roomH) * 100,
	}
}

// InferWall picks the wall a manual box most plausibly belongs to.
// The margin comparison order is load-bearing: a smallest right margin
// maps to the right wall, then a smallest left margin to the left
// wall, and every other case, including ties and a dominant top
// margin, resolves to the back wall.
func InferWall(box ManualBox, roomW, roomH int) Wall {
	leftMargin := box.X
	rightMargin := roomW - (box.X + box.W)
	topMargin := box.Y

	m := min(leftMargin, rightMargin, topMargin)
	switch m {
	case rightMargin:
		return WallRight
	case leftMargin:
		return WallLeft
	default:
		return WallBack
	}
}
