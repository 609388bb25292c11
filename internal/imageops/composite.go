package imageops

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/roomstager-app/roomstager/internal/geometry"
)

// Composite scales the furniture image to fit inside the placement
// rectangle, preserving the furniture's own aspect ratio, then alpha
// composites it over the room. The resolved top-left corner is clamped
// so the furniture stays fully inside the room canvas.
func Composite(room, furniture image.Image, rect geometry.Rect) image.Image {
	roomW := room.Bounds().Dx()
	roomH := room.Bounds().Dy()

	targetW := int(float64(roomW) * rect.WidthPercent / 100)
	targetH := int(float64(roomH) * rect.HeightPercent / 100)
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}

	fw := furniture.Bounds().Dx()
	fh := furniture.Bounds().Dy()

	// Fit by whichever dimension is constraining.
	var newW, newH int
	if fw*targetH > fh*targetW {
		newW = targetW
		newH = fh * targetW / fw
	} else {
		newH = targetH
		newW = fw * targetH / fh
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	scaled := imaging.Resize(furniture, newW, newH, imaging.Lanczos)

	x := int(float64(roomW)*rect.XPercent/100) - newW/2
	y := int(float64(roomH)*rect.YPercent/100) - newH/2
	x = max(0, min(x, roomW-newW))
	y = max(0, min(y, roomH-newH))

	return imaging.Overlay(imaging.Clone(room), scaled, image.Pt(x, y), 1.0)
}
