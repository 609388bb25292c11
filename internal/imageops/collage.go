package imageops

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// CollageItem is the placement of one furniture image on the collage
// canvas, in canvas pixels.
type CollageItem struct {
	X, Y          int
	Width, Height int
}

// CollageLayout is the computed geometry of a left-to-right reference
// montage. Item order matches input order, which is the positional
// ground truth the generation prompt refers to.
type CollageLayout struct {
	Width, Height int
	Items         []CollageItem
}

// PlanCollage computes the montage layout for the given source image
// sizes. Each image is scaled so its height does not exceed
// maxItemHeight, preserving aspect ratio and never upscaling. The
// canvas is the sum of scaled widths plus padding between and around
// the items, and items are vertically centered.
func PlanCollage(sizes []image.Point, maxItemHeight, padding int) CollageLayout {
	var scaled []image.Point
	maxHeight := 0
	for _, size := range sizes {
		w, h := size.X, size.Y
		if h > maxItemHeight {
			w = w * maxItemHeight / h
			h = maxItemHeight
		}
		if w < 1 {
			w = 1
		}
		scaled = append(scaled, image.Pt(w, h))
		if h > maxHeight {
			maxHeight = h
		}
	}

	layout := CollageLayout{Height: maxHeight + 2*padding}
	x := padding
	for _, size := range scaled {
		layout.Items = append(layout.Items, CollageItem{
			X:      x,
			Y:      (layout.Height - size.Y) / 2,
			Width:  size.X,
			Height: size.Y,
		})
		x += size.X + padding
	}
	layout.Width = x
	return layout
}

// BuildCollage renders the furniture images side by side on an opaque
// white canvas.
func BuildCollage(images []image.Image, maxItemHeight, padding int) (image.Image, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to collage")
	}

	sizes := make([]image.Point, len(images))
	for i, img := range images {
		sizes[i] = img.Bounds().Size()
	}
	layout := PlanCollage(sizes, maxItemHeight, padding)

	canvas := imaging.New(layout.Width, layout.Height, color.White)
	for i, img := range images {
		item := layout.Items[i]
		resized := img
		if item.Width != sizes[i].X || item.Height != sizes[i].Y {
			resized = imaging.Resize(img, item.Width, item.Height, imaging.Lanczos)
		}
		canvas = imaging.Overlay(canvas, resized, image.Pt(item.X, item.Y), 1.0)
	}
	return canvas, nil
}
