package imageops

import (
	"image"

	"github.com/disintegration/imaging"
)

// FitWithin downscales an image so its longest side does not exceed
// maxSide, preserving aspect ratio. Images already within the bound
// are returned unchanged; this never upscales.
func FitWithin(img image.Image, maxSide int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}

	var newW, newH int
	if w >= h {
		newW = maxSide
		newH = h * maxSide / w
	} else {
		newH = maxSide
		newW = w * maxSide / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}

// Rotate90 rotates an image a quarter turn counter-clockwise, used for
// the 90-degree furniture orientation option.
func Rotate90(img image.Image) image.Image {
	return imaging.Rotate90(img)
}

// Dimensions returns an image's width and height.
func Dimensions(img image.Image) (int, int) {
	return img.Bounds().Dx(), img.Bounds().Dy()
}
