package imageops

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{name: "already small is untouched", w: 800, h: 600, wantW: 800, wantH: 600},
		{name: "exactly at bound is untouched", w: 1200, h: 900, wantW: 1200, wantH: 900},
		{name: "wide landscape", w: 2000, h: 1000, wantW: 1200, wantH: 600},
		{name: "tall portrait", w: 1000, h: 2000, wantW: 600, wantH: 1200},
		{name: "large square", w: 2400, h: 2400, wantW: 1200, wantH: 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := imaging.New(tt.w, tt.h, color.White)
			result := FitWithin(img, 1200)
			if result.Bounds().Dx() != tt.wantW || result.Bounds().Dy() != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, result.Bounds().Dx(), result.Bounds().Dy())
			}
		})
	}
}

func TestFitWithinNoOpReturnsSameImage(t *testing.T) {
	img := imaging.New(640, 480, color.White)
	if FitWithin(img, 1200) != img {
		t.Error("Expected in-bound image to be returned unchanged")
	}
}
