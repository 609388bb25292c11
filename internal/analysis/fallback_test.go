package analysis

import (
	"testing"

	"github.com/roomstager-app/roomstager/internal/geometry"
)

func TestFallbackRectThreeItems(t *testing.T) {
	wantX := []float64{25, 50, 75}
	wantY := []float64{55, 63, 55}

	for i := 0; i < 3; i++ {
		rect := FallbackRect(i, 3)
		if rect.XPercent != wantX[i] {
			t.Errorf("Item %d: expected XPercent=%f, got %f", i, wantX[i], rect.XPercent)
		}
		if rect.YPercent != wantY[i] {
			t.Errorf("Item %d: expected YPercent=%f, got %f", i, wantY[i], rect.YPercent)
		}
		if rect.WidthPercent != 10 {
			t.Errorf("Item %d: expected WidthPercent=10, got %f", i, rect.WidthPercent)
		}
		if rect.HeightPercent != 25.0/3 {
			t.Errorf("Item %d: expected HeightPercent=%f, got %f", i, 25.0/3, rect.HeightPercent)
		}
	}
}

func TestFallbackRectSingleItem(t *testing.T) {
	// The n=1 formula divides by max(1, n-1)=1, so the single item
	// lands at x=25 rather than being centered.
	rect := FallbackRect(0, 1)
	if rect.XPercent != 25 {
		t.Errorf("Expected XPercent=25, got %f", rect.XPercent)
	}
	if rect.YPercent != 55 {
		t.Errorf("Expected YPercent=55, got %f", rect.YPercent)
	}
	if rect.WidthPercent != 30 {
		t.Errorf("Expected WidthPercent=30, got %f", rect.WidthPercent)
	}
	if rect.HeightPercent != 25 {
		t.Errorf("Expected HeightPercent=25, got %f", rect.HeightPercent)
	}
}

func TestFallbackAnalysis(t *testing.T) {
	a := FallbackAnalysis(3)

	if len(a.FurnitureItems) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(a.FurnitureItems))
	}
	for i, item := range a.FurnitureItems {
		if item.Index != i {
			t.Errorf("Item %d has index %d", i, item.Index)
		}
		if item.Placement == nil {
			t.Fatalf("Item %d has no placement", i)
		}
		if item.Placement.Rotation != 0 {
			t.Errorf("Item %d: expected rotation 0, got %d", i, item.Placement.Rotation)
		}
		if item.Placement.WallAlignment != geometry.WallAuto {
			t.Errorf("Item %d: expected wall auto, got %s", i, item.Placement.WallAlignment)
		}
	}
	if a.Placement != *a.FurnitureItems[0].Placement {
		t.Error("Expected convenience placement to copy the first item")
	}
	if a.RoomAnalysis.Style != "modern" {
		t.Errorf("Expected modern room style, got %q", a.RoomAnalysis.Style)
	}
}

func TestDefaultAnalysis(t *testing.T) {
	a := DefaultAnalysis()
	if a.RoomAnalysis.Style != "modern" {
		t.Errorf("Expected modern style, got %q", a.RoomAnalysis.Style)
	}
	want := geometry.Rect{XPercent: 50, YPercent: 50, WidthPercent: 30, HeightPercent: 30}
	if a.Placement.Rect != want {
		t.Errorf("Expected centered 30x30 rect, got %+v", a.Placement.Rect)
	}
}
