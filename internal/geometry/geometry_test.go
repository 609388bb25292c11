package geometry

import (
	"errors"
	"testing"
)

func TestValidateRotation(t *testing.T) {
	tests := []struct {
		name    string
		deg     int
		wantErr bool
	}{
		{name: "zero accepted", deg: 0},
		{name: "ninety accepted", deg: 90},
		{name: "forty five rejected", deg: 45, wantErr: true},
		{name: "negative ninety rejected", deg: -90, wantErr: true},
		{name: "one eighty rejected", deg: 180, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRotation(tt.deg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for rotation %d", tt.deg)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("Expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.deg {
				t.Errorf("Expected %d, got %d", tt.deg, got)
			}
		})
	}
}

func TestResolveManualPosition(t *testing.T) {
	box := &ManualBox{X: 100, Y: 200, W: 50, H: 80}
	point := &Point{X: 10, Y: 20}

	tests := []struct {
		name  string
		mode  string
		box   *ManualBox
		point *Point
		want  *Point
	}{
		{name: "auto mode ignores everything", mode: "auto", box: box, point: point, want: nil},
		{name: "manual box wins over point", mode: "manual", box: box, point: point, want: &Point{X: 125, Y: 240}},
		{name: "manual falls back to legacy point", mode: "manual", point: point, want: point},
		{name: "manual with nothing", mode: "manual", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveManualPosition(tt.mode, tt.box, tt.point)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Expected nil, got %+v", got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestBoxToRectStaysInBounds(t *testing.T) {
	tests := []struct {
		name string
		box  ManualBox
	}{
		{name: "fully inside", box: ManualBox{X: 100, Y: 100, W: 200, H: 150}},
		{name: "overlapping right edge", box: ManualBox{X: 900, Y: 100, W: 400, H: 150}},
		{name: "overlapping bottom edge", box: ManualBox{X: 100, Y: 700, W: 200, H: 400}},
		{name: "negative origin", box: ManualBox{X: -50, Y: -20, W: 200, H: 150}},
		{name: "degenerate size", box: ManualBox{X: 500, Y: 400, W: 0, H: 0}},
	}

	const roomW, roomH = 1000, 800
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clamped := ClampBox(tt.box, roomW, roomH)
			rect := BoxToRect(clamped, roomW, roomH)

			if rect.XPercent < 0 || rect.XPercent > 100 {
				t.Errorf("XPercent out of range: %f", rect.XPercent)
			}
			if rect.YPercent < 0 || rect.YPercent > 100 {
				t.Errorf("YPercent out of range: %f", rect.YPercent)
			}
			if rect.WidthPercent <= 0 {
				t.Errorf("WidthPercent not positive: %f", rect.WidthPercent)
			}
			if rect.HeightPercent <= 0 {
				t.Errorf("HeightPercent not positive: %f", rect.HeightPercent)
			}
		})
	}
}

func TestBoxToRectCenter(t *testing.T) {
	rect := BoxToRect(ManualBox{X: 250, Y: 200, W: 500, H: 400}, 1000, 800)
	if rect.XPercent != 50 {
		t.Errorf("Expected XPercent=50, got %f", rect.XPercent)
	}
	if rect.YPercent != 50 {
		t.Errorf("Expected YPercent=50, got %f", rect.YPercent)
	}
	if rect.WidthPercent != 50 {
		t.Errorf("Expected WidthPercent=50, got %f", rect.WidthPercent)
	}
	if rect.HeightPercent != 50 {
		t.Errorf("Expected HeightPercent=50, got %f", rect.HeightPercent)
	}
}

func TestInferWall(t *testing.T) {
	tests := []struct {
		name  string
		box   ManualBox
		roomW int
		roomH int
		want  Wall
	}{
		{
			name:  "small left margin",
			box:   ManualBox{X: 10, Y: 300, W: 200, H: 200},
			roomW: 1000, roomH: 800,
			want: WallLeft,
		},
		{
			name:  "small right margin",
			box:   ManualBox{X: 700, Y: 300, W: 280, H: 200},
			roomW: 1000, roomH: 800,
			want: WallRight,
		},
		{
			// The top margin is the minimum here even though the right
			// margin is also small; this must resolve to back, not right.
			name:  "dominant top margin",
			box:   ManualBox{X: 700, Y: 10, W: 200, H: 200},
			roomW: 1000, roomH: 800,
			want: WallBack,
		},
		{
			name:  "three way tie prefers right",
			box:   ManualBox{X: 50, Y: 50, W: 900, H: 200},
			roomW: 1000, roomH: 800,
			want: WallRight,
		},
		{
			name:  "left top tie prefers left",
			box:   ManualBox{X: 50, Y: 50, W: 500, H: 200},
			roomW: 1000, roomH: 800,
			want: WallLeft,
		},
		{
			name:  "centered box",
			box:   ManualBox{X: 400, Y: 300, W: 200, H: 200},
			roomW: 1000, roomH: 800,
			want: WallBack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferWall(tt.box, tt.roomW, tt.roomH)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidWall(t *testing.T) {
	for _, ok := range []string{"auto", "left", "right", "back"} {
		if !ValidWall(ok) {
			t.Errorf("Expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "front", "ceiling", "Auto"} {
		if ValidWall(bad) {
			t.Errorf("Expected %q to be invalid", bad)
		}
	}
}
