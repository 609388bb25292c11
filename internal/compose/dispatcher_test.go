package compose

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/geometry"
	"github.com/roomstager-app/roomstager/internal/imageops"
)

// fakeBackend writes a fixed-size image and records the request.
type fakeBackend struct {
	width, height int
	lastReq       *Request
	err           error
}

func (f *fakeBackend) Compose(ctx context.Context, req *Request) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	img := imaging.New(f.width, f.height, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	return imageops.SavePNG(img, req.OutputDir, "fake_")
}

func (f *fakeBackend) ModelName() string       { return "Fake Model" }
func (f *fakeBackend) PreservesOriginal() bool { return false }

func placeRequest(t *testing.T, n int) *Request {
	t.Helper()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = "furniture.png"
	}
	return &Request{
		RoomPath:       "room.png",
		FurniturePaths: paths,
		PlacementMode:  ModePlace,
		Analysis:       analysis.FallbackAnalysis(n),
		OutputDir:      t.TempDir(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid single", func(r *Request) {}, false},
		{"no furniture", func(r *Request) { r.FurniturePaths = nil }, true},
		{"too many items", func(r *Request) {
			r.FurniturePaths = make([]string, 6)
		}, true},
		{"replace with one item", func(r *Request) {
			r.PlacementMode = ModeReplace
		}, false},
		{"replace with two items", func(r *Request) {
			r.PlacementMode = ModeReplace
			r.FurniturePaths = []string{"a.png", "b.png"}
		}, true},
		{"bad rotation", func(r *Request) {
			r.Analysis.Placement.Rotation = 45
		}, true},
		{"missing analysis", func(r *Request) { r.Analysis = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := placeRequest(t, 1)
			tt.mutate(req)
			err := Validate(req)
			if tt.wantErr {
				if !errors.Is(err, geometry.ErrInvalidInput) {
					t.Errorf("got %v, want ErrInvalidInput", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDispatchResultContract(t *testing.T) {
	backend := &fakeBackend{width: 800, height: 600}
	d := NewDispatcher(backend, "/results")

	req := placeRequest(t, 2)
	result, err := d.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ModelUsed != "Fake Model" {
		t.Errorf("got model %q", result.ModelUsed)
	}
	if result.PreservesOriginal {
		t.Error("fake backend must report preserves_original=false")
	}
	if result.FurnitureCount != 2 {
		t.Errorf("got furniture count %d, want 2", result.FurnitureCount)
	}
	if result.Analysis != req.Analysis {
		t.Error("result must carry the resolved analysis")
	}
	wantURL := "/results/" + filepath.Base(result.ResultImagePath)
	if result.ResultImageURL != wantURL {
		t.Errorf("got URL %q, want %q", result.ResultImageURL, wantURL)
	}
	if result.GenerationTime < 0 {
		t.Errorf("got negative generation time %f", result.GenerationTime)
	}
}

func TestDispatchBoundsResultSize(t *testing.T) {
	backend := &fakeBackend{width: 2000, height: 1000}
	d := NewDispatcher(backend, "/results")

	result, err := d.Dispatch(context.Background(), placeRequest(t, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := imageops.Load(result.ResultImagePath)
	if err != nil {
		t.Fatalf("failed to load result: %v", err)
	}
	w, h := imageops.Dimensions(img)
	if w != 1200 || h != 600 {
		t.Errorf("got %dx%d, want 1200x600", w, h)
	}
}

func TestDispatchKeepsSmallResult(t *testing.T) {
	backend := &fakeBackend{width: 640, height: 480}
	d := NewDispatcher(backend, "/results")

	result, err := d.Dispatch(context.Background(), placeRequest(t, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := imageops.Load(result.ResultImagePath)
	if err != nil {
		t.Fatalf("failed to load result: %v", err)
	}
	w, h := imageops.Dimensions(img)
	if w != 640 || h != 480 {
		t.Errorf("got %dx%d, want 640x480 unchanged", w, h)
	}
}

func TestDispatchBackendError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("generation failed")}
	d := NewDispatcher(backend, "/results")

	if _, err := d.Dispatch(context.Background(), placeRequest(t, 1)); err == nil {
		t.Fatal("expected backend error to surface")
	}
}

// A degraded single-item request must still dispatch, carrying the
// deterministic layout where the first of one item sits at x=25.
func TestDispatchWithFallbackAnalysis(t *testing.T) {
	backend := &fakeBackend{width: 800, height: 450}
	d := NewDispatcher(backend, "/results")

	req := placeRequest(t, 1)
	result, err := d.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := result.Analysis.Placement
	if p.XPercent != 25 {
		t.Errorf("got x_percent %v, want 25", p.XPercent)
	}
	if p.YPercent != 55 || p.WidthPercent != 30 || p.HeightPercent != 25 {
		t.Errorf("got placement %+v", p.Rect)
	}
}
