package compose

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/genclient"
)

type fakeTasks struct {
	lastInput genclient.TaskInput
	creates   int
	resultURL string
}

func (f *fakeTasks) CreateTask(ctx context.Context, input genclient.TaskInput) (string, error) {
	f.creates++
	f.lastInput = input
	return "task-1", nil
}

func (f *fakeTasks) Await(ctx context.Context, taskID string) (string, error) {
	return f.resultURL, nil
}

type fakeRefs struct {
	paths []string
}

func (f *fakeRefs) ImageRef(path string) (string, error) {
	f.paths = append(f.paths, path)
	return "ref://" + path, nil
}

// resultServer serves a small PNG the backend downloads as its result.
func resultServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := imaging.New(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			t.Errorf("failed to encode result image: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerativeSingleItem(t *testing.T) {
	dir := t.TempDir()
	roomPath := savedImage(t, dir, "room.png", 1920, 1080, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	furniturePath := savedImage(t, dir, "sofa.png", 40, 40, color.NRGBA{R: 200, G: 0, B: 0, A: 255})

	tasks := &fakeTasks{resultURL: resultServer(t).URL}
	refs := &fakeRefs{}
	g := NewGenerative(tasks, refs, "Test Model")

	req := &Request{
		RoomPath:       roomPath,
		FurniturePaths: []string{furniturePath},
		PlacementMode:  ModePlace,
		Analysis:       analysis.FallbackAnalysis(1),
		OutputDir:      dir,
	}

	path, err := g.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path == "" {
		t.Fatal("expected a result path")
	}

	if tasks.creates != 1 {
		t.Errorf("got %d generation calls, want 1", tasks.creates)
	}
	if got := len(tasks.lastInput.ImageURLs); got != 2 {
		t.Errorf("got %d image refs, want room + furniture", got)
	}
	if tasks.lastInput.AspectRatio != "16:9" {
		t.Errorf("got aspect ratio %q, want 16:9", tasks.lastInput.AspectRatio)
	}
	if !strings.Contains(tasks.lastInput.Prompt, "Seamlessly integrate") {
		t.Error("single-item prompt missing")
	}
}

func TestGenerativeMultiItemUsesOneCollageCall(t *testing.T) {
	dir := t.TempDir()
	roomPath := savedImage(t, dir, "room.png", 1000, 1000, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	paths := []string{
		savedImage(t, dir, "a.png", 30, 60, color.NRGBA{R: 200, G: 0, B: 0, A: 255}),
		savedImage(t, dir, "b.png", 30, 60, color.NRGBA{R: 0, G: 200, B: 0, A: 255}),
		savedImage(t, dir, "c.png", 30, 60, color.NRGBA{R: 0, G: 0, B: 200, A: 255}),
	}

	tasks := &fakeTasks{resultURL: resultServer(t).URL}
	refs := &fakeRefs{}
	g := NewGenerative(tasks, refs, "Test Model")

	req := &Request{
		RoomPath:       roomPath,
		FurniturePaths: paths,
		PlacementMode:  ModePlace,
		Analysis:       analysis.FallbackAnalysis(3),
		OutputDir:      dir,
	}

	if _, err := g.Compose(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Three items, still exactly one generation call: room + collage.
	if tasks.creates != 1 {
		t.Errorf("got %d generation calls, want 1", tasks.creates)
	}
	if got := len(tasks.lastInput.ImageURLs); got != 2 {
		t.Errorf("got %d image refs, want room + collage", got)
	}
	if !strings.Contains(tasks.lastInput.Prompt, "3 furniture items arranged in a row") {
		t.Error("collage prompt missing item count")
	}
	if !strings.Contains(tasks.lastInput.Prompt, "Item 3 (position 3 in the row, from left)") {
		t.Error("collage prompt missing last item clause")
	}
}

func TestGenerativeReplaceCarriesHint(t *testing.T) {
	dir := t.TempDir()
	roomPath := savedImage(t, dir, "room.png", 800, 600, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	furniturePath := savedImage(t, dir, "sofa.png", 40, 40, color.NRGBA{R: 200, G: 0, B: 0, A: 255})

	tasks := &fakeTasks{resultURL: resultServer(t).URL}
	g := NewGenerative(tasks, &fakeRefs{}, "Test Model")

	req := &Request{
		RoomPath:       roomPath,
		FurniturePaths: []string{furniturePath},
		PlacementMode:  ModeReplace,
		ReplaceHint:    "sofa on the left",
		Analysis:       analysis.DefaultAnalysis(),
		OutputDir:      dir,
	}

	if _, err := g.Compose(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(tasks.lastInput.Prompt, "sofa on the left") {
		t.Error("replace hint must pass through to the prompt")
	}
	if !strings.Contains(tasks.lastInput.Prompt, "REPLACE the existing furniture") {
		t.Error("replace prompt missing")
	}
}

func TestGenerativeRotatesFurnitureReference(t *testing.T) {
	dir := t.TempDir()
	roomPath := savedImage(t, dir, "room.png", 800, 600, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	furniturePath := savedImage(t, dir, "sofa.png", 40, 40, color.NRGBA{R: 200, G: 0, B: 0, A: 255})

	tasks := &fakeTasks{resultURL: resultServer(t).URL}
	refs := &fakeRefs{}
	g := NewGenerative(tasks, refs, "Test Model")

	a := analysis.FallbackAnalysis(1)
	a.Placement.Rotation = 90

	req := &Request{
		RoomPath:       roomPath,
		FurniturePaths: []string{furniturePath},
		PlacementMode:  ModePlace,
		Analysis:       a,
		OutputDir:      dir,
	}

	if _, err := g.Compose(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The uploaded furniture reference is the rotated temp file, not
	// the original upload.
	if len(refs.paths) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs.paths))
	}
	if refs.paths[1] == furniturePath {
		t.Error("rotated furniture must be referenced instead of the original")
	}
	if !strings.Contains(refs.paths[1], "rotated_") {
		t.Errorf("got furniture ref %q, want rotated temp file", refs.paths[1])
	}
}
