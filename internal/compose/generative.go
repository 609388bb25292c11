package compose

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/roomstager-app/roomstager/internal/genclient"
	"github.com/roomstager-app/roomstager/internal/imageops"
)

const (
	collageMaxItemHeight = 512
	collagePadding       = 40
)

// TaskRunner is the slice of the generation client the backend needs.
type TaskRunner interface {
	CreateTask(ctx context.Context, input genclient.TaskInput) (string, error)
	Await(ctx context.Context, taskID string) (string, error)
}

// Referencer turns a local image file into a URL or data URI the
// generation service can fetch.
type Referencer interface {
	ImageRef(path string) (string, error)
}

// Generative composes images through the external generation service.
// A single furniture item goes out as one room+furniture call; two or
// more items are first combined into a reference collage so the call
// count stays at one regardless of item count.
type Generative struct {
	Tasks      TaskRunner
	Refs       Referencer
	Model      string
	HTTPClient *http.Client
}

// NewGenerative wires the backend to a generation client and an image
// referencer.
func NewGenerative(tasks TaskRunner, refs Referencer, model string) *Generative {
	return &Generative{
		Tasks:      tasks,
		Refs:       refs,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *Generative) ModelName() string       { return g.Model }
func (g *Generative) PreservesOriginal() bool { return false }

func (g *Generative) Compose(ctx context.Context, req *Request) (string, error) {
	if req.PlacementMode == ModeReplace {
		return g.composeReplace(ctx, req)
	}
	if len(req.FurniturePaths) == 1 {
		return g.composeSingle(ctx, req)
	}
	return g.composeCollage(ctx, req)
}

func (g *Generative) composeSingle(ctx context.Context, req *Request) (string, error) {
	furniturePath := req.FurniturePaths[0]

	// Rotation is baked into the reference image before upload: the
	// generation model follows what it sees more reliably than what
	// the prompt says.
	if req.Analysis.Placement.Rotation == 90 {
		img, err := imageops.Load(furniturePath)
		if err != nil {
			return "", fmt.Errorf("failed to load furniture image: %w", err)
		}
		rotatedPath, err := imageops.SavePNG(imageops.Rotate90(img), req.OutputDir, "rotated_")
		if err != nil {
			return "", err
		}
		defer os.Remove(rotatedPath)
		furniturePath = rotatedPath
	}

	roomRef, err := g.Refs.ImageRef(req.RoomPath)
	if err != nil {
		return "", fmt.Errorf("failed to prepare room reference: %w", err)
	}
	furnitureRef, err := g.Refs.ImageRef(furniturePath)
	if err != nil {
		return "", fmt.Errorf("failed to prepare furniture reference: %w", err)
	}

	return g.run(ctx, req, buildSinglePrompt(req.Analysis), []string{roomRef, furnitureRef})
}

func (g *Generative) composeCollage(ctx context.Context, req *Request) (string, error) {
	images := make([]image.Image, 0, len(req.FurniturePaths))
	for _, path := range req.FurniturePaths {
		img, err := imageops.Load(path)
		if err != nil {
			return "", fmt.Errorf("failed to load furniture image: %w", err)
		}
		images = append(images, img)
	}

	collage, err := imageops.BuildCollage(images, collageMaxItemHeight, collagePadding)
	if err != nil {
		return "", fmt.Errorf("failed to build reference collage: %w", err)
	}
	collagePath, err := imageops.SavePNG(collage, req.OutputDir, "collage_")
	if err != nil {
		return "", err
	}
	defer os.Remove(collagePath)

	roomRef, err := g.Refs.ImageRef(req.RoomPath)
	if err != nil {
		return "", fmt.Errorf("failed to prepare room reference: %w", err)
	}
	collageRef, err := g.Refs.ImageRef(collagePath)
	if err != nil {
		return "", fmt.Errorf("failed to prepare collage reference: %w", err)
	}

	prompt := buildCollagePrompt(req.Analysis, len(req.FurniturePaths))
	return g.run(ctx, req, prompt, []string{roomRef, collageRef})
}

func (g *Generative) composeReplace(ctx context.Context, req *Request) (string, error) {
	roomRef, err := g.Refs.ImageRef(req.RoomPath)
	if err != nil {
		return "", fmt.Errorf("failed to prepare room reference: %w", err)
	}
	furnitureRef, err := g.Refs.ImageRef(req.FurniturePaths[0])
	if err != nil {
		return "", fmt.Errorf("failed to prepare furniture reference: %w", err)
	}

	return g.run(ctx, req, buildReplacePrompt(req.ReplaceHint), []string{roomRef, furnitureRef})
}

// run submits one generation task with the room-derived aspect ratio,
// waits for it, and downloads the result.
func (g *Generative) run(ctx context.Context, req *Request, prompt string, refs []string) (string, error) {
	aspectRatio := "auto"
	if room, err := imageops.Load(req.RoomPath); err == nil {
		w, h := imageops.Dimensions(room)
		aspectRatio = SnapAspectRatio(w, h)
	}

	taskID, err := g.Tasks.CreateTask(ctx, genclient.TaskInput{
		Prompt:      prompt,
		ImageURLs:   refs,
		AspectRatio: aspectRatio,
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit generation task: %w", err)
	}
	slog.Info("Generation task submitted", "task_id", taskID, "aspect_ratio", aspectRatio)

	resultURL, err := g.Tasks.Await(ctx, taskID)
	if err != nil {
		return "", err
	}

	path, err := imageops.Download(g.HTTPClient, resultURL, req.OutputDir)
	if err != nil {
		return "", fmt.Errorf("failed to download generation result: %w", err)
	}
	return path, nil
}
