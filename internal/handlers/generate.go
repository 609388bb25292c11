package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/compose"
	"github.com/roomstager-app/roomstager/internal/geometry"
	"github.com/roomstager-app/roomstager/internal/imageops"
	"github.com/roomstager-app/roomstager/internal/quota"
	"github.com/roomstager-app/roomstager/internal/vision"
)

type generateRequest struct {
	roomPath       string
	furniturePaths []string
	mode           string
	placementMode  string
	replaceWhat    string
	manualBox      *geometry.ManualBox
	manualPoint    *geometry.Point
	rotation       int
	wallAlignment  geometry.Wall
}

// HandleGenerate runs the full staging pipeline: quota check, vision
// analysis (with deterministic fallback), manual-geometry merge, and
// composition dispatch. Usage is counted only when composition
// succeeds.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := h.parseGenerateRequest(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientID := quota.ClientID(r)
	if err := h.guard.Check(clientID); err != nil {
		var exceeded *quota.ErrQuotaExceeded
		if errors.As(err, &exceeded) {
			h.writeError(w, exceeded.Error(), http.StatusTooManyRequests)
			return
		}
		h.writeError(w, "Failed to check quota: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resolved := h.resolveAnalysis(r, req)

	// Manual geometry is merged after analysis so user input always
	// wins, and the request's rotation and wall alignment are applied
	// last so they override anything the model proposed.
	wall := req.wallAlignment
	if req.mode == "manual" && req.manualBox != nil {
		wall = h.applyManualBox(resolved, req, wall)
	}
	resolved.Placement.Rotation = req.rotation
	resolved.Placement.WallAlignment = wall

	result, err := h.dispatcher.Dispatch(r.Context(), &compose.Request{
		RoomPath:       req.roomPath,
		FurniturePaths: req.furniturePaths,
		PlacementMode:  req.placementMode,
		ReplaceHint:    req.replaceWhat,
		Analysis:       resolved,
		OutputDir:      h.resultsDir,
	})
	if err != nil {
		if errors.Is(err, geometry.ErrInvalidInput) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeError(w, "Generation failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	if err := h.store.IncrementUsage(clientID); err != nil {
		slog.Warn("Failed to record trial usage", "client", clientID, "error", err)
	}

	h.writeJSON(w, map[string]any{
		"success":                 true,
		"result_image_path":       result.ResultImagePath,
		"result_image_url":        result.ResultImageURL,
		"generation_time_seconds": result.GenerationTime,
		"model_used":              result.ModelUsed,
		"preserves_original":      result.PreservesOriginal,
		"analysis":                result.Analysis,
		"furniture_count":         result.FurnitureCount,
	})
}

func (h *Handler) parseGenerateRequest(r *http.Request) (*generateRequest, error) {
	req := &generateRequest{
		roomPath:      strings.TrimSpace(r.FormValue("room_image_path")),
		mode:          formDefault(r, "mode", "auto"),
		placementMode: formDefault(r, "placement_mode", compose.ModePlace),
		replaceWhat:   r.FormValue("replace_what"),
	}

	if req.roomPath == "" {
		return nil, errors.New("room_image_path is required")
	}
	if !insideDir(req.roomPath, h.uploadsDir) {
		return nil, errors.New("room_image_path is not an uploaded file")
	}

	paths, err := parseFurniturePaths(r)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if !insideDir(p, h.uploadsDir) && !insideDir(p, h.catalogDir) {
			return nil, errors.New("furniture image path is not an uploaded or catalog file")
		}
	}
	req.furniturePaths = paths

	if len(paths) == 0 {
		return nil, errors.New("at least one furniture image is required")
	}
	if len(paths) > compose.MaxFurnitureItems {
		return nil, errors.New("at most 5 furniture images are allowed")
	}
	if req.placementMode == compose.ModeReplace && len(paths) != 1 {
		return nil, errors.New("replace mode requires exactly one furniture image")
	}

	rotation, err := strconv.Atoi(formDefault(r, "furniture_rotation", "0"))
	if err != nil {
		return nil, errors.New("furniture_rotation must be an integer")
	}
	if req.rotation, err = geometry.ValidateRotation(rotation); err != nil {
		return nil, errors.New("furniture_rotation must be 0 or 90")
	}

	wall := formDefault(r, "wall_alignment", string(geometry.WallAuto))
	if !geometry.ValidWall(wall) {
		return nil, errors.New("wall_alignment must be auto, left, right, or back")
	}
	req.wallAlignment = geometry.Wall(wall)

	req.manualBox = parseManualBox(r)
	if x, errX := formInt(r, "manual_x"); errX == nil {
		if y, errY := formInt(r, "manual_y"); errY == nil {
			req.manualPoint = &geometry.Point{X: x, Y: y}
		}
	}

	return req, nil
}

// resolveAnalysis obtains the placement analysis, degrading to the
// deterministic layout in place mode so a result is always produced.
// Replace mode needs no placement geometry.
func (h *Handler) resolveAnalysis(r *http.Request, req *generateRequest) *analysis.PlacementAnalysis {
	if req.placementMode == compose.ModeReplace {
		return analysis.DefaultAnalysis()
	}

	images, err := h.loadRequestImages(req)
	if err != nil {
		slog.Warn("Failed to load images for analysis, using deterministic layout", "error", err)
		return analysis.FallbackAnalysis(len(req.furniturePaths))
	}

	manual := geometry.ResolveManualPosition(req.mode, req.manualBox, req.manualPoint)
	resolved, err := h.analyzer.AnalyzePlacement(r.Context(), images[0], images[1:], manual)
	if err != nil {
		slog.Warn("Vision analysis unavailable, using deterministic layout", "error", err)
		return analysis.FallbackAnalysis(len(req.furniturePaths))
	}
	return resolved
}

func (h *Handler) loadRequestImages(req *generateRequest) ([]vision.Image, error) {
	images := make([]vision.Image, 0, len(req.furniturePaths)+1)
	room, err := loadVisionImage(req.roomPath)
	if err != nil {
		return nil, err
	}
	images = append(images, room)
	for _, path := range req.furniturePaths {
		img, err := loadVisionImage(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// applyManualBox overwrites the analyzed placement with the user's
// rectangle and infers the wall alignment from it when still auto.
func (h *Handler) applyManualBox(resolved *analysis.PlacementAnalysis, req *generateRequest, wall geometry.Wall) geometry.Wall {
	room, err := imageops.Load(req.roomPath)
	if err != nil {
		slog.Warn("Failed to load room image for manual box, keeping analyzed placement", "error", err)
		return wall
	}
	roomW, roomH := imageops.Dimensions(room)

	box := geometry.ClampBox(*req.manualBox, roomW, roomH)
	resolved.Placement = analysis.Placement{
		Rect:      geometry.BoxToRect(box, roomW, roomH),
		Reasoning: "User selected target rectangle (bbox). Place furniture inside this area.",
	}

	if wall == geometry.WallAuto {
		wall = geometry.InferWall(box, roomW, roomH)
	}
	return wall
}

// HandleScanRoom lists furniture the vision model sees in a room
// photo, used to pick a replace target. Parse failures yield an empty
// list, not an error.
func (h *Handler) HandleScanRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	roomPath := strings.TrimSpace(r.FormValue("room_image_path"))
	if roomPath == "" {
		h.writeError(w, "room_image_path is required", http.StatusBadRequest)
		return
	}
	if !insideDir(roomPath, h.uploadsDir) {
		h.writeError(w, "room_image_path is not an uploaded file", http.StatusBadRequest)
		return
	}

	room, err := loadVisionImage(roomPath)
	if err != nil {
		h.writeError(w, "Failed to read room image: "+err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.analyzer.AnalyzeRoomForReplace(r.Context(), room)
	if err != nil {
		h.writeError(w, "Room scan failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if items == nil {
		items = []analysis.VisibleItem{}
	}

	h.writeJSON(w, map[string]any{
		"success": true,
		"items":   items,
	})
}

func parseFurniturePaths(r *http.Request) ([]string, error) {
	if raw := strings.TrimSpace(r.FormValue("furniture_image_paths")); raw != "" {
		var paths []string
		if err := json.Unmarshal([]byte(raw), &paths); err != nil {
			return nil, errors.New("furniture_image_paths must be a JSON array of strings")
		}
		return paths, nil
	}
	if single := strings.TrimSpace(r.FormValue("furniture_image_path")); single != "" {
		return []string{single}, nil
	}
	return nil, nil
}

func parseManualBox(r *http.Request) *geometry.ManualBox {
	x, errX := formInt(r, "manual_box_x")
	y, errY := formInt(r, "manual_box_y")
	w, errW := formInt(r, "manual_box_w")
	h, errH := formInt(r, "manual_box_h")
	if errX != nil || errY != nil || errW != nil || errH != nil {
		return nil
	}
	return &geometry.ManualBox{X: x, Y: y, W: w, H: h}
}

func formInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return 0, errors.New(name + " not set")
	}
	return strconv.Atoi(v)
}

func formDefault(r *http.Request, name, def string) string {
	if v := strings.TrimSpace(r.FormValue(name)); v != "" {
		return v
	}
	return def
}
