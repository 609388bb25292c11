package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/roomstager-app/roomstager/internal/imageops"
)

const maxUploadBytes = 10 * 1024 * 1024

// HandleUploadRoom stores a room photo.
func (h *Handler) HandleUploadRoom(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, false)
}

// HandleUploadFurniture stores a furniture photo and strips its
// background when the segmentation service is available.
func (h *Handler) HandleUploadFurniture(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, true)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, removeBackground bool) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if contentType := header.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		h.writeError(w, "File must be an image", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(data) >= maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	path, width, height, err := imageops.SaveUpload(data, h.uploadsDir)
	if err != nil {
		h.writeError(w, "Failed to save image: "+err.Error(), http.StatusBadRequest)
		return
	}

	backgroundRemoved := false
	if removeBackground {
		if _, err := h.remover.RemoveBackground(path); err != nil {
			h.writeError(w, "Failed to process image: "+err.Error(), http.StatusInternalServerError)
			return
		}
		backgroundRemoved = true
	}

	h.writeJSON(w, map[string]any{
		"success":            true,
		"file_path":          path,
		"filename":           filepath.Base(path),
		"width":              width,
		"height":             height,
		"background_removed": backgroundRemoved,
	})
}
