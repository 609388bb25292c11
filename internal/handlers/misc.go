package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roomstager-app/roomstager/internal/storage"
)

// HandleHealth reports service readiness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"status": "healthy",
		"services": map[string]string{
			"vision":     "ready",
			"generation": "ready",
			"catalog":    "ready",
		},
	})
}

// HandleVisits lists recent API visits.
func (h *Handler) HandleVisits(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	visits, err := h.store.ListVisits(limit)
	if err != nil {
		h.writeError(w, "Failed to list visits: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if visits == nil {
		visits = []storage.Visit{}
	}
	h.writeJSON(w, map[string]any{"success": true, "visits": visits})
}

// ServeResults serves generated result images.
func (h *Handler) ServeResults(w http.ResponseWriter, r *http.Request) {
	h.serveFrom(w, r, "/results/", h.resultsDir)
}

// ServeUploads serves uploaded photos.
func (h *Handler) ServeUploads(w http.ResponseWriter, r *http.Request) {
	h.serveFrom(w, r, "/uploads/", h.uploadsDir)
}

// ServeCatalog serves catalog item images.
func (h *Handler) ServeCatalog(w http.ResponseWriter, r *http.Request) {
	h.serveFrom(w, r, "/catalog/", h.catalogDir)
}

func (h *Handler) serveFrom(w http.ResponseWriter, r *http.Request, prefix, dir string) {
	name := strings.TrimPrefix(r.URL.Path, prefix)
	if name == "" || strings.Contains(name, "..") || strings.ContainsRune(name, '/') {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(dir, name))
}
