// Package handlers exposes the staging pipeline over HTTP: photo
// uploads, generation, the furniture catalog, and recommendations.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/compose"
	"github.com/roomstager-app/roomstager/internal/quota"
	"github.com/roomstager-app/roomstager/internal/recommend"
	"github.com/roomstager-app/roomstager/internal/segment"
	"github.com/roomstager-app/roomstager/internal/storage"
	"github.com/roomstager-app/roomstager/internal/vision"
)

// Dispatcher runs one validated composition request end to end.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *compose.Request) (*compose.Result, error)
}

type Handler struct {
	store       *storage.Store
	analyzer    *analysis.Analyzer
	dispatcher  Dispatcher
	guard       *quota.Guard
	remover     segment.Remover
	recommender *recommend.Recommender

	uploadsDir string
	resultsDir string
	catalogDir string
}

type Config struct {
	Store       *storage.Store
	Analyzer    *analysis.Analyzer
	Dispatcher  Dispatcher
	Guard       *quota.Guard
	Remover     segment.Remover
	Recommender *recommend.Recommender
	UploadsDir  string
	ResultsDir  string
	CatalogDir  string
}

func New(cfg Config) *Handler {
	return &Handler{
		store:       cfg.Store,
		analyzer:    cfg.Analyzer,
		dispatcher:  cfg.Dispatcher,
		guard:       cfg.Guard,
		remover:     cfg.Remover,
		recommender: cfg.Recommender,
		uploadsDir:  cfg.UploadsDir,
		resultsDir:  cfg.ResultsDir,
		catalogDir:  cfg.CatalogDir,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// LogVisit records the request before passing it on.
func (h *Handler) LogVisit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.store.LogVisit(quota.ClientID(r), r.UserAgent(), r.URL.Path, r.Method)
		next(w, r)
	}
}

// loadVisionImage reads an uploaded file into the shape the vision
// providers accept. Uploads are stored as PNG, but catalog imports may
// carry other extensions.
func loadVisionImage(path string) (vision.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vision.Image{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	mimeType := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".gif":
		mimeType = "image/gif"
	case ".webp":
		mimeType = "image/webp"
	}
	return vision.Image{Data: data, MimeType: mimeType}, nil
}

// insideDir reports whether path resolves under dir, guarding the
// path-typed form fields against traversal.
func insideDir(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
