package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/recommend"
)

// HandleRecommendations suggests complementary catalog items for the
// furniture the client just placed. An empty catalog is a valid,
// empty response.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		FurnitureAnalysis analysis.FurnitureAnalysis `json:"furniture_analysis"`
		RoomAnalysis      analysis.RoomAnalysis      `json:"room_analysis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	catalog, err := h.store.ListCatalog()
	if err != nil {
		h.writeError(w, "Failed to list catalog: "+err.Error(), http.StatusInternalServerError)
		return
	}

	recs := h.recommender.Recommend(r.Context(), body.FurnitureAnalysis, body.RoomAnalysis, catalog)
	if recs == nil {
		recs = []recommend.Recommendation{}
	}

	h.writeJSON(w, map[string]any{
		"success":         true,
		"recommendations": recs,
	})
}
