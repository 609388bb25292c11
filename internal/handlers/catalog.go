package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roomstager-app/roomstager/internal/imageops"
	"github.com/roomstager-app/roomstager/internal/storage"
)

// HandleCatalog lists the catalog on GET and adds an item on POST.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		items, err := h.store.ListCatalog()
		if err != nil {
			h.writeError(w, "Failed to list catalog: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []storage.CatalogItem{}
		}
		h.writeJSON(w, map[string]any{"success": true, "items": items})
	case "POST":
		h.addCatalogItem(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) addCatalogItem(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	itemType := strings.TrimSpace(r.FormValue("item_type"))
	style := strings.TrimSpace(r.FormValue("style"))
	if name == "" || itemType == "" || style == "" {
		h.writeError(w, "name, item_type, and style are required", http.StatusBadRequest)
		return
	}

	price := 0.0
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		var err error
		if price, err = strconv.ParseFloat(raw, 64); err != nil {
			h.writeError(w, "price must be a number", http.StatusBadRequest)
			return
		}
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	path, _, _, err := imageops.SaveUpload(data, h.catalogDir)
	if err != nil {
		h.writeError(w, "Failed to save image: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.remover.RemoveBackground(path); err != nil {
		h.writeError(w, "Failed to process image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	item, err := h.store.AddCatalogItem(storage.CatalogItem{
		Name:        name,
		Type:        itemType,
		Style:       style,
		ImagePath:   path,
		ImageURL:    "/catalog/" + filepath.Base(path),
		Description: r.FormValue("description"),
		Price:       price,
	})
	if err != nil {
		h.writeError(w, "Failed to add catalog item: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{"success": true, "item": item})
}

// HandleCatalogItem deletes a catalog item and its image file.
func (h *Handler) HandleCatalogItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/catalog/")
	if id == "" || strings.Contains(id, "/") {
		h.writeError(w, "Invalid catalog item id", http.StatusBadRequest)
		return
	}

	item, err := h.store.GetCatalogItem(id)
	if err != nil {
		h.writeError(w, "Catalog item not found", http.StatusNotFound)
		return
	}

	if err := h.store.DeleteCatalogItem(id); err != nil {
		h.writeError(w, "Failed to delete catalog item: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if item.ImagePath != "" {
		if err := os.Remove(item.ImagePath); err != nil && !os.IsNotExist(err) {
			h.writeError(w, "Failed to delete catalog image: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	h.writeJSON(w, map[string]any{"success": true, "message": "Item deleted"})
}
