// Package recommend suggests complementary catalog items for a just
// placed piece of furniture, with a keyword fallback when the language
// model is unavailable.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/storage"
	"github.com/roomstager-app/roomstager/internal/vision"
)

// DefaultMax is the number of recommendations returned.
const DefaultMax = 4

// Recommendation is a catalog item plus the reasoning that picked it.
type Recommendation struct {
	storage.CatalogItem
	Reason   string `json:"recommendation_reason"`
	Category string `json:"recommendation_category"`
}

// Recommender ranks catalog items against the placed furniture.
type Recommender struct {
	client vision.Client
	model  string
	max    int
}

// New builds a recommender. client may be nil, in which case only the
// keyword fallback is used.
func New(client vision.Client, model string) *Recommender {
	return &Recommender{client: client, model: model, max: DefaultMax}
}

// Recommend picks up to DefaultMax catalog items that complement the
// placed furniture. Model failures fall back to keyword matching
// rather than failing the request.
func (r *Recommender) Recommend(ctx context.Context, furniture analysis.FurnitureAnalysis, room analysis.RoomAnalysis, catalog []storage.CatalogItem) []Recommendation {
	if len(catalog) == 0 {
		return nil
	}

	if r.client != nil {
		recs, err := r.generate(ctx, furniture, room, catalog)
		if err == nil && len(recs) > 0 {
			return recs
		}
		if err != nil {
			slog.Warn("Recommendation model failed, using keyword fallback", "error", err)
		}
	}

	return SimpleRecommendations(furniture.Type, catalog, 3)
}

func (r *Recommender) generate(ctx context.Context, furniture analysis.FurnitureAnalysis, room analysis.RoomAnalysis, catalog []storage.CatalogItem) ([]Recommendation, error) {
	text, err := r.client.Analyze(ctx, vision.Request{
		Model:       r.model,
		Prompt:      buildPrompt(furniture, room, catalog, r.max),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Recommendations []struct {
			ItemName string `json:"item_name"`
			Reason   string `json:"reason"`
			Category string `json:"category"`
		} `json:"recommendations"`
	}
	if err := analysis.ExtractJSON(text, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w", err)
	}

	recs := make([]Recommendation, 0, r.max)
	for _, rec := range parsed.Recommendations {
		item, ok := matchByName(rec.ItemName, catalog)
		if !ok {
			continue
		}
		category := rec.Category
		if category == "" {
			category = "complement"
		}
		recs = append(recs, Recommendation{
			CatalogItem: item,
			Reason:      rec.Reason,
			Category:    category,
		})
		if len(recs) == r.max {
			break
		}
	}
	return recs, nil
}

// matchByName finds the catalog item whose name contains, or is
// contained in, the model's item_name.
func matchByName(name string, catalog []storage.CatalogItem) (storage.CatalogItem, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return storage.CatalogItem{}, false
	}
	for _, item := range catalog {
		itemName := strings.ToLower(item.Name)
		if strings.Contains(itemName, name) || strings.Contains(name, itemName) {
			return item, true
		}
	}
	return storage.CatalogItem{}, false
}

func buildPrompt(furniture analysis.FurnitureAnalysis, room analysis.RoomAnalysis, catalog []storage.CatalogItem, max int) string {
	var catalogText strings.Builder
	for _, item := range catalog {
		fmt.Fprintf(&catalogText, "- %s: %s (style: %s, price: %.2f)\n",
			item.Name, item.Description, item.Style, item.Price)
	}

	return fmt.Sprintf(`You are a furniture sales and interior design expert. A customer just placed this furniture in their room: %s
Furniture characteristics:
- Style: %s
- Color: %s

Room characteristics:
- Interior style: %s
- Lighting: %s

Available catalog items:
%s
Recommend %d items from the catalog that match the chosen furniture stylistically, complement the interior functionally, and help complete the composition. For each recommendation explain WHY it fits (1-2 sentences).

Respond with JSON:
{
  "recommendations": [
    {
      "item_name": "catalog item name",
      "reason": "why this item fits",
      "category": "functional complement / stylistic match / accent"
    }
  ]
}`,
		orDefault(furniture.Type, "furniture"),
		orDefault(furniture.Style, "modern"),
		orDefault(furniture.Color, "neutral"),
		orDefault(room.Style, "modern"),
		orDefault(room.Lighting, "natural"),
		catalogText.String(), max)
}

// complements maps a placed furniture type to the item keywords that
// naturally pair with it.
var complements = map[string][]string{
	"sofa":     {"armchair", "coffee table", "floor lamp", "cushion"},
	"bed":      {"nightstand", "dresser", "lamp", "mirror"},
	"table":    {"chair", "chandelier", "vase"},
	"armchair": {"floor lamp", "coffee table", "footrest"},
	"wardrobe": {"mirror", "ottoman", "coat rack"},
}

// SimpleRecommendations is the no-model fallback: match catalog items
// against complement keywords for the furniture type, then pad with
// whatever else the catalog has.
func SimpleRecommendations(furnitureType string, catalog []storage.CatalogItem, count int) []Recommendation {
	keywords := complements[strings.ToLower(strings.TrimSpace(furnitureType))]

	picked := make([]Recommendation, 0, count)
	used := make(map[string]bool)

	for _, item := range catalog {
		if len(picked) >= count {
			break
		}
		haystack := strings.ToLower(item.Name + " " + item.Description)
		for _, keyword := range keywords {
			if strings.Contains(haystack, keyword) {
				picked = append(picked, Recommendation{CatalogItem: item, Category: "complement"})
				used[item.ID] = true
				break
			}
		}
	}

	for _, item := range catalog {
		if len(picked) >= count {
			break
		}
		if !used[item.ID] {
			picked = append(picked, Recommendation{CatalogItem: item, Category: "complement"})
			used[item.ID] = true
		}
	}

	return picked
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
