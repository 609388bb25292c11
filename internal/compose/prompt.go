package compose

import (
	"fmt"
	"strings"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/geometry"
)

// SnapAspectRatio maps room image dimensions to the nearest standard
// aspect ratio the generation API accepts, or "auto" when the ratio
// falls outside every tolerance window.
func SnapAspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "auto"
	}
	ratio := float64(width) / float64(height)
	switch {
	case ratio > 0.95 && ratio < 1.05:
		return "1:1"
	case ratio > 1.3 && ratio < 1.4:
		return "4:3"
	case ratio > 1.5 && ratio < 1.6:
		return "3:2"
	case ratio > 1.7 && ratio < 1.9:
		return "16:9"
	case ratio > 2.2 && ratio < 2.4:
		return "21:9"
	case ratio > 0.6 && ratio < 0.7:
		return "2:3"
	case ratio > 0.7 && ratio < 0.8:
		return "3:4"
	case ratio > 0.5 && ratio < 0.6:
		return "9:16"
	default:
		return "auto"
	}
}

// DescribePlacements produces one placement clause per furniture item,
// in collage order. The clause count always equals itemCount: missing
// furniture_items entries are backfilled with the deterministic layout
// and entries beyond itemCount are ignored, so the instructions never
// drift out of sync with the reference collage.
func DescribePlacements(a *analysis.PlacementAnalysis, itemCount int) string {
	byIndex := make(map[int]analysis.FurnitureItem, len(a.FurnitureItems))
	for _, item := range a.FurnitureItems {
		byIndex[item.Index] = item
	}

	lines := make([]string, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		item, ok := byIndex[i]
		rect := analysis.FallbackRect(i, itemCount)
		if ok && item.Placement != nil {
			rect = item.Placement.Rect
		}
		itemType := item.Type
		if itemType == "" {
			itemType = "furniture item"
		}
		color := item.Color
		if color == "" {
			color = "neutral"
		}
		lines = append(lines, fmt.Sprintf(
			"Item %d (position %d in the row, from left): %s %s - place in the room center at %.0f%% from left, %.0f%% from top, area about %.0f%% width and %.0f%% height.",
			i+1, i+1, color, itemType,
			rect.XPercent, rect.YPercent, rect.WidthPercent, rect.HeightPercent,
		))
	}
	return strings.Join(lines, "\n")
}

func buildSinglePrompt(a *analysis.PlacementAnalysis) string {
	furnitureType := orDefault(a.FurnitureAnalysis.Type, "furniture item")
	furnitureColor := orDefault(a.FurnitureAnalysis.Color, "neutral toned")
	roomStyle := orDefault(a.RoomAnalysis.Style, "modern")
	roomLighting := orDefault(a.RoomAnalysis.Lighting, "natural lighting")
	p := a.Placement

	placementHint := p.Reasoning
	if p.WidthPercent > 0 && p.HeightPercent > 0 {
		placementHint = fmt.Sprintf(
			"Place the furniture centered at approximately %.1f%% from the left and %.1f%% from the top. Fit it inside a rectangle of about %.1f%% width and %.1f%% height of the room image.",
			p.XPercent, p.YPercent, p.WidthPercent, p.HeightPercent)
	}
	if placementHint == "" {
		placementHint = "Place it naturally in the room where it fits best"
	}

	rotationHint := ""
	if p.Rotation == 90 {
		rotationHint = "\nThe furniture is rotated 90 degrees to match the requested orientation (vertical vs horizontal)."
	}

	wallHint := ""
	switch p.WallAlignment {
	case geometry.WallLeft, geometry.WallRight, geometry.WallBack:
		wallHint = fmt.Sprintf(
			"\nIMPORTANT: Place the furniture ALONG the %s wall, parallel to it, and flush against it. Do NOT place it perpendicular across the room.",
			p.WallAlignment)
	}

	return fmt.Sprintf(`Seamlessly integrate the exact %s %s from the second image into the %s room from the first image.

CRITICAL: Preserve the EXACT appearance of the furniture - same color, texture, and design.

Placement: %s%s%s

Requirements:
- Match the room's %s
- Add realistic shadows and reflections
- Adjust perspective to fit naturally
- Maintain photorealistic quality
- Keep furniture IDENTICAL to the original image
- Blend seamlessly with the interior
- CRITICAL: Place furniture ON THE FLOOR, standing normally. Do NOT put it on the wall or vertically. Beds horizontal on the floor, chairs and sofas upright with legs on the ground.

Output in high resolution with sharp details.`,
		furnitureColor, furnitureType, roomStyle,
		placementHint, rotationHint, wallHint,
		roomLighting)
}

func buildCollagePrompt(a *analysis.PlacementAnalysis, itemCount int) string {
	roomStyle := orDefault(a.RoomAnalysis.Style, "modern")
	roomLighting := orDefault(a.RoomAnalysis.Lighting, "natural lighting")

	return fmt.Sprintf(`The first image is the room. The second image is a reference sheet with %d furniture items arranged in a row from LEFT to RIGHT (item 1 = leftmost, item %d = rightmost).

Place each item from the second image into the %s room at these positions:
%s

CRITICAL: Preserve the EXACT appearance of every furniture item - same colors, textures, and design. Integrate ALL items into the room in one coherent scene.
CRITICAL: Place ALL furniture ON THE FLOOR, standing normally. Do NOT put furniture on walls or vertically against the wall. Beds must be horizontal on the floor, chairs and sofas upright on the floor with legs on the ground.
Match the room's %s. Add realistic shadows and reflections. Maintain photorealistic quality. Output in high resolution with sharp details.`,
		itemCount, itemCount, roomStyle,
		DescribePlacements(a, itemCount),
		roomLighting)
}

func buildReplacePrompt(replaceHint string) string {
	whatLine := ""
	if hint := strings.TrimSpace(replaceHint); hint != "" {
		whatLine = fmt.Sprintf(" The furniture to replace in the room is: %s.\n", hint)
	}
	return fmt.Sprintf(`The first image is a room with existing furniture. The second image shows the NEW furniture that should replace the corresponding old item.%s
TASK: REPLACE the existing furniture in the room with the new furniture from the second image.
- Remove the old furniture completely.
- Place the new furniture in the SAME location and position where the old one was.
- Keep the rest of the room unchanged: walls, floor, other objects, lighting.
- Preserve the EXACT appearance of the new furniture (same color, texture, design).
- Match the room's lighting and add realistic shadows. The result must look photorealistic.
- The new furniture must stand ON THE FLOOR in a natural orientation, not on the wall.`, whatLine)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
