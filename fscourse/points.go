package fscourse

import (
	"encoding/json"
	"fmt"

	"github.com/programme-lv/schein/points"
)

// pointsFromToml converts a points table. Values are a number, a table of
// subexercise points, or a table with "points" and an optional "comment".
func pointsFromToml(raw map[string]any) (points.Map, error) {
	dto := make(points.MapDTO, len(raw))
	for key, v := range raw {
		entry := points.EntryDTO{}
		value := v
		if table, ok := v.(map[string]any); ok {
			if p, ok := table["points"]; ok {
				value = p
				if c, ok := table["comment"].(string); ok {
					entry.Comment = c
				}
			}
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return points.Map{}, fmt.Errorf("points %s: %w", key, err)
		}
		entry.Points = encoded
		dto[key] = entry
	}
	m, err := points.FromDTO(dto)
	if err != nil {
		return points.Map{}, fmt.Errorf("invalid points: %w", err)
	}
	return m, nil
}
