package exercises

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/setlog/setlog/internal/cache"
)

// MuscleGroupAll matches every exercise when used as a filter.
const MuscleGroupAll = "All"

// MuscleGroups lists the filterable groups in display order.
var MuscleGroups = []string{
	MuscleGroupAll, "Chest", "Back", "Shoulders", "Quadriceps",
	"Hamstrings", "Glutes", "Biceps", "Triceps", "Abs",
}

// Exercise is one catalog entry. MuscleGroups carries a single group name,
// the plural is the server's field name.
type Exercise struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	MuscleGroups       string `json:"muscleGroups"`
	EquipmentType      string `json:"equipmentType"`
	DifficultyLevel    string `json:"difficultyLevel"`
	Description        string `json:"description"`
	Instructions       string `json:"instructions"`
	VideoDemonstration string `json:"videoDemonstration"`
}

// Filter narrows the catalog locally; zero value matches everything.
type Filter struct {
	Search      string
	MuscleGroup string
}

func (f Filter) matches(ex Exercise) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(ex.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.MuscleGroup != "" && f.MuscleGroup != MuscleGroupAll &&
		!strings.EqualFold(ex.MuscleGroups, f.MuscleGroup) {
		return false
	}
	return true
}

type apiClient interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// Catalog serves the exercise library. The full list is fetched once per
// staleness window and filtered locally.
type Catalog struct {
	api   apiClient
	cache *cache.QueryCache
}

func NewCatalog(api apiClient, queryCache *cache.QueryCache) *Catalog {
	return &Catalog{api: api, cache: queryCache}
}

// List returns catalog entries matching the filter, in server order.
func (c *Catalog) List(ctx context.Context, filter Filter) ([]Exercise, error) {
	data, err := c.cache.Fetch(ctx, cache.KeyExercises, cache.NoParams,
		func(ctx context.Context) (json.RawMessage, error) {
			return c.api.Get(ctx, "/exercises")
		})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Items []Exercise `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}

	var matched []Exercise
	for _, ex := range payload.Items {
		if filter.matches(ex) {
			matched = append(matched, ex)
		}
	}
	return matched, nil
}
