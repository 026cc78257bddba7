package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/setlog/setlog/internal/cache"
)

// Overview is the landing page summary.
type Overview struct {
	RecentSessions []RecentSession `json:"recentSessions"`
}

// RecentSession is a compact history row shown on the overview.
type RecentSession struct {
	ID          string  `json:"id"`
	ProgramName string  `json:"programName"`
	StartTime   string  `json:"startTime"`
	TotalVolume float64 `json:"totalVolume"`
}

// Stats holds the lifetime training aggregates.
type Stats struct {
	TotalVolume         float64 `json:"totalVolume"`
	TotalWorkouts       int     `json:"totalWorkouts"`
	TotalCaloriesBurned int     `json:"totalCaloriesBurned"`
	ActiveStreak        int     `json:"activeStreak"`
}

// ProgressPoint is one period of training volume, ordered oldest first.
type ProgressPoint struct {
	Period      string  `json:"period"`
	TotalVolume float64 `json:"totalVolume"`
}

// Program is a predefined workout template a session can be started from.
type Program struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
}

type apiClient interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// Service serves the read-only analytics surface, every read going through
// the query cache.
type Service struct {
	api   apiClient
	cache *cache.QueryCache
}

func NewService(api apiClient, queryCache *cache.QueryCache) *Service {
	return &Service{api: api, cache: queryCache}
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	data, err := s.cache.Fetch(ctx, cache.KeyDashboard, cache.NoParams,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.api.Get(ctx, "/dashboard")
		})
	if err != nil {
		return nil, err
	}
	var overview Overview
	if err := json.Unmarshal(data, &overview); err != nil {
		return nil, fmt.Errorf("decode dashboard: %w", err)
	}
	return &overview, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	data, err := s.cache.Fetch(ctx, cache.KeyStats, cache.NoParams,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.api.Get(ctx, "/analytics/stats")
		})
	if err != nil {
		return nil, err
	}
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}

// Progress returns per-period volume points. The payload nests them under a
// progress field.
func (s *Service) Progress(ctx context.Context) ([]ProgressPoint, error) {
	data, err := s.cache.Fetch(ctx, cache.KeyProgress, cache.NoParams,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.api.Get(ctx, "/analytics/progress")
		})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Progress []ProgressPoint `json:"progress"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return payload.Progress, nil
}

// Programs returns the program catalog, optionally narrowed by a
// case-insensitive name substring. Filtering happens on the cached list, not
// on the server.
func (s *Service) Programs(ctx context.Context, search string) ([]Program, error) {
	data, err := s.cache.Fetch(ctx, cache.KeyPrograms, cache.NoParams,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.api.Get(ctx, "/programs")
		})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Items []Program `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode programs: %w", err)
	}
	if search == "" {
		return payload.Items, nil
	}

	needle := strings.ToLower(search)
	var filtered []Program
	for _, p := range payload.Items {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
