package tutorials

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/setlog/setlog/internal/cache"
)

// CategoryAll matches every tutorial when used as a filter.
const CategoryAll = "All"

// Categories lists the filterable categories in display order. The server
// stores them uppercased with underscores (Form Guide -> FORM_GUIDE).
var Categories = []string{CategoryAll, "Form Guide", "Workout Tips", "Nutrition", "Recovery"}

// Tutorial is one video entry from the library.
type Tutorial struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Type          string `json:"type"`
	Difficulty    string `json:"difficulty"`
	VideoURL      string `json:"videoUrl"`
	VideoDuration string `json:"videoDuration"`
	ThumbnailURL  string `json:"thumbnailUrl"`
}

// Thumbnail prefers the explicit thumbnail and falls back to the one YouTube
// derives from the video URL.
func (t Tutorial) Thumbnail() string {
	if t.ThumbnailURL != "" {
		return t.ThumbnailURL
	}
	return YouTubeThumbnail(t.VideoURL)
}

// Filter narrows the library locally; zero value matches everything.
type Filter struct {
	Search   string
	Category string
}

func (f Filter) matches(t Tutorial) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.Category != "" && f.Category != CategoryAll {
		wire := strings.ReplaceAll(strings.ToUpper(f.Category), " ", "_")
		if t.Type != wire {
			return false
		}
	}
	return true
}

type apiClient interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// Service serves the tutorial library, cached like every other read surface.
type Service struct {
	api   apiClient
	cache *cache.QueryCache
}

func NewService(api apiClient, queryCache *cache.QueryCache) *Service {
	return &Service{api: api, cache: queryCache}
}

// List returns tutorials matching the filter, in server order.
func (s *Service) List(ctx context.Context, filter Filter) ([]Tutorial, error) {
	data, err := s.cache.Fetch(ctx, cache.KeyTutorials, cache.NoParams,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.api.Get(ctx, "/tutorials/search")
		})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Items []Tutorial `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode tutorials: %w", err)
	}

	var matched []Tutorial
	for _, tut := range payload.Items {
		if filter.matches(tut) {
			matched = append(matched, tut)
		}
	}
	return matched, nil
}

// youTubeIDPattern pulls the 11-character video id out of watch, share,
// embed and shorts URL shapes.
var youTubeIDPattern = regexp.MustCompile(`(?:youtu\.be/|v/|u/\w/|embed/|shorts/|watch\?v=|&v=)([^#&?]*)`)

// YouTubeID extracts the video id from a YouTube URL, empty when the URL is
// not recognizable.
func YouTubeID(url string) string {
	match := youTubeIDPattern.FindStringSubmatch(url)
	if match == nil || len(match[1]) != 11 {
		return ""
	}
	return match[1]
}

// YouTubeThumbnail returns the hqdefault thumbnail URL for a video, empty
// when no video id can be extracted.
func YouTubeThumbnail(url string) string {
	id := YouTubeID(url)
	if id == "" {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id)
}
