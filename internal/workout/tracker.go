package workout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/setlog/setlog/internal/cache"
)

// Tracker is the read side: latest-session and history snapshots served
// through the query cache.
type Tracker struct {
	api   apiClient
	cache *cache.QueryCache
}

func NewTracker(api apiClient, queryCache *cache.QueryCache) *Tracker {
	return &Tracker{api: api, cache: queryCache}
}

// Latest returns the latest (possibly active) session, nil when the user has
// none. On a fetch failure with retained data, both the stale session and the
// error are returned so callers can show last-known state with a staleness
// indicator.
func (t *Tracker) Latest(ctx context.Context) (*Session, error) {
	data, fetchErr := t.cache.Fetch(ctx, cache.KeyLatestSession, cache.NoParams, func(ctx context.Context) (json.RawMessage, error) {
		return t.api.Get(ctx, "/sessions/latest")
	})
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fetchErr
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode latest session: %w", err)
	}
	return &session, fetchErr
}

// LatestStatus reports the cache status of the latest-session snapshot, for
// the staleness indicator.
func (t *Tracker) LatestStatus() cache.Status {
	return t.cache.EntryStatus(cache.KeyLatestSession, cache.NoParams)
}

type historyResponse struct {
	Items []Session `json:"items"`
}

// History returns all sessions, newest first as the server orders them.
func (t *Tracker) History(ctx context.Context) ([]Session, error) {
	data, fetchErr := t.cache.Fetch(ctx, cache.KeySessionsHistory, cache.NoParams, func(ctx context.Context) (json.RawMessage, error) {
		return t.api.Get(ctx, "/sessions")
	})
	if len(data) == 0 {
		return nil, fetchErr
	}

	var resp historyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode sessions history: %w", err)
	}
	return resp.Items, fetchErr
}

// Subscribe registers interest in latest-session updates (mutations elsewhere
// in the process trigger refetches that land here).
func (t *Tracker) Subscribe() (<-chan cache.Update, func()) {
	return t.cache.Subscribe(cache.KeyLatestSession, cache.NoParams)
}
