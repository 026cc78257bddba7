package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/setlog/setlog/internal/cache"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=api_mocks_test.go -package=workout_test

// ErrNoActiveSession is the client-side precondition failure: a mutation that
// needs a session id was called without one. No gateway call is made.
var ErrNoActiveSession = errors.New("no active session")

// apiClient is the slice of the gateway the pipeline needs (for dependency
// injection and testing).
type apiClient interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Pipeline is the ordered set of operations mutating the in-progress workout
// session. It owns no state: it borrows the gateway and the query cache, and
// on every successful mutation invalidates the latest-session snapshot so all
// subscribed views refetch. Mutation failures are never auto-retried; the
// caller shows the error and lets the user resubmit. Fire-once is caller
// discipline: one mutation per user action, no debouncing here.
type Pipeline struct {
	api   apiClient
	cache *cache.QueryCache

	// NowFunc is the clock used for session start timestamps (for tests).
	NowFunc func() time.Time
}

func NewPipeline(api apiClient, queryCache *cache.QueryCache) *Pipeline {
	return &Pipeline{
		api:     api,
		cache:   queryCache,
		NowFunc: time.Now,
	}
}

type startSessionRequest struct {
	ProgramID string `json:"programId,omitempty"`
	StartTime string `json:"startTime"`
}

// StartSession creates a new session, optionally bound to a program. The
// no-active-session precondition is deliberately NOT enforced here: the
// server is authoritative and applies last-start-wins.
func (p *Pipeline) StartSession(ctx context.Context, programID string) (*Session, error) {
	body := startSessionRequest{
		ProgramID: programID,
		StartTime: p.NowFunc().UTC().Format(time.RFC3339),
	}

	data, err := p.api.Post(ctx, "/sessions", body)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	var session Session
	if len(data) > 0 {
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, fmt.Errorf("decode started session: %w", err)
		}
	}

	log.Debugf("session started: %s (program %q)", session.ID, programID)
	p.cache.Invalidate(cache.KeyLatestSession)
	return &session, nil
}

type addExerciseRequest struct {
	ExerciseID string `json:"exerciseId"`
	Order      int    `json:"order"`
}

// AddExercise appends a catalog exercise to the session. The server assigns
// the entry order (the client sends 0).
func (p *Pipeline) AddExercise(ctx context.Context, sessionID, exerciseID string) error {
	if sessionID == "" {
		return ErrNoActiveSession
	}

	body := addExerciseRequest{ExerciseID: exerciseID, Order: 0}
	if _, err := p.api.Post(ctx, "/sessions/"+sessionID+"/exercises", body); err != nil {
		return fmt.Errorf("add exercise %s: %w", exerciseID, err)
	}

	p.cache.Invalidate(cache.KeyLatestSession)
	return nil
}

type addSetRequest struct {
	ExerciseID string  `json:"exerciseId"`
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
	Order      int     `json:"order"`
}

// AddSet appends a zero-valued set for the exercise. Order is 1-based,
// computed from the currently cached latest-session snapshot: existing set
// count + 1. A stale snapshot can produce a duplicate order value; the server
// treats order as a re-numbering hint rather than a unique key, so this is an
// accepted race, not corruption. Returns the order it sent.
func (p *Pipeline) AddSet(ctx context.Context, sessionID, exerciseID string) (int, error) {
	if sessionID == "" {
		return 0, ErrNoActiveSession
	}

	order := p.cachedSetCount(exerciseID) + 1
	body := addSetRequest{ExerciseID: exerciseID, Order: order}
	if _, err := p.api.Post(ctx, "/sessions/"+sessionID+"/sets", body); err != nil {
		return 0, fmt.Errorf("add set for %s: %w", exerciseID, err)
	}

	log.Debugf("set %d added for exercise %s", order, exerciseID)
	p.cache.Invalidate(cache.KeyLatestSession)
	return order, nil
}

func (p *Pipeline) cachedSetCount(exerciseID string) int {
	snapshot, ok := p.cache.Peek(cache.KeyLatestSession, cache.NoParams)
	if !ok {
		return 0
	}
	var session Session
	if err := json.Unmarshal(snapshot, &session); err != nil {
		log.Warnf("decode cached session snapshot: %s", err)
		return 0
	}
	return session.SetCount(exerciseID)
}

type updateSetRequest struct {
	Weight      float64 `json:"weight"`
	Reps        int     `json:"reps"`
	IsCompleted bool    `json:"isCompleted"`
}

// UpdateSet replaces all three mutable fields of a set. This is a full
// replace, not a patch: sending a value always overwrites, there is no
// field-level merge.
func (p *Pipeline) UpdateSet(ctx context.Context, setID string, weight float64, reps int, completed bool) error {
	if setID == "" {
		return errors.New("set id empty")
	}

	body := updateSetRequest{Weight: weight, Reps: reps, IsCompleted: completed}
	if _, err := p.api.Put(ctx, "/sessions/sets/"+setID, body); err != nil {
		return fmt.Errorf("update set %s: %w", setID, err)
	}

	p.cache.Invalidate(cache.KeyLatestSession)
	return nil
}

// CompleteSession sets the end timestamp server-side. Callers leave the
// active-workout flow only after this returns nil. Also invalidates the
// history list, which gains the finished session.
func (p *Pipeline) CompleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoActiveSession
	}

	if _, err := p.api.Post(ctx, "/sessions/"+sessionID+"/complete", struct{}{}); err != nil {
		return fmt.Errorf("complete session %s: %w", sessionID, err)
	}

	log.Infof("session %s completed", sessionID)
	p.cache.Invalidate(cache.KeyLatestSession)
	p.cache.Invalidate(cache.KeySessionsHistory)
	return nil
}
