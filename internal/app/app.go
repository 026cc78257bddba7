package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/setlog/setlog/internal/auth"
	"github.com/setlog/setlog/internal/cache"
	"github.com/setlog/setlog/internal/coach"
	"github.com/setlog/setlog/internal/config"
	"github.com/setlog/setlog/internal/dashboard"
	"github.com/setlog/setlog/internal/exercises"
	"github.com/setlog/setlog/internal/gateway"
	"github.com/setlog/setlog/internal/prefs"
	"github.com/setlog/setlog/internal/tutorials"
	"github.com/setlog/setlog/internal/workout"

	"github.com/getsentry/sentry-go"
	"go.uber.org/multierr"
)

// App wires the gateway, the query cache, the preference store and every
// service on top of them. One App per process.
type App struct {
	Config    *config.Config
	Prefs     *prefs.Store
	Cache     *cache.QueryCache
	Gateway   *gateway.Client
	Auth      *auth.Service
	Tracker   *workout.Tracker
	Pipeline  *workout.Pipeline
	Dashboard *dashboard.Service
	Exercises *exercises.Catalog
	Tutorials *tutorials.Service
	Coach     *coach.Chat

	sentryEnabled bool
}

func New(cfg *config.Config) (*App, error) {
	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	queryCache := cache.New(cache.Options{
		StalenessWindow: cfg.StalenessWindow(),
		SizeBytes:       cfg.CacheSizeMegabytes * 1024 * 1024,
		EvictionEnabled: cfg.EvictionEnabled,
		EvictionGrace:   cfg.EvictionGrace(),
	})

	// the token source closes over authSvc, which itself needs the gateway
	// client, so bind it through a variable assigned right after
	var authSvc *auth.Service
	client := gateway.NewClient(
		cfg.APIBaseURL,
		&http.Client{Timeout: cfg.RequestTimeout()},
		func() string {
			if authSvc == nil {
				return ""
			}
			return authSvc.Token()
		},
	)

	authSvc, err = auth.NewService(client, queryCache, store)
	if err != nil {
		closeErr := store.Close()
		return nil, multierr.Append(err, closeErr)
	}
	client.SetOnUnauthorized(authSvc.HandleUnauthorized)

	return &App{
		Config:        cfg,
		Prefs:         store,
		Cache:         queryCache,
		Gateway:       client,
		Auth:          authSvc,
		Tracker:       workout.NewTracker(client, queryCache),
		Pipeline:      workout.NewPipeline(client, queryCache),
		Dashboard:     dashboard.NewService(client, queryCache),
		Exercises:     exercises.NewCatalog(client, queryCache),
		Tutorials:     tutorials.NewService(client, queryCache),
		Coach:         coach.NewChat(client, cfg.CoachRequestsPerMinute),
		sentryEnabled: cfg.SentryEnabled,
	}, nil
}

func (a *App) Close() error {
	if a.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	return multierr.Append(nil, a.Prefs.Close())
}
