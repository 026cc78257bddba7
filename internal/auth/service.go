package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/setlog/setlog/internal/cache"
	"github.com/setlog/setlog/internal/gateway"
	"github.com/setlog/setlog/internal/prefs"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// User is the authenticated account profile.
type User struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	Weight   float64 `json:"weight,omitempty"`
	Height   float64 `json:"height,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

type profileUpdateRequest struct {
	FullName string  `json:"fullName"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

//go:generate go run go.uber.org/mock/mockgen -source=$GOFILE -destination=api_mocks_test.go -package=auth_test

type apiClient interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Service owns the authentication state: the bearer token handed to the
// gateway and the persisted user identity.
type Service struct {
	api   apiClient
	cache *cache.QueryCache
	prefs *prefs.Store

	mu    sync.RWMutex
	token string
}

// NewService restores the token from the preference store, so a previously
// logged-in user stays logged in across restarts.
func NewService(api apiClient, queryCache *cache.QueryCache, store *prefs.Store) (*Service, error) {
	token, _, err := store.Get(prefs.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("restore auth token: %w", err)
	}
	return &Service{
		api:   api,
		cache: queryCache,
		prefs: store,
		token: token,
	}, nil
}

// Token returns the current bearer token, empty when logged out. It is the
// gateway's token source.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a bearer token is present.
func (s *Service) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login exchanges credentials for a token and persists the identity. Rejected
// credentials return (false, nil); transport and decode failures return the
// underlying error.
func (s *Service) Login(ctx context.Context, email, password string) (bool, error) {
	data, err := s.api.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		var serverErr *gateway.ServerError
		if errors.Is(err, gateway.ErrUnauthorized) || errors.As(err, &serverErr) {
			log.Debugf("login rejected: %s", err)
			return false, nil
		}
		return false, fmt.Errorf("login: %w", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("login: decode response: %w", err)
	}
	if resp.AccessToken == "" {
		return false, nil
	}

	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return false, fmt.Errorf("login: marshal user: %w", err)
	}
	if err := s.prefs.Set(prefs.KeyAuthToken, resp.AccessToken); err != nil {
		return false, fmt.Errorf("login: persist token: %w", err)
	}
	if err := s.prefs.Set(prefs.KeyUser, string(userJSON)); err != nil {
		return false, fmt.Errorf("login: persist user: %w", err)
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.mu.Unlock()

	// whatever was cached belonged to the previous identity
	s.cache.Clear()

	log.Debugf("logged in as %s", resp.User.Email)
	return true, nil
}

// Logout drops the persisted identity and all cached server data. There is no
// partial logout: after it returns, no authenticated call can be made.
func (s *Service) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	s.cache.Clear()
	return multierr.Append(nil, s.prefs.Clear())
}

// HandleUnauthorized is wired as the gateway's OnUnauthorized hook. A 401/403
// from any endpoint means the token is no longer valid, so the stored identity
// is dropped the same way an explicit logout drops it.
func (s *Service) HandleUnauthorized() {
	log.Warn("request rejected as unauthorized, dropping stored credentials")
	if err := s.Logout(); err != nil {
		log.Errorf("clearing credentials after unauthorized response: %s", err)
	}
}

// CurrentUser returns the locally persisted identity, nil when logged out.
func (s *Service) CurrentUser() (*User, error) {
	raw, found, err := s.prefs.Get(prefs.KeyUser)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &user, nil
}

// Me returns the server-side profile, cached under the profile key.
func (s *Service) Me(ctx context.Context) (*User, error) {
	data, err := s.cache.Fetch(ctx, cache.KeyProfile, cache.NoParams,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.api.Get(ctx, "/auth/me")
		})
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &user, nil
}

// UpdateProfile replaces the mutable profile fields and invalidates the
// cached profile snapshot.
func (s *Service) UpdateProfile(ctx context.Context, fullName string, weight, height float64) error {
	_, err := s.api.Put(ctx, "/auth/profile", profileUpdateRequest{
		FullName: fullName,
		Weight:   weight,
		Height:   height,
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(cache.KeyProfile)
	return nil
}
