package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/setlog/setlog/internal/app"
	"github.com/setlog/setlog/internal/cli"
	"github.com/setlog/setlog/internal/config"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

// newFakeAPI serves the subset of endpoints the commands under test hit.
func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "pass123" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		respond(w, map[string]any{
			"accessToken": "tok-e2e",
			"user":        map[string]any{"id": "u1", "email": creds.Email, "fullName": "Ana Petrov"},
		})
	}).Methods(http.MethodPost)

	router.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-e2e", r.Header.Get("Authorization"))
		respond(w, map[string]any{
			"id":        "s1",
			"startTime": "2025-03-10T18:30:00Z",
			"exercises": []any{},
		})
	}).Methods(http.MethodPost)

	router.HandleFunc("/sessions/latest", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{
			"id":        "s1",
			"startTime": "2025-03-10T18:30:00Z",
			"exercises": []any{},
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/analytics/stats", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{
			"totalVolume":         12500.0,
			"totalWorkouts":       42,
			"totalCaloriesBurned": 9000,
			"activeStreak":        3,
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"recentSessions": []any{}})
	}).Methods(http.MethodGet)

	router.HandleFunc("/analytics/progress", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"progress": []any{}})
	}).Methods(http.MethodGet)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newTestApp(t *testing.T, apiURL string) *app.App {
	t.Helper()
	a, err := app.New(&config.Config{
		APIBaseURL:             apiURL,
		RequestTimeoutSeconds:  5,
		StalenessWindowMinutes: 5,
		CacheSizeMegabytes:     1,
		CoachRequestsPerMinute: 10,
		PrefsPath:              t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Close())
	})
	return a
}

func execute(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	root := cli.New(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_LoginThenWhoami(t *testing.T) {
	server := newFakeAPI(t)
	a := newTestApp(t, server.URL)

	out, err := execute(t, a, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	out, err = execute(t, a, "login", "--email", "ana@workout.com", "--password", "pass123")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as ana@workout.com")

	out, err = execute(t, a, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Petrov <ana@workout.com>")
}

func TestCLI_LoginRejected(t *testing.T) {
	server := newFakeAPI(t)
	a := newTestApp(t, server.URL)

	_, err := execute(t, a, "login", "--email", "ana@workout.com", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login rejected")
}

func TestCLI_SessionStart(t *testing.T) {
	server := newFakeAPI(t)
	a := newTestApp(t, server.URL)

	_, err := execute(t, a, "login", "--email", "ana@workout.com", "--password", "pass123")
	require.NoError(t, err)

	out, err := execute(t, a, "session", "start")
	require.NoError(t, err)
	assert.Contains(t, out, "started free session s1")
}

func TestCLI_Dashboard(t *testing.T) {
	server := newFakeAPI(t)
	a := newTestApp(t, server.URL)

	out, err := execute(t, a, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "total volume:    12500.0 kg")
	assert.Contains(t, out, "active streak:   3 days")
}

func TestCLI_ThemeAndLocalePrefs(t *testing.T) {
	server := newFakeAPI(t)
	a := newTestApp(t, server.URL)

	out, err := execute(t, a, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "theme not set")

	_, err = execute(t, a, "theme", "dark")
	require.NoError(t, err)

	out, err = execute(t, a, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")

	_, err = execute(t, a, "locale", "es")
	require.NoError(t, err)
	out, err = execute(t, a, "locale")
	require.NoError(t, err)
	assert.Contains(t, out, "es")
}
