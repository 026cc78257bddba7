package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Client is a thin typed wrapper over the workout-tracker REST API. It owns no
// state beyond the base URL, the injected http client and the token source:
// caching and retries are the caller's business.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenFn        func() string
	onUnauthorized func()
}

// NewClient builds a Client. tokenFn is consulted on every request; an empty
// token means the request goes out unauthenticated (only /auth/login does).
func NewClient(baseURL string, httpClient *http.Client, tokenFn func() string) *Client {
	if tokenFn == nil {
		tokenFn = func() string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokenFn:    tokenFn,
	}
}

// SetOnUnauthorized registers the hook fired once per 401/403 response, before
// ErrUnauthorized is returned. Wired by the app to the logout effect.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// envelope is the standard API response shape: {"success": bool, "data": ...}.
// Error bodies carry "message" (some endpoints use "error").
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	ErrMsg  string          `json:"error"`
}

func (e *envelope) errorMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrMsg
}

// Send issues one HTTP request and returns the decoded "data" payload.
// body == nil means no request body.
func (c *Client) Send(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFn(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Tracef("gateway: %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		log.Warnf("gateway: %s %s: unauthorized (%d)", method, path, resp.StatusCode)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := &ServerError{StatusCode: resp.StatusCode}
		var env envelope
		if err := json.Unmarshal(respBytes, &env); err == nil {
			serverErr.Message = env.errorMessage()
		}
		return nil, serverErr
	}

	if len(respBytes) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(respBytes, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if env.Success != nil && !*env.Success {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: env.errorMessage()}
	}
	if env.Success == nil && env.Data == nil {
		// not envelope-shaped, the whole body is the payload
		return respBytes, nil
	}
	return env.Data, nil
}

// Get / Post / Put mirror the original api client verbs.

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodPut, path, body)
}
