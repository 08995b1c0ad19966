package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"evolt/internal/models"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the station API and keeps the two client-side stores: the
// session store (token + user, persisted) and the station store (in-memory).
type Client struct {
	baseURL string
	http    HTTPDoer

	Session  *SessionStore
	Stations *StationStore
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithSessionFile persists the session to the given path so it survives
// restarts. Without it the session lives in memory only.
func WithSessionFile(path string) Option {
	return func(c *Client) { c.Session = NewSessionStore(path) }
}

// New builds a Client for the given API base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		Session: NewSessionStore(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Stations = newStationStore(c)
	return c
}

type sessionPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an account and stores the resulting session.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	var resp sessionPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return err
	}
	return c.Session.Set(resp.Token, resp.User)
}

// Login authenticates and stores the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var resp sessionPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return err
	}
	return c.Session.Set(resp.Token, resp.User)
}

// FetchCurrentUser resolves the stored token to its account. Any failure
// triggers a full local logout, mirroring stale-token handling in the UI.
func (c *Client) FetchCurrentUser(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		c.Logout(ctx)
		return nil, err
	}
	c.Session.setUser(resp.User)
	return resp.User, nil
}

// Logout revokes the server session (best effort) and clears both stores so
// no authorized data lingers after sign-out.
func (c *Client) Logout(ctx context.Context) {
	if c.Session.Token() != "" {
		_ = c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	}
	c.Session.Clear()
	c.Stations.reset()
}

// apiError is the decoded error body of a non-2xx response.
type apiError struct {
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors"`
}

func (e *apiError) Error() string {
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			msgs = append(msgs, fe.Message)
		}
		return strings.Join(msgs, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil {
			return fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
