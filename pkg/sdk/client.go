// Package sdk is a Go client for the Task API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client provides a high-level interface to the Task API.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	creds *Credentials
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient  *http.Client
	Credentials *Credentials
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithCredentials starts the client with an existing token.
func WithCredentials(creds *Credentials) ClientOption {
	return func(opts *ClientOptions) {
		opts.Credentials = creds
	}
}

// WithToken starts the client with a raw bearer token, e.g. one printed by
// `taskapi token issue`.
func WithToken(token string) ClientOption {
	return WithCredentials(&Credentials{AccessToken: token, TokenType: "Bearer"})
}

// NewClient creates a client for the API server at baseURL.
// An http.Client with a 30s timeout is used when one is not supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      opts.Credentials,
	}
}

// Credentials returns the token currently used by the client, or nil.
func (c *Client) Credentials() *Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.creds == nil {
		return nil
	}
	creds := *c.creds
	return &creds
}

// Login exchanges a username and password for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*Credentials, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp, false); err != nil {
		return nil, err
	}

	creds := &Credentials{AccessToken: resp.AccessToken, TokenType: resp.TokenType}
	if resp.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()

	return creds, nil
}

// WhoAmI returns the user the current token authenticates as.
func (c *Client) WhoAmI(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/whoami", nil, nil, &id, true); err != nil {
		return nil, err
	}
	return &id, nil
}

// ListTasks returns tasks newest first. filter is an optional boolean
// expression over title, description, completed, overdue and has_due.
func (c *Client) ListTasks(ctx context.Context, filter string) ([]Task, error) {
	var query url.Values
	if filter != "" {
		query = url.Values{"filter": {filter}}
	}

	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, input, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces the writable fields of a task.
func (c *Client) UpdateTask(ctx context.Context, id string, input TaskInput) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, input, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil, true)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		creds := c.Credentials()
		if creds == nil || creds.AccessToken == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
