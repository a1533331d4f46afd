// Package client is the portal's transport: JSON over HTTP with the session's
// bearer token attached and every failure folded into a single RequestFailed.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"health-portal/internal/api"
	"health-portal/internal/notify"
	"health-portal/internal/session"
)

// DefaultBaseURL is where the API is expected when nothing is configured.
const DefaultBaseURL = "http://localhost:8080" + api.BasePath

// ErrAuthRequired means the server did not recognise the session.
var ErrAuthRequired = errors.New("authentication required")

// RequestFailed is the one error every transport failure becomes: network
// errors, non-2xx responses and undecodable bodies alike.
type RequestFailed struct {
	Method  string
	Path    string
	Status  int // 0 unless the server answered non-2xx
	Message string
	Err     error
}

func (e *RequestFailed) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

func (e *RequestFailed) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrAuthRequired
	}
	return e.Err
}

// Client issues requests against the portal API.
type Client struct {
	baseURL  string
	http     *http.Client
	session  *session.Session
	notifier notify.Notifier
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithNotifier sets where failure notices go.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for baseURL that authenticates with s.
func New(baseURL string, s *session.Session, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if s == nil {
		s = &session.Session{}
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		session:  s,
		notifier: notify.Discard,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session { return c.session }

// Get, Post, Put and Patch are shorthands for Do.

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Do sends one request and decodes a successful JSON response into out, if
// out is non-nil. It never retries. On failure it emits exactly one error
// notice and returns *RequestFailed.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	err := c.do(ctx, method, path, query, body, out)
	if err == nil {
		return nil
	}
	rf := &RequestFailed{Method: method, Path: path, Message: err.Error(), Err: err}
	var se *statusError
	if errors.As(err, &se) {
		rf.Status = se.status
		rf.Message = se.message
		rf.Err = nil
	}
	c.logger.Error().Err(err).Str("method", method).Str("path", path).Int("status", rf.Status).Msg("api request failed")
	c.notifier.Notify(notify.Notice{Level: notify.LevelError, Title: "Request failed", Body: rf.Message})
	return rf
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, message: errorMessage(resp.StatusCode, data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage prefers the server's message, then its error field, then the status text.
func errorMessage(status int, data []byte) string {
	var er api.ErrorResponse
	if json.Unmarshal(data, &er) == nil {
		if er.Message != "" {
			return er.Message
		}
		if er.Error != "" {
			return er.Error
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "An error occurred"
}
