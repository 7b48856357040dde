package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the remote call-records REST API over plain HTTP.
//
// The API is an external collaborator; only its request/response shapes are
// owned here. Every request carries the bearer token found in the request
// context (see WithToken), falling back to the client's default token.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	log     *slog.Logger
}

// Config controls client behavior. BaseURL is required.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("upstream: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}, nil
}

// WithDefaultToken returns a copy of the client that attaches tok to every
// request lacking a context token. Useful for service-account access.
func (c *Client) WithDefaultToken(tok string) *Client {
	cp := *c
	cp.token = tok
	return &cp
}

type tokenKey struct{}

// WithToken stores a per-request bearer token in the context. The token wins
// over the client's default for requests made with the returned context.
func WithToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenKey{}, tok)
}

func tokenFrom(ctx context.Context) string {
	if v := ctx.Value(tokenKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// do performs one exchange and decodes a JSON body into out (when non-nil).
// Failures are always reported as *APIError; a decoded body is never partial.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: "building request failed", cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	tok := tokenFrom(ctx)
	if tok == "" {
		tok = c.token
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return netErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFrom(resp)
	}
	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response body", cause: err}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return &APIError{Kind: KindServer, Message: "encoding request failed", cause: err}
	}
	return c.do(ctx, method, path, bytes.NewReader(raw), "application/json", out)
}

// errorFrom maps an HTTP error response onto the taxonomy. The body is read
// for a best-effort message but never trusted to be JSON.
func (c *Client) errorFrom(resp *http.Response) *APIError {
	msg := resp.Status
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Detail != "":
			msg = payload.Detail
		case payload.Error != "":
			msg = payload.Error
		}
	}

	kind := KindServer
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = KindAuth
	case resp.StatusCode == http.StatusForbidden:
		kind = KindForbidden
	case resp.StatusCode == http.StatusNotFound:
		kind = KindNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		kind = KindValidation
	}
	return &APIError{Kind: kind, Status: resp.StatusCode, Message: msg}
}
