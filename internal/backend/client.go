// Package backend implements HTTP gateway clients for the remote store
// backend (catalog, cart, customer, invoice and staff endpoints). The backend
// is the source of truth for stock and cart state; this package only moves
// payloads and maps failures onto the shared error taxonomy.
package backend

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

	"github.com/vedaro/shopdesk/internal/shared"
)

// Client talks to the store backend REST API. A bearer token is read from the
// request context and attached to every call; calls without one fail as
// unauthenticated before touching the network, except the login endpoint.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient constructs a Client with the given base URL and per-call timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// envelope is the response wrapper every backend endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Product json.RawMessage `json:"product"`
	Summary json.RawMessage `json:"summary"`
	Token   string          `json:"token"`
	Staff   json.RawMessage `json:"staff"`
}

type callOpts struct {
	skipAuth bool
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts callOpts) (*envelope, error) {
	token := shared.TokenFromContext(ctx)
	if token == "" && !opts.skipAuth {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, shared.ErrUnauthenticated)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("backend call failed", slog.String("path", path), slog.Any("error", err))
		return nil, fmt.Errorf("backend: %s %s: %w: %v", method, path, shared.ErrBackend, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("backend: decode %s: %w", path, shared.ErrBackend)
	}
	return &env, nil
}

func statusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return shared.ErrUnauthenticated
	case status == http.StatusNotFound:
		return shared.ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", shared.ErrBackend, status)
	}
}
