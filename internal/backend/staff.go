package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vedaro/shopdesk/internal/shared"
)

// Staff identifies a logged-in staff member.
type Staff struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LoginRequest carries staff credentials; verification happens backend side.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates staff credentials and returns the bearer token for all
// subsequent calls.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, Staff, error) {
	env, err := c.do(ctx, http.MethodPost, "/staff/login", req, callOpts{skipAuth: true})
	if err != nil {
		return "", Staff{}, err
	}
	if !env.Success || env.Token == "" {
		return "", Staff{}, fmt.Errorf("backend: login: %w", shared.ErrUnauthenticated)
	}
	var staff Staff
	if len(env.Staff) > 0 {
		if err := json.Unmarshal(env.Staff, &staff); err != nil {
			return "", Staff{}, fmt.Errorf("backend: decode staff: %w", shared.ErrBackend)
		}
	}
	return env.Token, staff, nil
}

// Logout invalidates the bearer token backend side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/staff/logout", nil, callOpts{})
	return err
}

// Profile returns the staff profile for the current token.
func (c *Client) Profile(ctx context.Context) (Staff, error) {
	env, err := c.do(ctx, http.MethodGet, "/staff/profile", nil, callOpts{})
	if err != nil {
		return Staff{}, err
	}
	var staff Staff
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &staff); err != nil {
			return Staff{}, fmt.Errorf("backend: decode profile: %w", shared.ErrBackend)
		}
	}
	return staff, nil
}
