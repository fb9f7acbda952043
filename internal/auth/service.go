// Package auth binds the backend staff login to the local Redis session. The
// bearer token has an explicit lifecycle: set on login, cleared on logout,
// never a loose global.
package auth

import (
	"context"
	"fmt"

	"github.com/vedaro/shopdesk/internal/backend"
)

// StaffGateway is the slice of the backend client auth needs.
type StaffGateway interface {
	Login(ctx context.Context, req backend.LoginRequest) (string, backend.Staff, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (backend.Staff, error)
}

// Service authenticates staff against the backend.
type Service struct {
	gateway StaffGateway
}

// NewService builds a Service.
func NewService(gateway StaffGateway) *Service {
	return &Service{gateway: gateway}
}

// Login verifies credentials with the backend and returns the issued token.
func (s *Service) Login(ctx context.Context, email, password string) (string, backend.Staff, error) {
	token, staff, err := s.gateway.Login(ctx, backend.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", backend.Staff{}, fmt.Errorf("staff login: %w", err)
	}
	return token, staff, nil
}

// Logout invalidates the token backend side. A failure is not fatal for the
// local session teardown.
func (s *Service) Logout(ctx context.Context) error {
	return s.gateway.Logout(ctx)
}

// Profile fetches the staff profile for the current token.
func (s *Service) Profile(ctx context.Context) (backend.Staff, error) {
	return s.gateway.Profile(ctx)
}
