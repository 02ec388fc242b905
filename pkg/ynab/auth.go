package ynab

import (
	"context"

	"github.com/eshaffer321/ynabsync/internal/auth"
	"github.com/pkg/errors"
)

// authService implements the AuthService interface
type authService struct {
	client  *Client
	service *auth.Service
}

// newAuthService creates a new auth service
func newAuthService(client *Client) *authService {
	return &authService{
		client:  client,
		service: auth.NewService(client.options.Logger),
	}
}

// Verify checks the token and records the user it belongs to
func (a *authService) Verify(ctx context.Context) (*User, error) {
	var result struct {
		User *User `json:"user" schema:"required"`
	}

	if err := a.client.get(ctx, "/user", nil, &result); err != nil {
		return nil, errors.Wrap(err, "failed to verify token")
	}

	a.service.SetUserID(result.User.ID)

	if a.client.options.SessionFile != "" {
		_ = a.service.SaveSession(a.client.options.SessionFile)
	}

	return result.User, nil
}

// SaveSession saves the session to a file
func (a *authService) SaveSession(path string) error {
	return a.service.SaveSession(path)
}

// LoadSession loads a session from a file and starts using its token
func (a *authService) LoadSession(path string) error {
	if err := a.service.LoadSession(path); err != nil {
		return err
	}

	session, err := a.service.GetSession()
	if err != nil {
		return err
	}

	a.client.setSession(session)
	return nil
}

// GetSession returns the current session
func (a *authService) GetSession() (*Session, error) {
	return a.service.GetSession()
}
