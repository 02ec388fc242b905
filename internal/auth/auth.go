package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eshaffer321/ynabsync/internal/types"
	"github.com/pkg/errors"
)

// TokenEnvVar is the environment variable holding a personal access token
const TokenEnvVar = "YNAB_TOKEN"

// ErrNoToken is returned when no token can be found
var ErrNoToken = errors.New("no access token configured")

// Service holds the personal access token and persists it between runs
type Service struct {
	session *types.Session
	logger  types.Logger
}

// NewService creates a new auth service
func NewService(logger types.Logger) *Service {
	return &Service{logger: logger}
}

// SetToken replaces the current token
func (s *Service) SetToken(token string) {
	if s.session == nil {
		s.session = &types.Session{}
	}
	s.session.Token = strings.TrimSpace(token)
}

// SetUserID records the user the token belongs to
func (s *Service) SetUserID(userID string) {
	if s.session != nil {
		s.session.UserID = userID
	}
}

// GetSession returns the current session
func (s *Service) GetSession() (*types.Session, error) {
	if s.session == nil || s.session.Token == "" {
		return nil, types.ErrNotAuthenticated
	}
	return s.session, nil
}

// SaveSession saves session to file
func (s *Service) SaveSession(path string) error {
	if s.session == nil || s.session.Token == "" {
		return types.ErrNotAuthenticated
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	s.session.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	// the token grants full budget access
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}

	if s.logger != nil {
		s.logger.Info("Session saved", "path", path)
	}

	return nil
}

// LoadSession loads session from file
func (s *Service) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ErrNotAuthenticated
		}
		return errors.Wrap(err, "failed to read session file")
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return errors.Wrap(err, "failed to unmarshal session")
	}

	if strings.TrimSpace(session.Token) == "" {
		return ErrNoToken
	}

	s.session = &session

	if s.logger != nil {
		s.logger.Info("Session loaded", "path", path, "user_id", session.UserID)
	}

	return nil
}

// ResolveToken picks the first non-empty token from the explicit value and
// the environment
func ResolveToken(explicit string, getenv func(string) string) (string, error) {
	if token := strings.TrimSpace(explicit); token != "" {
		return token, nil
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if token := strings.TrimSpace(getenv(TokenEnvVar)); token != "" {
		return token, nil
	}
	return "", ErrNoToken
}
