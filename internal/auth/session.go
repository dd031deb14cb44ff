package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
)

// Session holds the signed in user for this process and mirrors it to a file
// so separate CLI invocations share it.
type Session struct {
	auth    Authenticator
	path    string
	anonKey string
	logger  *log.Logger

	mu    sync.Mutex
	grant *Grant
}

var _ oauth2.TokenSource = (*Session)(nil)

// NewSession creates a [Session] persisted at path and loads any grant saved there.
// An empty path keeps the session in memory only. anonKey is served as the token while signed out.
func NewSession(auth Authenticator, path, anonKey string, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	s := &Session{auth: auth, path: path, anonKey: anonKey, logger: shared.WithLogger(logger, "component", "session")}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the signed in identity, or nil.
func (s *Session) Current() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grant == nil || s.grant.Identity == nil {
		return nil
	}
	who := *s.grant.Identity
	return &who
}

// SignIn authenticates creds and makes the result the current session.
func (s *Session) SignIn(ctx context.Context, creds Credentials) (*models.Identity, error) {
	grant, err := s.auth.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	return grant.Identity, s.set(grant)
}

// SignUp registers creds and makes the new account the current session.
func (s *Session) SignUp(ctx context.Context, creds Credentials) (*models.Identity, error) {
	grant, err := s.auth.SignUp(ctx, creds)
	if err != nil {
		return nil, err
	}
	return grant.Identity, s.set(grant)
}

// SignOut ends the session locally even when the server could not be told.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	grant := s.grant
	s.mu.Unlock()

	var remoteErr error
	if grant != nil {
		remoteErr = s.auth.SignOut(ctx, grant)
		if remoteErr != nil {
			s.logger.Warn("remote sign out failed", "error", remoteErr)
		}
	}

	if err := s.set(nil); err != nil {
		return err
	}
	return remoteErr
}

// Token implements [oauth2.TokenSource]. Expired tokens are refreshed when the
// authenticator supports it. While signed out the anon key is returned.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	grant := s.grant
	s.mu.Unlock()

	if grant == nil || grant.Token == nil {
		if s.anonKey == "" {
			return nil, shared.ErrAuthRequired
		}
		return &oauth2.Token{AccessToken: s.anonKey, TokenType: "Bearer"}, nil
	}

	if grant.Token.Valid() {
		return grant.Token, nil
	}

	refresher, ok := s.auth.(Refresher)
	if !ok || grant.Token.RefreshToken == "" {
		return nil, shared.ErrTokenExpired
	}

	refreshed, err := refresher.Refresh(context.Background(), grant.Token.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.set(refreshed); err != nil {
		return nil, err
	}

	s.logger.Debug("refreshed token", "user", refreshed.Identity.ID)
	return refreshed.Token, nil
}

func (s *Session) set(grant *Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grant = grant
	return s.saveLocked()
}

func (s *Session) load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var grant Grant
	if err := json.Unmarshal(data, &grant); err != nil {
		s.logger.Warn("ignoring unreadable session file", "path", s.path, "error", err)
		return nil
	}
	if grant.Identity != nil {
		s.grant = &grant
	}
	return nil
}

func (s *Session) saveLocked() error {
	if s.path == "" {
		return nil
	}

	if s.grant == nil {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(s.grant, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
