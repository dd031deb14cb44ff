package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
)

// ErrConfirmationPending is returned by sign up when the server emailed a confirmation link instead of a session.
var ErrConfirmationPending = errors.New("please check your email to verify your account")

// GoTrue authenticates against a Supabase auth (GoTrue) server.
type GoTrue struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewGoTrue creates a [GoTrue] client for the project at baseURL.
func NewGoTrue(baseURL, anonKey string, client *http.Client) *GoTrue {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GoTrue{
		baseURL:    strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		httpClient: client,
	}
}

// goTrueSession is the token response of /token and /signup.
type goTrueSession struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	RefreshToken string      `json:"refresh_token"`
	User         *goTrueUser `json:"user"`
}

type goTrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// goTrueError covers the error shapes GoTrue has used across versions.
type goTrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorCode        string `json:"error_code"`
}

func (e goTrueError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignUp registers an account. Projects that require email confirmation yield [ErrConfirmationPending].
func (g *GoTrue) SignUp(ctx context.Context, creds Credentials) (*Grant, error) {
	if err := creds.Validate(true); err != nil {
		return nil, err
	}
	creds = creds.Normalize()

	var body json.RawMessage
	payload := map[string]string{"email": creds.Email, "password": creds.Password}
	if err := g.post(ctx, "/signup", payload, "", &body); err != nil {
		return nil, err
	}

	var session goTrueSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode sign up response: %w", err)
	}
	if session.AccessToken == "" {
		return nil, ErrConfirmationPending
	}
	return session.grant()
}

// SignIn exchanges email and password for a session.
func (g *GoTrue) SignIn(ctx context.Context, creds Credentials) (*Grant, error) {
	if err := creds.Validate(false); err != nil {
		return nil, err
	}
	creds = creds.Normalize()

	var session goTrueSession
	payload := map[string]string{"email": creds.Email, "password": creds.Password}
	if err := g.post(ctx, "/token?grant_type=password", payload, "", &session); err != nil {
		return nil, err
	}
	return session.grant()
}

// Refresh implements [Refresher].
func (g *GoTrue) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	var session goTrueSession
	payload := map[string]string{"refresh_token": refreshToken}
	if err := g.post(ctx, "/token?grant_type=refresh_token", payload, "", &session); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	return session.grant()
}

// SignOut revokes the grant's session on the server.
func (g *GoTrue) SignOut(ctx context.Context, grant *Grant) error {
	if grant == nil || grant.Token == nil || grant.Token.AccessToken == "" {
		return nil
	}
	return g.post(ctx, "/logout", nil, grant.Token.AccessToken, nil)
}

func (s goTrueSession) grant() (*Grant, error) {
	if s.User == nil || s.User.ID == "" {
		return nil, fmt.Errorf("%w: response has no user", shared.ErrAuthFailed)
	}

	token := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
	}
	if s.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	return &Grant{
		Identity: &models.Identity{ID: s.User.ID, Email: s.User.Email},
		Token:    token,
	}, nil
}

func (g *GoTrue) post(ctx context.Context, path string, payload any, bearer string, out any) error {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer == "" {
		bearer = g.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goTrueStatusError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func goTrueStatusError(status int, body []byte) error {
	var ge goTrueError
	_ = json.Unmarshal(body, &ge)
	msg := ge.text()
	if msg == "" {
		msg = http.StatusText(status)
	}

	lower := strings.ToLower(msg + " " + ge.ErrorCode)
	switch {
	case strings.Contains(lower, "already registered") || strings.Contains(lower, "user_already_exists"):
		return fmt.Errorf("%w: %s", shared.ErrAccountExists, msg)
	case ge.Error == "invalid_grant" || strings.Contains(lower, "invalid login credentials"):
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	case status >= 500:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}
}
