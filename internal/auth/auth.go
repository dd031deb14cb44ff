// Package auth signs users in and keeps track of who is signed in.
//
// An [Authenticator] turns [Credentials] into a [Grant]. [Local] keeps bcrypt
// hashed accounts in the sqlite users table and [GoTrue] talks to a Supabase
// auth server. A [Session] holds the current grant, persists it between CLI
// invocations and serves its token to HTTP clients as an [oauth2.TokenSource].
// The HTTP API signs its own bearer tokens with an [Issuer].
package auth

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/oauth2"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Credentials is what a user types on the sign in and sign up forms.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Confirm repeats Password on sign up.
	Confirm string `json:"confirm,omitempty"`
}

// CredentialError is a form problem with a short title. It matches [shared.ErrInvalidInput].
type CredentialError struct {
	Title   string
	Message string
}

func (e *CredentialError) Error() string { return e.Message }

func (e *CredentialError) Is(target error) bool { return target == shared.ErrInvalidInput }

var (
	ErrMissingFields    = &CredentialError{"Missing Fields", "Please fill in all fields"}
	ErrInvalidEmail     = &CredentialError{"Invalid Email", "Please enter a valid email address"}
	ErrWeakPassword     = &CredentialError{"Weak Password", "Password must be at least 6 characters"}
	ErrPasswordMismatch = &CredentialError{"Password Mismatch", "Passwords do not match"}
)

// Normalize trims and lowercases the email.
func (c Credentials) Normalize() Credentials {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return c
}

// Validate checks the form. Sign up additionally checks password strength and confirmation.
func (c Credentials) Validate(signUp bool) error {
	c = c.Normalize()

	if c.Email == "" || c.Password == "" || (signUp && c.Confirm == "") {
		return ErrMissingFields
	}
	if !emailPattern.MatchString(c.Email) {
		return ErrInvalidEmail
	}
	if !signUp {
		return nil
	}
	if len(c.Password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if c.Password != c.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// Grant is the result of a successful sign in.
type Grant struct {
	Identity *models.Identity `json:"identity"`
	Token    *oauth2.Token    `json:"token,omitempty"`
}

// Authenticator signs users up, in and out.
type Authenticator interface {
	SignUp(ctx context.Context, creds Credentials) (*Grant, error)
	SignIn(ctx context.Context, creds Credentials) (*Grant, error)
	SignOut(ctx context.Context, grant *Grant) error
}

// Refresher exchanges a refresh token for a new grant.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Grant, error)
}
