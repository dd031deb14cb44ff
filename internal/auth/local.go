package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

// Local authenticates against accounts stored in the sqlite users table.
type Local struct {
	users  *repositories.UserRepository
	issuer *Issuer
	cost   int
}

// NewLocal creates a [Local] authenticator. Grants carry tokens signed by issuer.
func NewLocal(users *repositories.UserRepository, issuer *Issuer) *Local {
	return &Local{users: users, issuer: issuer, cost: bcrypt.DefaultCost}
}

// SignUp registers a new account and signs it in.
func (l *Local) SignUp(ctx context.Context, creds Credentials) (*Grant, error) {
	if err := creds.Validate(true); err != nil {
		return nil, err
	}
	creds = creds.Normalize()

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), l.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(creds.Email, string(hash))
	if err := l.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return l.grant(user.Identity())
}

// SignIn checks the password of an existing account.
// Unknown emails and wrong passwords both yield [shared.ErrInvalidCredentials].
func (l *Local) SignIn(ctx context.Context, creds Credentials) (*Grant, error) {
	if err := creds.Validate(false); err != nil {
		return nil, err
	}
	creds = creds.Normalize()

	user, err := l.users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return l.grant(user.Identity())
}

// SignOut has nothing to revoke for local accounts.
func (l *Local) SignOut(context.Context, *Grant) error {
	return nil
}

func (l *Local) grant(who *models.Identity) (*Grant, error) {
	token, expiry, err := l.issuer.Issue(who)
	if err != nil {
		return nil, err
	}
	return &Grant{
		Identity: who,
		Token:    &oauth2.Token{AccessToken: token, TokenType: "Bearer", Expiry: expiry},
	}, nil
}
