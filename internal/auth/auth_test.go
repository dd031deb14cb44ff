package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

func TestCredentialsValidate(t *testing.T) {
	tc := []struct {
		name   string
		creds  Credentials
		signUp bool
		want   error
	}{
		{"valid sign in", Credentials{Email: "a@b.co", Password: "x"}, false, nil},
		{"valid sign up", Credentials{Email: " A@B.co ", Password: "secret", Confirm: "secret"}, true, nil},
		{"missing email", Credentials{Password: "secret"}, false, ErrMissingFields},
		{"missing confirm on sign up", Credentials{Email: "a@b.co", Password: "secret"}, true, ErrMissingFields},
		{"invalid email", Credentials{Email: "not-an-email", Password: "secret"}, false, ErrInvalidEmail},
		{"email with spaces", Credentials{Email: "a b@c.de", Password: "secret"}, false, ErrInvalidEmail},
		{"short password on sign up", Credentials{Email: "a@b.co", Password: "12345", Confirm: "12345"}, true, ErrWeakPassword},
		{"short password on sign in is fine", Credentials{Email: "a@b.co", Password: "1"}, false, nil},
		{"mismatch", Credentials{Email: "a@b.co", Password: "secret", Confirm: "secreT"}, true, ErrPasswordMismatch},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate(tt.signUp)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
}

func TestIssuer(t *testing.T) {
	who := &models.Identity{ID: "u1", Email: "cook@example.com"}

	t.Run("round trip", func(t *testing.T) {
		req := require.New(t)
		issuer := NewIssuer("secret", time.Hour)

		token, expiry, err := issuer.Issue(who)
		req.NoError(err)
		req.WithinDuration(time.Now().Add(time.Hour), expiry, 5*time.Second)

		got, err := issuer.Verify(token)
		req.NoError(err)
		req.Equal(who, got)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := NewIssuer("secret", time.Hour).Issue(who)
		require.NoError(t, err)

		_, err = NewIssuer("other", time.Hour).Verify(token)
		require.ErrorIs(t, err, shared.ErrAuthFailed)
	})

	t.Run("expired", func(t *testing.T) {
		issuer := NewIssuer("secret", time.Minute)
		issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := issuer.Issue(who)
		require.NoError(t, err)

		issuer.now = time.Now
		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, shared.ErrAuthFailed)
	})

	t.Run("garbage and nil identity", func(t *testing.T) {
		issuer := NewIssuer("secret", 0)
		_, err := issuer.Verify("not.a.token")
		require.ErrorIs(t, err, shared.ErrAuthFailed)

		_, _, err = issuer.Issue(nil)
		require.ErrorIs(t, err, shared.ErrAuthRequired)
	})
}

func setupLocal(t *testing.T) *Local {
	t.Helper()
	db, err := shared.NewDatabase(shared.MemoryDatabase)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	local := NewLocal(repositories.NewUserRepository(db), NewIssuer("secret", time.Hour))
	local.cost = bcrypt.MinCost
	return local
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	creds := Credentials{Email: "Cook@Example.com", Password: "secret", Confirm: "secret"}

	t.Run("sign up then sign in", func(t *testing.T) {
		req := require.New(t)
		local := setupLocal(t)

		signedUp, err := local.SignUp(ctx, creds)
		req.NoError(err)
		req.Equal("cook@example.com", signedUp.Identity.Email)
		req.NotEmpty(signedUp.Token.AccessToken)

		signedIn, err := local.SignIn(ctx, Credentials{Email: "cook@example.com", Password: "secret"})
		req.NoError(err)
		req.Equal(signedUp.Identity.ID, signedIn.Identity.ID)

		who, err := local.issuer.Verify(signedIn.Token.AccessToken)
		req.NoError(err)
		req.Equal(signedIn.Identity.ID, who.ID)
		req.NoError(local.SignOut(ctx, signedIn))
	})

	t.Run("duplicate sign up", func(t *testing.T) {
		local := setupLocal(t)
		_, err := local.SignUp(ctx, creds)
		require.NoError(t, err)

		_, err = local.SignUp(ctx, creds)
		require.ErrorIs(t, err, shared.ErrAccountExists)
	})

	t.Run("bad credentials", func(t *testing.T) {
		local := setupLocal(t)
		_, err := local.SignUp(ctx, creds)
		require.NoError(t, err)

		_, err = local.SignIn(ctx, Credentials{Email: creds.Email, Password: "wrong!"})
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)

		_, err = local.SignIn(ctx, Credentials{Email: "nobody@example.com", Password: "secret"})
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("form errors come first", func(t *testing.T) {
		local := setupLocal(t)
		_, err := local.SignUp(ctx, Credentials{Email: "a@b.co", Password: "123", Confirm: "123"})
		require.True(t, errors.Is(err, ErrWeakPassword))
	})
}
