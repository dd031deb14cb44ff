package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipebox/internal/shared"
	tu "github.com/desertthunder/recipebox/internal/testing"
)

const sessionJSON = `{"access_token":"at","token_type":"bearer","expires_in":3600,"refresh_token":"rt","user":{"id":"u1","email":"cook@example.com"}}`

func newGoTrueServer(t *testing.T, handler http.HandlerFunc) *GoTrue {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGoTrue(server.URL, "anon", server.Client())
}

func TestGoTrue(t *testing.T) {
	ctx := context.Background()
	creds := Credentials{Email: "cook@example.com", Password: "secret", Confirm: "secret"}

	t.Run("SignIn", func(t *testing.T) {
		req := require.New(t)
		var gotPath, gotGrant, gotKey string
		var gotBody map[string]string

		g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotGrant = r.URL.Query().Get("grant_type")
			gotKey = r.Header.Get("apikey")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(sessionJSON))
		})

		grant, err := g.SignIn(ctx, creds)
		req.NoError(err)
		req.Equal("/auth/v1/token", gotPath)
		req.Equal("password", gotGrant)
		req.Equal("anon", gotKey)
		req.Equal("cook@example.com", gotBody["email"])
		req.Equal("u1", grant.Identity.ID)
		req.Equal("rt", grant.Token.RefreshToken)
		req.WithinDuration(time.Now().Add(time.Hour), grant.Token.Expiry, 5*time.Second)
	})

	t.Run("SignUp with session", func(t *testing.T) {
		g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/v1/signup", r.URL.Path)
			_, _ = w.Write([]byte(sessionJSON))
		})

		grant, err := g.SignUp(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, "at", grant.Token.AccessToken)
	})

	t.Run("SignUp awaiting confirmation", func(t *testing.T) {
		g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"u1","email":"cook@example.com","confirmation_sent_at":"2024-01-01T00:00:00Z"}`))
		})

		_, err := g.SignUp(ctx, creds)
		require.ErrorIs(t, err, ErrConfirmationPending)
	})

	t.Run("error mapping", func(t *testing.T) {
		tc := []struct {
			status int
			body   string
			want   error
		}{
			{http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, shared.ErrInvalidCredentials},
			{http.StatusUnprocessableEntity, `{"code":422,"msg":"User already registered"}`, shared.ErrAccountExists},
			{http.StatusUnauthorized, `{"message":"invalid JWT"}`, shared.ErrAuthFailed},
			{http.StatusBadGateway, ``, shared.ErrServiceUnavailable},
		}

		for _, tt := range tc {
			g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := g.SignIn(ctx, creds)
			require.ErrorIs(t, err, tt.want, "status %d", tt.status)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		req := require.New(t)
		var gotBody map[string]string
		g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
			req.Equal("refresh_token", r.URL.Query().Get("grant_type"))
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(sessionJSON))
		})

		grant, err := g.Refresh(ctx, "old-rt")
		req.NoError(err)
		req.Equal("old-rt", gotBody["refresh_token"])
		req.Equal("at", grant.Token.AccessToken)

		_, err = g.Refresh(ctx, "")
		req.ErrorIs(err, shared.ErrNoRefreshToken)
	})

	t.Run("Refresh failure", func(t *testing.T) {
		g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`))
		})

		_, err := g.Refresh(ctx, "rt")
		require.ErrorIs(t, err, shared.ErrRefreshFailed)
	})

	t.Run("SignOut sends the user token", func(t *testing.T) {
		var gotAuth string
		g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/v1/logout", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		})

		grant, err := (sessionResponse(t)).grant()
		require.NoError(t, err)
		require.NoError(t, g.SignOut(ctx, grant))
		require.Equal(t, "Bearer at", gotAuth)
		require.NoError(t, g.SignOut(ctx, nil))
	})

	t.Run("transport failures", func(t *testing.T) {
		failing := NewGoTrue("https://project.example", "anon", &http.Client{
			Transport: tu.NewMockRoundTripper(nil, errors.New("dial tcp: no route to host")),
		})
		_, err := failing.SignIn(ctx, creds)
		require.ErrorIs(t, err, shared.ErrServiceUnavailable)

		unreadable := NewGoTrue("https://project.example", "anon", &http.Client{
			Transport: tu.NewMockRoundTripper(&http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}}, nil),
		})
		_, err = unreadable.SignIn(ctx, creds)
		require.ErrorContains(t, err, "failed to read response")
	})
}

func sessionResponse(t *testing.T) goTrueSession {
	t.Helper()
	var s goTrueSession
	require.NoError(t, json.Unmarshal([]byte(sessionJSON), &s))
	return s
}
