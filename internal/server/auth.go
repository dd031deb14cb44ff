package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/recipebox/internal/auth"
	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/repositories"
)

// AuthHandler serves /auth/signup and /auth/login.
type AuthHandler struct {
	auth auth.Authenticator
}

// NewAuthHandler creates an [AuthHandler]. The tokens it hands out must be accepted by the [Verifier] given to [Authenticate].
func NewAuthHandler(a auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

type grantBody struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *models.Identity `json:"user"`
}

func (h *AuthHandler) Routes() []Route {
	return []Route{
		{http.MethodPost, "/auth/signup", http.HandlerFunc(h.signUp)},
		{http.MethodPost, "/auth/login", http.HandlerFunc(h.login)},
	}
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decode(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	grant, err := h.auth.SignUp(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGrant(w, http.StatusCreated, grant)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decode(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	grant, err := h.auth.SignIn(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGrant(w, http.StatusOK, grant)
}

func writeGrant(w http.ResponseWriter, status int, grant *auth.Grant) {
	body := grantBody{User: grant.Identity}
	if grant.Token != nil {
		body.Token = grant.Token.AccessToken
		body.ExpiresAt = grant.Token.Expiry
	}
	writeJSON(w, status, body)
}

// Health answers GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewAPI assembles the recipebox API: request logging, bearer identity, auth, recipes and health.
func NewAPI(a auth.Authenticator, v Verifier, repo *repositories.RecipeRepository, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Logging(logger), Authenticate(v))
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(Health))
	r.Handler(NewAuthHandler(a))
	r.Handler(NewRecipeHandler(repo))
	return r
}
