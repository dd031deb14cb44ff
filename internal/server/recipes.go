package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

// RecipeHandler serves /recipes for the identity resolved by [Authenticate].
type RecipeHandler struct {
	repo *repositories.RecipeRepository
	now  func() time.Time
}

// NewRecipeHandler creates a [RecipeHandler] backed by repo.
func NewRecipeHandler(repo *repositories.RecipeRepository) *RecipeHandler {
	return &RecipeHandler{repo: repo, now: time.Now}
}

// Routes returns the recipe routes. Literal paths come before /recipes/{id}.
func (h *RecipeHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/recipes", http.HandlerFunc(h.list)},
		{http.MethodPost, "/recipes", http.HandlerFunc(h.create)},
		{http.MethodGet, "/recipes/search", http.HandlerFunc(h.search)},
		{http.MethodGet, "/recipes/stats", http.HandlerFunc(h.stats)},
		{http.MethodGet, "/recipes/{id}", http.HandlerFunc(h.get)},
		{http.MethodPatch, "/recipes/{id}", http.HandlerFunc(h.update)},
		{http.MethodDelete, "/recipes/{id}", http.HandlerFunc(h.delete)},
	}
}

func (h *RecipeHandler) list(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.repo.List(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) search(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.repo.Search(r.Context(), IdentityFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context(), IdentityFrom(r.Context()), h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *RecipeHandler) get(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.repo.Get(r.Context(), IdentityFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if recipe == nil {
		writeError(w, shared.ErrRecipeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// create ignores any user_id in the body; ownership always comes from the bearer token.
func (h *RecipeHandler) create(w http.ResponseWriter, r *http.Request) {
	var in models.RecipeInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}

	recipe, err := h.repo.Create(r.Context(), IdentityFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch models.RecipePatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	recipe, err := h.repo.Update(r.Context(), IdentityFrom(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.repo.Delete(r.Context(), IdentityFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
