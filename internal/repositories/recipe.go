package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/recipebox/internal/backend"
	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/notify"
	"github.com/desertthunder/recipebox/internal/shared"
)

// Notification titles.
const (
	TitleAdded      = "Recipe Added"
	TitleUpdated    = "Recipe Updated"
	TitleDeleted    = "Recipe Deleted"
	TitleAuth       = "Authentication Required"
	TitleValidation = "Validation Error"
	TitleNotFound   = "Not Found"
	TitleError      = "Error"
)

// RecipeRepository reads and writes recipes owned by the calling identity.
type RecipeRepository struct {
	table    backend.Table[models.Recipe]
	notifier notify.Notifier
	logger   *log.Logger
}

// NewRecipeRepository creates a [RecipeRepository] over table.
// A nil notifier discards notifications and a nil logger writes to stderr.
func NewRecipeRepository(table backend.Table[models.Recipe], notifier notify.Notifier, logger *log.Logger) *RecipeRepository {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RecipeRepository{
		table:    table,
		notifier: notifier,
		logger:   shared.WithLogger(logger, "repository", "recipes"),
	}
}

// List returns who's recipes, newest first. Signed out callers get an empty list.
func (r *RecipeRepository) List(ctx context.Context, who *models.Identity) ([]*models.Recipe, error) {
	if who == nil {
		return []*models.Recipe{}, nil
	}

	recipes, err := r.table.Select(ctx, backend.Query{
		Filters: []backend.Filter{ownedBy(who)},
		Order:   newestFirst,
	})
	if err != nil {
		return nil, r.fail(fmt.Errorf("failed to list recipes: %w", err))
	}

	r.logger.Debug("listed recipes", "user", who.ID, "count", len(recipes))
	return recipes, nil
}

// Get returns the recipe with id when who owns it.
// A missing recipe and one owned by someone else both yield (nil, nil).
func (r *RecipeRepository) Get(ctx context.Context, who *models.Identity, id string) (*models.Recipe, error) {
	if who == nil || id == "" {
		return nil, nil
	}

	recipes, err := r.table.Select(ctx, backend.Query{Filters: byID(who, id), Limit: 1})
	if err != nil {
		return nil, r.fail(fmt.Errorf("failed to get recipe: %w", err))
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	return recipes[0], nil
}

// Search returns who's recipes whose title or keywords contain query, ignoring case, newest first.
// A blank query or signed out caller returns an empty result without touching the backend.
func (r *RecipeRepository) Search(ctx context.Context, who *models.Identity, query string) ([]*models.Recipe, error) {
	q := strings.TrimSpace(query)
	if who == nil || q == "" {
		return []*models.Recipe{}, nil
	}

	recipes, err := r.table.Select(ctx, backend.Query{
		Filters: []backend.Filter{
			ownedBy(who),
			backend.Or{backend.Contains(backend.ColTitle, q), backend.Contains(backend.ColKeywords, q)},
		},
		Order: newestFirst,
	})
	if err != nil {
		return nil, r.fail(fmt.Errorf("failed to search recipes: %w", err))
	}

	r.logger.Debug("searched recipes", "user", who.ID, "query", q, "count", len(recipes))
	return recipes, nil
}

// Create validates in and stores it as a new recipe owned by who.
//
// Checks run in order (identity, title required, title length, steps required,
// keywords length) and a failed check never reaches the backend.
func (r *RecipeRepository) Create(ctx context.Context, who *models.Identity, in models.RecipeInput) (*models.Recipe, error) {
	if err := requireIdentity(who, "add recipes"); err != nil {
		return nil, r.fail(err)
	}
	if err := in.Validate(); err != nil {
		return nil, r.fail(err)
	}

	n := in.Normalize()
	recipe, err := r.table.Insert(ctx, backend.Values{
		backend.ColTitle:    n.Title,
		backend.ColSteps:    n.Steps,
		backend.ColKeywords: n.Keywords,
		backend.ColUserID:   who.ID,
	})
	if err != nil {
		return nil, r.fail(fmt.Errorf("failed to create recipe: %w", err))
	}

	r.logger.Info("created recipe", "id", recipe.ID, "user", who.ID)
	r.success(TitleAdded, fmt.Sprintf(`"%s" has been created successfully`, recipe.Title))
	return recipe, nil
}

// Update applies patch to the recipe with id owned by who and returns the stored result.
// Only title, steps and keywords can change. Unknown or foreign ids yield [shared.ErrRecipeNotFound].
func (r *RecipeRepository) Update(ctx context.Context, who *models.Identity, id string, patch models.RecipePatch) (*models.Recipe, error) {
	if err := requireIdentity(who, "update recipes"); err != nil {
		return nil, r.fail(err)
	}
	if err := patch.Validate(); err != nil {
		return nil, r.fail(err)
	}
	if id == "" {
		return nil, r.fail(shared.ErrRecipeNotFound)
	}

	updated, err := r.table.Update(ctx, byID(who, id), patch.Values())
	if err != nil {
		return nil, r.fail(fmt.Errorf("failed to update recipe: %w", err))
	}
	if len(updated) == 0 {
		return nil, r.fail(shared.ErrRecipeNotFound)
	}

	r.logger.Info("updated recipe", "id", id, "user", who.ID)
	r.success(TitleUpdated, "Changes have been saved successfully")
	return updated[0], nil
}

// Delete permanently removes the recipe with id owned by who.
// It reports false with [shared.ErrRecipeNotFound] when nothing was removed.
func (r *RecipeRepository) Delete(ctx context.Context, who *models.Identity, id string) (bool, error) {
	if err := requireIdentity(who, "delete recipes"); err != nil {
		return false, r.fail(err)
	}
	if id == "" {
		return false, r.fail(shared.ErrRecipeNotFound)
	}

	removed, err := r.table.Delete(ctx, byID(who, id))
	if err != nil {
		return false, r.fail(fmt.Errorf("failed to delete recipe: %w", err))
	}
	if removed == 0 {
		return false, r.fail(shared.ErrRecipeNotFound)
	}

	r.logger.Info("deleted recipe", "id", id, "user", who.ID)
	r.success(TitleDeleted, "Recipe has been removed successfully")
	return true, nil
}

// Stats counts who's recipes and those created in the week before now.
func (r *RecipeRepository) Stats(ctx context.Context, who *models.Identity, now time.Time) (models.RecipeStats, error) {
	recipes, err := r.List(ctx, who)
	if err != nil {
		return models.RecipeStats{}, err
	}
	return models.ComputeStats(recipes, now), nil
}

func (r *RecipeRepository) success(title, message string) {
	r.notifier.Notify(notify.Notification{Kind: notify.Success, Title: title, Message: message})
}

// fail notifies about err and returns it. Cancelled calls are not reported to the user.
func (r *RecipeRepository) fail(err error) error {
	if errors.Is(err, context.Canceled) {
		r.logger.Debug("request cancelled", "error", err)
		return err
	}

	title, message := Describe(err)
	r.logger.Error(title, "error", err)
	r.notifier.Notify(notify.Notification{Kind: notify.Error, Title: title, Message: message})
	return err
}

// Describe returns the notification title and message for an error from this package.
func Describe(err error) (title, message string) {
	var be *backend.Error
	switch {
	case errors.Is(err, shared.ErrAuthRequired):
		return TitleAuth, err.Error()
	case errors.Is(err, models.ErrValidation):
		return TitleValidation, err.Error()
	case errors.Is(err, shared.ErrRecipeNotFound):
		return TitleNotFound, "Recipe not found or you do not have permission to change it"
	case errors.As(err, &be):
		return TitleError, be.Message
	default:
		return TitleError, err.Error()
	}
}
