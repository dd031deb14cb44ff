package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/samber/lo"

	"github.com/desertthunder/recipebox/internal/models"
)

var _ list.Item = recipeItem{}

// recipeItem wraps [models.Recipe] to implement [list.Item].
type recipeItem struct {
	recipe *models.Recipe
}

func (i recipeItem) FilterValue() string { return i.recipe.Title }
func (i recipeItem) Title() string       { return i.recipe.Title }
func (i recipeItem) Description() string {
	parts := []string{strings.Join(i.recipe.KeywordList(), ", "), i.recipe.StepsPreview(), i.recipe.FormattedDate()}
	return strings.Join(lo.Compact(parts), " • ")
}

func recipeItems(recipes []*models.Recipe) []list.Item {
	return lo.Map(recipes, func(r *models.Recipe, _ int) list.Item { return recipeItem{recipe: r} })
}

func newRecipeList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("recipe", "recipes")
	return l
}

func selectedRecipe(l list.Model) *models.Recipe {
	if item, ok := l.SelectedItem().(recipeItem); ok {
		return item.recipe
	}
	return nil
}
