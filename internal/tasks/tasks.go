package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/recipebox/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase
	Step    int
	Total   int
	Message string
}

// Phase of a bulk operation.
type Phase int

const (
	FetchRecipes Phase = iota
	ExportRecipe
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchRecipes:
		return "fetch_recipes"
	case ExportRecipe:
		return "export_recipe"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// RecipeLister is the part of the recipe repository the exporter reads from.
type RecipeLister interface {
	List(ctx context.Context, who *models.Identity) ([]*models.Recipe, error)
}

// Exporter writes a user's recipes to disk.
type Exporter struct {
	recipes RecipeLister
}

func NewExporter(recipes RecipeLister) *Exporter {
	return &Exporter{recipes: recipes}
}

func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchingUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchRecipes, Message: "Fetching recipes..."}
}

func exportCompletedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
