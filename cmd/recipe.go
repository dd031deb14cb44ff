package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipebox/internal/formatter"
	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
	"github.com/desertthunder/recipebox/internal/tasks"
)

// recipeContext builds the stack and resolves the signed in identity.
func (r *Runner) recipeContext(ctx context.Context) (*models.Identity, error) {
	if err := r.stack(ctx); err != nil {
		return nil, err
	}
	return r.identity()
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	return v, nil
}

func optional(cmd *cli.Command, name string) *string {
	if !cmd.IsSet(name) {
		return nil
	}
	v := cmd.String(name)
	return &v
}

func (r *Runner) writeRecipes(cmd *cli.Command, recipes []*models.Recipe, empty string) error {
	if cmd.Bool("json") {
		return r.writeJSON(recipes, true)
	}
	if len(recipes) == 0 {
		return r.writePlain("%s\n", empty)
	}
	formatter.WriteTable(r.output, recipes)
	return nil
}

func (r *Runner) writeRecipe(cmd *cli.Command, recipe *models.Recipe) error {
	if cmd.Bool("json") {
		return r.writeJSON(recipe, true)
	}
	return r.writePlain("%s", formatter.ToText(recipe))
}

// RecipeList prints the signed in user's recipes, newest first.
func (r *Runner) RecipeList(ctx context.Context, cmd *cli.Command) error {
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}
	if who == nil {
		r.logger.Warn("not signed in; run 'rbx auth login' to see your recipes")
	}

	recipes, err := r.recipes.List(ctx, who)
	if err != nil {
		return err
	}
	return r.writeRecipes(cmd, recipes, "No recipes yet. Add one with 'rbx recipe add'.")
}

// RecipeGet prints one recipe.
func (r *Runner) RecipeGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	recipe, err := r.recipes.Get(ctx, who, id)
	if err != nil {
		return err
	}
	if recipe == nil {
		return fmt.Errorf("%w: %s", shared.ErrRecipeNotFound, id)
	}
	return r.writeRecipe(cmd, recipe)
}

// RecipeAdd creates a recipe from flags.
func (r *Runner) RecipeAdd(ctx context.Context, cmd *cli.Command) error {
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	recipe, err := r.recipes.Create(ctx, who, models.RecipeInput{
		Title:    cmd.String("title"),
		Steps:    cmd.String("steps"),
		Keywords: optional(cmd, "keywords"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(recipe, true)
	}
	return r.writePlain("%s\n", recipe.ID)
}

// RecipeUpdate changes the fields given as flags. Passing --keywords "" clears the keywords.
func (r *Runner) RecipeUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	recipe, err := r.recipes.Update(ctx, who, id, models.RecipePatch{
		Title:    optional(cmd, "title"),
		Steps:    optional(cmd, "steps"),
		Keywords: optional(cmd, "keywords"),
	})
	if err != nil {
		return err
	}
	return r.writeRecipe(cmd, recipe)
}

// RecipeDelete removes a recipe.
func (r *Runner) RecipeDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	if _, err := r.recipes.Delete(ctx, who, id); err != nil {
		return err
	}
	return nil
}

// RecipeSearch runs one search immediately; debouncing only applies to interactive typing.
func (r *Runner) RecipeSearch(ctx context.Context, cmd *cli.Command) error {
	query, err := requireArg(cmd, "query")
	if err != nil {
		return err
	}
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	recipes, err := r.recipes.Search(ctx, who, query)
	if err != nil {
		return err
	}
	return r.writeRecipes(cmd, recipes, fmt.Sprintf("No recipes match %q.", query))
}

// RecipeExport writes a recipe to a file in the chosen format.
func (r *Runner) RecipeExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("all") {
		return r.recipeExportAll(ctx, cmd, format)
	}

	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	recipe, err := r.recipes.Get(ctx, who, id)
	if err != nil {
		return err
	}
	if recipe == nil {
		return fmt.Errorf("%w: %s", shared.ErrRecipeNotFound, id)
	}

	path, err := formatter.WriteExport(recipe, cmd.String("output"), format)
	if err != nil {
		return err
	}

	r.logger.Info("exported recipe", "id", recipe.ID, "path", path)
	return r.writePlain("✓ Exported to %s\n", path)
}

func (r *Runner) recipeExportAll(ctx context.Context, cmd *cli.Command, format formatter.Format) error {
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	result, err := tasks.NewExporter(r.recipes).BulkExport(ctx, progress, who, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.logger.Info("exported recipes", "dir", result.OutputDirectory, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	if err := r.writePlain("✓ Exported %d of %d recipes to %s\n", result.SuccessfulExports, result.TotalRecipes, result.OutputDirectory); err != nil {
		return err
	}
	for _, res := range result.Results {
		if !res.Success {
			if err := r.writePlain("✗ %s: %s\n", res.Title, res.Error); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecipeStats prints how many recipes the user has and how many were added this week.
func (r *Runner) RecipeStats(ctx context.Context, cmd *cli.Command) error {
	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}

	stats, err := r.recipes.Stats(ctx, who, r.now())
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}
	formatter.WriteStats(r.output, stats)
	return nil
}
