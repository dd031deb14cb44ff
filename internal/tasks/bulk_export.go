package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/recipebox/internal/formatter"
	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	ManifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk recipe exports.
type BulkExportOpts struct {
	Format     formatter.Format // Defaults to markdown
	OutputDir  string           // Defaults to recipes_export_{epoch}
	NumWorkers int              // Concurrent writers (default: 4, max: 10)
	RateLimit  float64          // Files per second; zero means unlimited
}

// RecipeExportResult is the outcome for one recipe.
type RecipeExportResult struct {
	RecipeID string `json:"recipe_id"`
	Title    string `json:"title"`
	File     string `json:"file,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export. Results are ordered by recipe ID.
type BulkExportResult struct {
	Format            formatter.Format     `json:"format"`
	OutputDirectory   string               `json:"output_directory"`
	ExportedAt        time.Time            `json:"exported_at"`
	TotalRecipes      int                  `json:"total_recipes"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	Results           []RecipeExportResult `json:"results"`
	ManifestPath      string               `json:"-"`
}

type exportJob struct {
	recipe *models.Recipe
	path   string
}

// BulkExport writes every recipe owned by who into opts.OutputDir, one file per recipe.
//
// A failed file does not stop the others; failures are counted in the result and the manifest.
// File names are the recipe slug followed by the first eight characters of its ID, so recipes
// with the same title do not overwrite each other.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	who *models.Identity,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.recipes == nil {
		return nil, fmt.Errorf("%w: recipe repository not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("recipes_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	e.sendProgress(prog, fetchingUpdate())
	recipes, err := e.recipes.List(ctx, who)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		TotalRecipes:    len(recipes),
		Results:         make([]RecipeExportResult, 0, len(recipes)),
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan exportJob, len(recipes))
	results := make(chan RecipeExportResult, len(recipes))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts.Format)
	}

	for _, recipe := range recipes {
		jobs <- exportJob{recipe: recipe, path: filepath.Join(opts.OutputDir, fileName(recipe, opts.Format))}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(recipes), res.Title))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(recipes), res.Title, fmt.Errorf("%s", res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].RecipeID < result.Results[j].RecipeID
	})

	e.sendProgress(prog, ProgressUpdate{Phase: WriteManifest, Message: "Writing manifest..."})
	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes recipes from jobs until the channel closes or ctx is cancelled.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	results chan<- RecipeExportResult,
	format formatter.Format,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		res := RecipeExportResult{RecipeID: job.recipe.ID, Title: job.recipe.Title}
		path, err := formatter.WriteExport(job.recipe, job.path, format)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.File = path
			res.Success = true
		}
		results <- res
	}
}

func fileName(r *models.Recipe, format formatter.Format) string {
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return formatter.Slug(r.Title) + "-" + id + "." + string(format)
}
