// package formatter renders recipes as Markdown, plain text, CSV, JSON and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
)

// Format is an export format, named by its file extension.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatMarkdown, FormatText, FormatJSON, FormatCSV}

// ParseFormat accepts a format name or extension, e.g. "markdown", "md" or ".md".
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want md, txt, json or csv)", shared.ErrInvalidFlag, s)
	}
}

// ToMarkdown renders a recipe with numbered steps and keywords as inline code.
func ToMarkdown(r *models.Recipe) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	buf.WriteString(fmt.Sprintf("**Created**: %s\n", r.FormattedDate()))

	if keywords := r.KeywordList(); len(keywords) > 0 {
		chips := lo.Map(keywords, func(k string, _ int) string { return "`" + k + "`" })
		buf.WriteString(fmt.Sprintf("**Keywords**: %s\n", strings.Join(chips, " ")))
	}

	buf.WriteString("\n## Steps\n\n")
	steps := r.StepsList()
	if len(steps) == 0 {
		buf.WriteString("_No steps_\n")
	}
	for i, step := range steps {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	return buf.Bytes()
}

// ToText renders a recipe as plain text.
func ToText(r *models.Recipe) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Recipe: %s\n", r.Title))
	buf.WriteString(fmt.Sprintf("Created: %s\n", r.FormattedDate()))
	if keywords := r.KeywordList(); len(keywords) > 0 {
		buf.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(keywords, ", ")))
	}
	buf.WriteString(fmt.Sprintf("Steps: %s\n\n", r.StepsPreview()))

	for i, step := range r.StepsList() {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	return buf.Bytes()
}

// ToJSON renders a recipe as indented JSON.
func ToJSON(r *models.Recipe) ([]byte, error) {
	return shared.MarshalJSON(r, true)
}

// ToCSV renders recipes with columns: ID, Title, Keywords, Steps, Created. Steps keep their newlines.
func ToCSV(recipes []*models.Recipe) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Keywords", "Steps", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range recipes {
		record := []string{
			r.ID,
			r.Title,
			r.KeywordsOrEmpty(),
			r.Steps,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// Render renders a single recipe in format.
func Render(r *models.Recipe, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return ToMarkdown(r), nil
	case FormatText:
		return ToText(r), nil
	case FormatJSON:
		return ToJSON(r)
	case FormatCSV:
		return ToCSV([]*models.Recipe{r})
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteTable prints recipes as an aligned table.
func WriteTable(w io.Writer, recipes []*models.Recipe) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Keywords", "Steps", "Created"})
	table.SetAutoWrapText(false)

	for _, r := range recipes {
		table.Append([]string{
			r.ID,
			r.Title,
			strings.Join(r.KeywordList(), ", "),
			r.StepsPreview(),
			r.FormattedDate(),
		})
	}

	table.Render()
}

// WriteStats prints recipe totals as a two row table.
func WriteStats(w io.Writer, stats models.RecipeStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Recipes", "This week"})
	table.Append([]string{fmt.Sprint(stats.Total), fmt.Sprint(stats.Recent)})
	table.Render()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a title into a file name stem, e.g. "Mom's Chili!" becomes "mom-s-chili".
func Slug(title string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		return "recipe"
	}
	return slug
}

// WriteExport writes r in format to path and returns the path written.
//
// Defaults to {slug}.{format} in the current directory. Parent directories are created.
func WriteExport(r *models.Recipe, path string, format Format) (string, error) {
	if path == "" {
		path = Slug(r.Title) + "." + string(format)
	}

	data, err := Render(r, format)
	if err != nil {
		return "", fmt.Errorf("failed to render recipe: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
