package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
	th "github.com/desertthunder/recipebox/internal/testing"
)

func sampleRecipe() *models.Recipe {
	return &models.Recipe{
		ID:        "r1",
		Title:     "Chocolate Cake",
		Steps:     "Preheat oven\n\nMix batter\nBake 30 minutes",
		Keywords:  lo.ToPtr("dessert, chocolate"),
		CreatedAt: time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local),
		UserID:    "u1",
	}
}

func TestExporters(t *testing.T) {
	t.Run("ToMarkdown", func(t *testing.T) {
		output := string(ToMarkdown(sampleRecipe()))

		for _, want := range []string{
			"# Chocolate Cake",
			"**Created**: Mar 5, 2024",
			"**Keywords**: `dessert` `chocolate`",
			"## Steps",
			"1. Preheat oven\n2. Mix batter\n3. Bake 30 minutes",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ToMarkdown without keywords or steps", func(t *testing.T) {
		r := &models.Recipe{Title: "Empty", CreatedAt: time.Now()}
		output := string(ToMarkdown(r))

		if strings.Contains(output, "Keywords") {
			t.Errorf("Markdown should omit keywords, got: %s", output)
		}
		if !strings.Contains(output, "_No steps_") {
			t.Errorf("Markdown should note missing steps, got: %s", output)
		}
	})

	t.Run("ToText", func(t *testing.T) {
		output := string(ToText(sampleRecipe()))

		for _, want := range []string{
			"Recipe: Chocolate Cake",
			"Keywords: dessert, chocolate",
			"Steps: 3 steps",
			"2. Mix batter",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(sampleRecipe())
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["title"] != "Chocolate Cake" || decoded["user_id"] != "u1" {
			t.Errorf("unexpected JSON: %s", data)
		}

		data, _ = ToJSON(&models.Recipe{Title: "No keywords"})
		if !strings.Contains(string(data), `"keywords": null`) {
			t.Errorf("expected null keywords, got: %s", data)
		}
	})

	t.Run("ToCSV", func(t *testing.T) {
		second := sampleRecipe()
		second.ID = "r2"
		second.Keywords = nil

		data, err := ToCSV([]*models.Recipe{sampleRecipe(), second})
		if err != nil {
			t.Fatalf("ToCSV failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "ID,Title,Keywords,Steps,Created" {
			t.Errorf("unexpected headers: %v", records[0])
		}
		if records[1][3] != sampleRecipe().Steps {
			t.Errorf("steps should survive with newlines, got %q", records[1][3])
		}
		if records[2][2] != "" {
			t.Errorf("expected empty keywords, got %q", records[2][2])
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := map[string]Format{"md": FormatMarkdown, "Markdown": FormatMarkdown, ".txt": FormatText, "json": FormatJSON, "CSV": FormatCSV}
	for in, want := range tc {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []*models.Recipe{sampleRecipe()})
	output := buf.String()

	for _, want := range []string{"TITLE", "Chocolate Cake", "dessert, chocolate", "3 steps", "Mar 5, 2024"} {
		if !strings.Contains(output, want) {
			t.Errorf("table missing %q, got:\n%s", want, output)
		}
	}

	buf.Reset()
	WriteStats(&buf, models.RecipeStats{Total: 12, Recent: 3})
	if !strings.Contains(buf.String(), "12") || !strings.Contains(buf.String(), "THIS WEEK") {
		t.Errorf("unexpected stats table:\n%s", buf.String())
	}
}

func TestSlug(t *testing.T) {
	tc := map[string]string{
		"Mom's Chili!":    "mom-s-chili",
		"  Crème Brûlée ": "cr-me-br-l-e",
		"???":             "recipe",
		"Pancakes 2.0":    "pancakes-2-0",
	}
	for in, want := range tc {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()

	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "out", "cake."+string(format))
			written, err := WriteExport(sampleRecipe(), path, format)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}

			th.AssertFileExists(t, written)
			if content := th.MustReadFile(t, written); !strings.Contains(content, "Chocolate Cake") {
				t.Errorf("export missing title: %s", content)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		if _, err := WriteExport(sampleRecipe(), filepath.Join(dir, "x.pdf"), "pdf"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		blocker := filepath.Join(dir, "file")
		if _, err := WriteExport(sampleRecipe(), blocker, FormatText); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := WriteExport(sampleRecipe(), filepath.Join(blocker, "nested.txt"), FormatText); err == nil {
			t.Error("expected error writing beneath a file")
		}
	})
}
