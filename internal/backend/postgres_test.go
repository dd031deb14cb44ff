package backend

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipebox/internal/shared"
)

// TestPostgresTable runs against a real server when RECIPEBOX_TEST_POSTGRES_DSN is set.
func TestPostgresTable(t *testing.T) {
	dsn := os.Getenv("RECIPEBOX_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RECIPEBOX_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	req := require.New(t)

	pool, err := Connect(ctx, dsn)
	req.NoError(err)
	defer pool.Close()
	req.NoError(EnsureSchema(ctx, pool))

	table := NewPostgresTable(pool, RecipeSchema)
	owner := shared.GenerateID()

	r := insertRecipe(t, table, owner, "Chocolate Cake", nil)
	req.NotEmpty(r.ID)
	req.False(r.CreatedAt.IsZero())
	insertRecipe(t, table, owner, "Banana Bread", nil)

	rows, err := table.Select(ctx, Query{
		Filters: []Filter{Eq{ColUserID, owner}, Or{Contains(ColTitle, "CHOC"), Contains(ColKeywords, "CHOC")}},
		Order:   &Order{Column: ColCreatedAt, Descending: true},
	})
	req.NoError(err)
	req.Len(rows, 1)

	updated, err := table.Update(ctx, []Filter{Eq{ColID, r.ID}, Eq{ColUserID, owner}}, Values{ColTitle: "Fudge Cake"})
	req.NoError(err)
	req.Len(updated, 1)
	req.Equal("Fudge Cake", updated[0].Title)

	n, err := table.Delete(ctx, []Filter{Eq{ColUserID, owner}})
	req.NoError(err)
	req.EqualValues(2, n)
}
