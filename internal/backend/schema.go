package backend

import (
	"fmt"

	"github.com/desertthunder/recipebox/internal/models"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Schema describes a table and how rows map onto T.
type Schema[T any] struct {
	Table string
	// Columns are selected in this order and are the only names accepted in filters and values.
	Columns []string
	// IDColumn and CreatedColumn are filled by the store on insert when absent.
	IDColumn      string
	CreatedColumn string
	// Immutable columns may not appear in update values.
	Immutable []string
	// Scan reads one row selected with Columns. Used by the database/sql backend.
	Scan func(s Scanner) (*T, error)
}

// validate checks filters, order and values against the schema.
func (s Schema[T]) validate(filters []Filter, order *Order, values Values) error {
	for _, f := range filters {
		if err := checkColumns(s.Columns, f.columns()...); err != nil {
			return err
		}
	}
	if order != nil {
		if err := checkColumns(s.Columns, order.Column); err != nil {
			return err
		}
	}
	return checkColumns(s.Columns, values.columns()...)
}

func (s Schema[T]) checkMutable(values Values) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: no values to update", ErrInvalidQuery)
	}
	for col := range values {
		for _, imm := range s.Immutable {
			if col == imm {
				return fmt.Errorf("%w: column %q is immutable", ErrInvalidQuery, col)
			}
		}
	}
	return nil
}

// Recipe column names.
const (
	ColID        = "id"
	ColTitle     = "title"
	ColSteps     = "steps"
	ColKeywords  = "keywords"
	ColCreatedAt = "created_at"
	ColUserID    = "user_id"
)

// RecipeSchema maps the recipes table onto [models.Recipe].
var RecipeSchema = Schema[models.Recipe]{
	Table:         "recipes",
	Columns:       []string{ColID, ColTitle, ColSteps, ColKeywords, ColCreatedAt, ColUserID},
	IDColumn:      ColID,
	CreatedColumn: ColCreatedAt,
	Immutable:     []string{ColID, ColCreatedAt, ColUserID},
	Scan: func(s Scanner) (*models.Recipe, error) {
		var r models.Recipe
		err := s.Scan(&r.ID, &r.Title, &r.Steps, &r.Keywords, (*timestamp)(&r.CreatedAt), &r.UserID)
		if err != nil {
			return nil, err
		}
		return &r, nil
	},
}
