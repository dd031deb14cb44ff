package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

// RecipeInput holds the fields accepted when creating a recipe.
type RecipeInput struct {
	Title    string  `json:"title" validate:"notblank,max=30"`
	Steps    string  `json:"steps" validate:"notblank"`
	Keywords *string `json:"keywords" validate:"omitnil,max=30"`
}

// Normalize returns a copy with title and steps trimmed and blank keywords dropped.
func (in RecipeInput) Normalize() RecipeInput {
	return RecipeInput{
		Title:    strings.TrimSpace(in.Title),
		Steps:    strings.TrimSpace(in.Steps),
		Keywords: normalizeKeywords(in.Keywords),
	}
}

// Validate checks the normalized input, reporting the first failure in field order.
func (in RecipeInput) Validate() error {
	n := in.Normalize()
	return firstFieldError(validate.Struct(&n))
}

// RecipePatch holds a partial update. Nil fields are absent. Keywords set to "" clears them.
type RecipePatch struct {
	Title    *string `json:"title,omitempty" validate:"omitnil,notblank,max=30"`
	Steps    *string `json:"steps,omitempty" validate:"omitnil,notblank"`
	Keywords *string `json:"keywords,omitempty" validate:"omitnil,max=30"`
}

// IsEmpty reports whether no field is present.
func (p RecipePatch) IsEmpty() bool {
	return p.Title == nil && p.Steps == nil && p.Keywords == nil
}

// Normalize returns a copy with present fields trimmed.
func (p RecipePatch) Normalize() RecipePatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		return lo.ToPtr(strings.TrimSpace(*s))
	}
	return RecipePatch{Title: trim(p.Title), Steps: trim(p.Steps), Keywords: trim(p.Keywords)}
}

// Validate checks the present fields with the same rules as [RecipeInput].
func (p RecipePatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	n := p.Normalize()
	return firstFieldError(validate.Struct(&n))
}

// Values returns the column changes for the patch. A blank keywords value becomes nil.
func (p RecipePatch) Values() map[string]any {
	n := p.Normalize()
	values := make(map[string]any, 3)
	if n.Title != nil {
		values["title"] = *n.Title
	}
	if n.Steps != nil {
		values["steps"] = *n.Steps
	}
	if n.Keywords != nil {
		values["keywords"] = normalizeKeywords(n.Keywords)
	}
	return values
}

func normalizeKeywords(k *string) *string {
	if k == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*k)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// firstFieldError maps the first validator failure onto the matching sentinel.
func firstFieldError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "max" {
			return ErrTitleTooLong
		}
		return ErrTitleRequired
	case "Steps":
		return ErrStepsRequired
	case "Keywords":
		return ErrKeywordsTooLong
	}
	return err
}
