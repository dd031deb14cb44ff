// package models defines the data model for recipebox
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Field limits shared by create and update.
const (
	MaxTitleLength    = 30
	MaxKeywordsLength = 30
)

// RecentWindow is how far back a recipe counts as recent in [RecipeStats].
const RecentWindow = 7 * 24 * time.Hour

// Recipe is a stored recipe. ID, CreatedAt and UserID are assigned by the backend and repository.
type Recipe struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Steps     string    `json:"steps" db:"steps"`
	Keywords  *string   `json:"keywords" db:"keywords"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UserID    string    `json:"user_id" db:"user_id"`
}

// StepsList returns the non-blank lines of Steps, trimmed.
func (r *Recipe) StepsList() []string {
	return splitNonBlank(r.Steps, "\n")
}

// KeywordList returns the comma-separated keywords, trimmed, without blanks.
func (r *Recipe) KeywordList() []string {
	if r.Keywords == nil {
		return nil
	}
	return splitNonBlank(*r.Keywords, ",")
}

// KeywordsOrEmpty returns Keywords or "" when unset.
func (r *Recipe) KeywordsOrEmpty() string {
	return lo.FromPtr(r.Keywords)
}

// FormattedDate renders CreatedAt like "Jan 2, 2006".
func (r *Recipe) FormattedDate() string {
	return r.CreatedAt.Local().Format("Jan 2, 2006")
}

// StepsPreview summarises the number of steps ("1 step", "4 steps", "No steps").
func (r *Recipe) StepsPreview() string {
	switch n := len(r.StepsList()); n {
	case 0:
		return "No steps"
	case 1:
		return "1 step"
	default:
		return fmt.Sprintf("%d steps", n)
	}
}

func splitNonBlank(s, sep string) []string {
	parts := lo.Map(strings.Split(s, sep), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Compact(parts)
}

// RecipeStats are the totals shown on the home screen.
type RecipeStats struct {
	Total  int `json:"total"`
	Recent int `json:"recent"`
}

// ComputeStats counts recipes and those created within [RecentWindow] of now.
func ComputeStats(recipes []*Recipe, now time.Time) RecipeStats {
	cutoff := now.Add(-RecentWindow)
	return RecipeStats{
		Total: len(recipes),
		Recent: lo.CountBy(recipes, func(r *Recipe) bool {
			return r.CreatedAt.After(cutoff)
		}),
	}
}

// Identity is the authenticated caller. A nil *Identity means no one is signed in.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// String returns the email, or "anonymous" for a nil identity.
func (i *Identity) String() string {
	if i == nil {
		return "anonymous"
	}
	return i.Email
}

// User is a locally registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a [User] with timestamps set to now. The ID is assigned on insert.
func NewUser(email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Identity returns the caller identity for this account.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email}
}
