package repositories

import (
	"github.com/desertthunder/recipebox/internal/backend"
	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/shared"
)

// authError reports a missing identity for a named action and matches [shared.ErrAuthRequired].
type authError struct {
	action string
}

func (e *authError) Error() string { return "You must be logged in to " + e.action }

func (e *authError) Is(target error) bool { return target == shared.ErrAuthRequired }

func requireIdentity(who *models.Identity, action string) error {
	if who == nil || who.ID == "" {
		return &authError{action: action}
	}
	return nil
}

// ownedBy restricts a query to rows belonging to who.
func ownedBy(who *models.Identity) backend.Filter {
	return backend.Eq{Column: backend.ColUserID, Value: who.ID}
}

// byID selects one recipe of who.
func byID(who *models.Identity, id string) []backend.Filter {
	return []backend.Filter{backend.Eq{Column: backend.ColID, Value: id}, ownedBy(who)}
}

var newestFirst = &backend.Order{Column: backend.ColCreatedAt, Descending: true}
