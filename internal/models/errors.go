package models

import "errors"

// ErrValidation matches every field validation failure.
var ErrValidation = errors.New("validation error")

// fieldError is a user-facing validation message that matches [ErrValidation].
type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

func (e *fieldError) Is(target error) bool { return target == ErrValidation }

var (
	ErrTitleRequired   error = &fieldError{"Recipe title is required"}
	ErrTitleTooLong    error = &fieldError{"Recipe title must be 30 characters or less"}
	ErrStepsRequired   error = &fieldError{"Recipe steps are required"}
	ErrKeywordsTooLong error = &fieldError{"Keywords must be 30 characters or less"}
	ErrEmptyPatch      error = &fieldError{"No changes to save"}
)
