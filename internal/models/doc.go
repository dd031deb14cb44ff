// Package models defines the domain entities of recipebox.
//
// The package contains three categories of types:
//
// 1. Stored records
//   - [Recipe] : a user's recipe as persisted by a backend
//   - [User] : a locally registered account (local auth provider only)
//
// 2. Inputs, which deliberately carry no id, timestamp or owner
//   - [RecipeInput] : fields accepted on create
//   - [RecipePatch] : partial update, nil fields are left untouched
//
// 3. Callers and aggregates
//   - [Identity] : the authenticated caller; a nil *Identity means signed out
//   - [RecipeStats] : totals shown on the home screen
//
// Inputs are normalized (trimmed, empty keywords dropped) and validated with
// go-playground/validator before anything reaches a backend. Validation
// failures are reported as the sentinel errors in errors.go, all of which
// match [ErrValidation] with errors.Is.
package models
