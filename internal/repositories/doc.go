// Package repositories is the data access layer front ends talk to.
//
// Key Implementations:
//   - [RecipeRepository] : owner-scoped recipe list, get, search, create, update and delete
//   - [Searcher] : debounced live search on top of [RecipeRepository.Search]
//   - [UserRepository] : local account persistence for the local auth provider
//
// Every recipe operation takes the caller's [models.Identity] as an argument and
// filters by it, so a caller can never read, change or remove another user's
// recipes. Outcomes are reported both as return values and as
// [notify.Notification] values.
package repositories
