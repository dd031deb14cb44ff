// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI moves between four views:
//  1. [ListView] : Browse the signed in user's recipes, newest first
//  2. [SearchView] : Type a query and watch debounced results arrive
//  3. [DetailView] : Read one recipe with numbered steps and keyword chips
//  4. [ConfirmView] : Confirm a delete, after which the list is fetched again
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern. Search states and
// notifications arrive on channels and are turned into messages one at a time, so a search
// result that was superseded by further typing is never rendered.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
