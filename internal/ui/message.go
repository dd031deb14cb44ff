package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/notify"
	"github.com/desertthunder/recipebox/internal/repositories"
)

// ToastDuration is how long a notification stays on screen.
const ToastDuration = 4 * time.Second

type recipesFetchedMsg struct {
	recipes []*models.Recipe
	err     error
}

type recipeDeletedMsg struct {
	id  string
	err error
}

// searchStateMsg carries a state published by the live searcher.
type searchStateMsg repositories.SearchState

type toastMsg notify.Notification

type clearToastMsg struct {
	seq int
}

// latest returns an onChange callback that keeps only the newest state in ch.
//
// The searcher calls it with its lock held, so it never blocks.
func latest(ch chan repositories.SearchState) func(repositories.SearchState) {
	return func(st repositories.SearchState) {
		for {
			select {
			case ch <- st:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	}
}

func clearToastAfter(seq int) tea.Cmd {
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}
