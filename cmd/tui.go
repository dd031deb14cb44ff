package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipebox/internal/notify"
	"github.com/desertthunder/recipebox/internal/shared"
	"github.com/desertthunder/recipebox/internal/ui"
)

// TUI launches the interactive terminal UI for the signed in user.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	toasts := notify.NewChannel(16)
	r.notifier = notify.Multi{toasts, notify.Log{Logger: fileLogger}}

	who, err := r.recipeContext(ctx)
	if err != nil {
		return err
	}
	if who == nil {
		return fmt.Errorf("%w: run 'rbx auth login' first", shared.ErrAuthRequired)
	}

	model := ui.NewModel(ctx, who, r.recipes, r.config.Search.DebounceDelay(), toasts.C)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
