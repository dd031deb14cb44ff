package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/recipebox/internal/auth"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		EnvFile:    ".env",
		Logger:     logger,
	})
	app := newApp(runner)

	err := app.Run(context.Background(), os.Args)
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}

	if err != nil {
		title, message := describe(err)
		logger.Error(title, "error", message)
		os.Exit(1)
	}
}

// describe returns a short title and message for err as shown to the user.
func describe(err error) (string, string) {
	var ce *auth.CredentialError
	if errors.As(err, &ce) {
		return ce.Title, ce.Message
	}
	return repositories.Describe(err)
}
