package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipebox/internal/auth"
)

func credentials(cmd *cli.Command) auth.Credentials {
	return auth.Credentials{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		Confirm:  cmd.String("confirm"),
	}
}

// AuthSignUp creates an account and keeps the new session.
func (r *Runner) AuthSignUp(ctx context.Context, cmd *cli.Command) error {
	if err := r.stack(ctx); err != nil {
		return err
	}

	who, err := r.session.SignUp(ctx, credentials(cmd))
	if errors.Is(err, auth.ErrConfirmationPending) {
		r.writePlain("✓ Account Created\n")
		return r.writePlain("Please check your email to verify your account, then run 'rbx auth login'.\n")
	}
	if err != nil {
		return err
	}

	r.logger.Info("signed up", "user", who.ID)
	return r.writePlain("✓ Account Created\nSigned in as %s\n", who)
}

// AuthLogin signs in and saves the session for later commands.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.stack(ctx); err != nil {
		return err
	}

	who, err := r.session.SignIn(ctx, credentials(cmd))
	if err != nil {
		return err
	}

	r.logger.Info("signed in", "user", who.ID)
	return r.writePlain("✓ Signed in as %s\n", who)
}

// AuthLogout forgets the saved session. The local sign out succeeds even if the server cannot be reached.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.stack(ctx); err != nil {
		return err
	}

	if err := r.session.SignOut(ctx); err != nil {
		r.logger.Warn("server sign out failed", "error", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the signed in identity.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.stack(ctx); err != nil {
		return err
	}

	who, err := r.identity()
	if err != nil {
		return err
	}
	if who == nil {
		return r.writePlain("✗ Not signed in\n")
	}
	r.writePlain("✓ Signed in as %s\n", who)
	return r.writePlain("Provider: %s\nBackend: %s\n", r.config.Auth.Provider, r.config.Backend.Driver)
}
