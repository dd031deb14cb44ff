package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipebox/internal/server"
	"github.com/desertthunder/recipebox/internal/shared"
)

// Serve runs the HTTP API until interrupted.
//
// The API signs its own bearer tokens, so it needs the local auth provider and a database
// it can reach directly (sqlite or postgres).
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.config.Auth.Provider != shared.ProviderLocal {
		return fmt.Errorf("%w: serve requires auth.provider = %q", shared.ErrInvalidConfig, shared.ProviderLocal)
	}
	if r.config.Backend.Driver == shared.DriverREST {
		return fmt.Errorf("%w: serve cannot use the %q backend", shared.ErrInvalidConfig, shared.DriverREST)
	}
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = int(port)
	}

	if err := r.stack(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.WithLogger(r.logger, "component", "server")
	api := server.NewAPI(r.authn, r.issuer, r.recipes, logger)
	addr := r.config.Server.Addr()

	if cmd.Bool("open") {
		go func() {
			time.Sleep(200 * time.Millisecond)
			if err := shared.OpenBrowser("http://" + addr + "/health"); err != nil {
				logger.Warn("failed to open browser", "error", err)
			}
		}()
	}

	r.writePlain("Serving recipes on http://%s (Ctrl+C to stop)\n", addr)
	return server.Serve(ctx, addr, api, logger)
}
