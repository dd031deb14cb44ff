package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desertthunder/recipebox/internal/auth"
	"github.com/desertthunder/recipebox/internal/notify"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The data stack (database, session, repository) is built on first use by [Runner.stack],
// so commands such as "setup config" work without a database.
type Runner struct {
	config     *shared.Config
	configPath string
	envFile    string
	configured bool
	logger     *log.Logger
	output     io.Writer
	notifier   notify.Notifier
	now        func() time.Time

	db      *sql.DB
	pool    *pgxpool.Pool
	authn   auth.Authenticator
	issuer  *auth.Issuer
	session *auth.Session
	recipes *repositories.RecipeRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	// Config, when set, is used as is; otherwise it is loaded from ConfigPath before each command.
	Config     *shared.Config
	ConfigPath string
	EnvFile    string
	Logger     *log.Logger
	Output     io.Writer
	// Notifier receives repository notifications. Defaults to styled lines on stderr.
	Notifier notify.Notifier
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	configured := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewWriter(os.Stderr)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		envFile:    opts.EnvFile,
		configured: configured,
		logger:     opts.Logger,
		output:     opts.Output,
		notifier:   opts.Notifier,
		now:        time.Now,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database handles opened by commands.
func (r *Runner) Close() error {
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
