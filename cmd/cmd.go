// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// newApp builds the rbx command tree around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "rbx",
		Usage:   "Keep your recipes in a local or hosted recipe box",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file with RECIPEBOX_* overrides",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, recipeCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "status",
				Usage:  "Show applied migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

func credentialFlags(signUp bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Account email",
			Sources: cli.EnvVars("RECIPEBOX_EMAIL"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
			Sources: cli.EnvVars("RECIPEBOX_PASSWORD"),
		},
	}
	if signUp {
		flags = append(flags, &cli.StringFlag{
			Name:  "confirm",
			Usage: "Repeat the password",
		})
	}
	return flags
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your account and session",
		Commands: []*cli.Command{
			{
				Name:   "signup",
				Usage:  "Create an account and sign in",
				Flags:  credentialFlags(true),
				Action: r.AuthSignUp,
			},
			{
				Name:   "login",
				Usage:  "Sign in",
				Flags:  credentialFlags(false),
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show who is signed in",
				Action: r.AuthStatus,
			},
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func recipeFieldFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Aliases:  []string{"t"},
			Usage:    "Recipe title (30 characters or less)",
			Required: required,
		},
		&cli.StringFlag{
			Name:     "steps",
			Aliases:  []string{"s"},
			Usage:    "Steps, one per line",
			Required: required,
		},
		&cli.StringFlag{
			Name:    "keywords",
			Aliases: []string{"k"},
			Usage:   "Comma separated keywords (30 characters or less)",
		},
		jsonFlag(),
	}
}

// recipeCommand handles recipe operations
func recipeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recipe",
		Aliases: []string{"recipes", "r"},
		Usage:   "Manage your recipes",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your recipes, newest first",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.RecipeList,
			},
			{
				Name:      "get",
				Usage:     "Show one recipe",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.RecipeGet,
			},
			{
				Name:   "add",
				Usage:  "Add a recipe",
				Flags:  recipeFieldFlags(true),
				Action: r.RecipeAdd,
			},
			{
				Name:      "update",
				Usage:     "Change the title, steps or keywords of a recipe",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     recipeFieldFlags(false),
				Action:    r.RecipeUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a recipe",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.RecipeDelete,
			},
			{
				Name:      "search",
				Usage:     "Search titles and keywords",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.RecipeSearch,
			},
			{
				Name:      "export",
				Usage:     "Export a recipe, or all of them with --all, to files",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "md, txt, json or csv",
						Value:   "md",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: <title>.<format>)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every recipe into --dir",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory for --all (default: recipes_export_<epoch>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers for --all",
						Value: 4,
					},
					jsonFlag(),
				},
				Action: r.RecipeExport,
			},
			{
				Name:   "stats",
				Usage:  "Count your recipes",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.RecipeStats,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the recipe API over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (default from config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the health endpoint in a browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive recipe management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse, search and delete recipes interactively",
		Action:  r.TUI,
	}
}
