// salesdash is the sales dashboard toolchain.
//
// Usage:
//   salesdash generate [--out data/sales.csv --records 10000]
//   salesdash serve
//   salesdash load [--truncate]
//   salesdash report [--format md --slack]
//   salesdash ask "which region drove Q4 revenue?"
//   salesdash doctor
//   salesdash deploy [--dry-run]
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "salesdash",
		Usage:   "Sales analytics dashboard, warehouse loader, and insight assistant",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				EnvVars: []string{"SALESDASH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SALESDASH_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				EnvVars: []string{"SALESDASH_LOG_FORMAT"},
			},
		},

		Commands: []*cli.Command{
			generateCommand(),
			serveCommand(),
			loadCommand(),
			reportCommand(),
			askCommand(),
			doctorCommand(),
			deployCommand(),
		},
	}
}

// bootstrap loads the configuration and installs the process logger. Every
// command starts here.
func bootstrap(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	if level := c.String("log-level"); level != "" {
		cfg.Logger.Level = level
	}
	if format := c.String("log-format"); format != "" {
		cfg.Logger.Format = format
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
