// Package main is unbcli, a command-line client for the UnbelievaBoat API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	unb "github.com/jsamuelsen/unbelievaboat-go"
	"github.com/jsamuelsen/unbelievaboat-go/internal/platform/config"
	"github.com/jsamuelsen/unbelievaboat-go/internal/platform/logging"
	"github.com/jsamuelsen/unbelievaboat-go/internal/platform/telemetry"
)

func main() {
	app := &cli.App{
		Name:    "unbcli",
		Usage:   "inspect and modify UnbelievaBoat guild economies",
		Version: unb.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API token (overrides config and UNB_API_TOKEN)",
				EnvVars: []string{"UNB_API_TOKEN"},
			},
			&cli.Int64Flag{
				Name:    "guild",
				Aliases: []string{"g"},
				Usage:   "guild ID the command operates on",
			},
		},
		Commands: []*cli.Command{
			newGuildCommand(),
			newBalanceCommand(),
			newLeaderboardCommand(),
			newItemCommand(),
			newInventoryCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, installs logging and telemetry, and builds the
// API client. The returned cleanup flushes telemetry and must always be
// called.
func setup(c *cli.Context) (*unb.Application, func(), error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if token := c.String("token"); token != "" {
		cfg.API.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	slog.SetDefault(logger)
	c.Context = logging.WithContext(c.Context, logger)

	provider, err := telemetry.New(c.Context, telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  "unbcli",
		Version:      unb.Version,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	cleanup := func() {
		if err := provider.Shutdown(c.Context); err != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}

	app, err := unb.New(cfg.API.Token,
		unb.WithBaseURL(cfg.API.BaseURL),
		unb.WithTimeout(cfg.API.Timeout),
		unb.WithLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return app, cleanup, nil
}

// guildScope resolves the --guild flag into a guild handle.
func guildScope(c *cli.Context, app *unb.Application) (*unb.PartialGuild, error) {
	id := c.Int64("guild")
	if id == 0 {
		return nil, fmt.Errorf("--guild is required")
	}

	return app.GetGuild(id)
}

// parseAmount reads a balance amount: a plain integer, or "Infinity" (any
// case) for the API's unlimited sentinel.
func parseAmount(raw string) (unb.Amount, error) {
	if strings.EqualFold(raw, "infinity") {
		return unb.Unlimited, nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return unb.Amount{}, fmt.Errorf("invalid amount %q: expected an integer or Infinity", raw)
	}

	return unb.Finite(n), nil
}

func newGuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "guild",
		Usage: "show guild metadata and app permissions",
		Action: func(c *cli.Context) error {
			app, cleanup, err := setup(c)
			if err != nil {
				return err
			}
			defer cleanup()

			scope, err := guildScope(c, app)
			if err != nil {
				return err
			}

			g, err := app.FetchGuild(c.Context, scope)
			if err != nil {
				return err
			}

			perms, err := scope.FetchPermissions(c.Context)
			if err != nil {
				return err
			}

			fmt.Printf("%s (%d)\n", g.Name, g.ID)
			fmt.Printf("  members:     %d\n", g.MemberCount)
			fmt.Printf("  symbol:      %s\n", g.Symbol)
			fmt.Printf("  premium:     %t\n", g.Premium)
			fmt.Printf("  leaderboard: %s\n", g.LeaderboardURL())
			if icon := g.IconURL(); icon != "" {
				fmt.Printf("  icon:        %s\n", icon)
			}
			fmt.Printf("  permissions: economy=%t items=%t\n", perms.Economy, perms.Items)

			return nil
		},
	}
}
