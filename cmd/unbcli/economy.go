package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	unb "github.com/jsamuelsen/unbelievaboat-go"
)

// balanceFlags are shared by the balance write subcommands.
func balanceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "cash", Usage: "cash amount (integer or Infinity)"},
		&cli.StringFlag{Name: "bank", Usage: "bank amount (integer or Infinity)"},
		&cli.StringFlag{Name: "reason", Usage: "audit-log reason"},
	}
}

// balancePatch builds a patch from the --cash/--bank/--reason flags. At
// least one amount must be given.
func balancePatch(c *cli.Context) (unb.BalancePatch, error) {
	patch := unb.BalancePatch{Reason: c.String("reason")}

	if raw := c.String("cash"); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			return patch, err
		}
		patch.Cash = &amount
	}

	if raw := c.String("bank"); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			return patch, err
		}
		patch.Bank = &amount
	}

	if patch.Cash == nil && patch.Bank == nil {
		return patch, fmt.Errorf("at least one of --cash or --bank is required")
	}

	return patch, nil
}

func printUser(u *unb.User) {
	fmt.Printf("user %d\n", u.ID)
	if u.Rank != nil {
		fmt.Printf("  rank:  %d\n", *u.Rank)
	}
	fmt.Printf("  cash:  %s\n", u.Cash)
	fmt.Printf("  bank:  %s\n", u.Bank)
	fmt.Printf("  total: %s\n", u.Total)
}

func newBalanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "read and write user balances",
		ArgsUsage: "USER",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "show a user's balance",
				ArgsUsage: "USER",
				Action: func(c *cli.Context) error {
					return withUser(c, func(c *cli.Context, user *unb.PartialUser) error {
						u, err := user.Guild().FetchUser(c.Context, user.ID)
						if err != nil {
							return err
						}
						printUser(u)
						return nil
					})
				},
			},
			{
				Name:      "add",
				Usage:     "change a user's balance by the given amounts",
				ArgsUsage: "USER",
				Flags:     balanceFlags(),
				Action: func(c *cli.Context) error {
					return withUser(c, func(c *cli.Context, user *unb.PartialUser) error {
						patch, err := balancePatch(c)
						if err != nil {
							return err
						}
						u, err := user.UpdateBalance(c.Context, patch)
						if err != nil {
							return err
						}
						printUser(u)
						return nil
					})
				},
			},
			{
				Name:      "set",
				Usage:     "set a user's balance to the given amounts",
				ArgsUsage: "USER",
				Flags:     balanceFlags(),
				Action: func(c *cli.Context) error {
					return withUser(c, func(c *cli.Context, user *unb.PartialUser) error {
						patch, err := balancePatch(c)
						if err != nil {
							return err
						}
						u, err := user.SetBalance(c.Context, patch)
						if err != nil {
							return err
						}
						printUser(u)
						return nil
					})
				},
			},
		},
	}
}

// withUser runs fn against the USER positional argument in the --guild scope.
func withUser(c *cli.Context, fn func(*cli.Context, *unb.PartialUser) error) error {
	if c.NArg() < 1 {
		return fmt.Errorf("a USER argument is required")
	}

	app, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	scope, err := guildScope(c, app)
	if err != nil {
		return err
	}

	user, err := scope.GetUser(c.Args().First())
	if err != nil {
		return err
	}

	return fn(c, user)
}

func newLeaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "show the guild leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sort", Value: "total", Usage: "sort order: cash, bank, or total"},
			&cli.IntFlag{Name: "limit", Usage: "maximum entries to show (0 for all)"},
		},
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

			sort := unb.LeaderboardSort(c.String("sort"))
			for user, err := range scope.Leaderboard(c.Context, sort, c.Int("limit")) {
				if err != nil {
					return err
				}

				rank := 0
				if user.Rank != nil {
					rank = *user.Rank
				}
				fmt.Printf("%4d. %-20d cash=%-12s bank=%-12s total=%s\n",
					rank, user.ID, user.Cash, user.Bank, user.Total)
			}

			return nil
		},
	}
}
