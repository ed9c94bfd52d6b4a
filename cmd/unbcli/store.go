package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	unb "github.com/jsamuelsen/unbelievaboat-go"
)

func printItem(it *unb.Item) {
	fmt.Printf("item %d: %s\n", it.ID, it.Name)
	if it.Description != "" {
		fmt.Printf("  description: %s\n", it.Description)
	}
	if it.Price != nil {
		fmt.Printf("  price:       %d\n", *it.Price)
	}
	if it.Quantity != nil {
		fmt.Printf("  quantity:    %d\n", *it.Quantity)
	}
	if it.StockRemaining != nil {
		fmt.Printf("  stock:       %s\n", *it.StockRemaining)
	}
	if it.ExpiresAt != nil {
		fmt.Printf("  expires:     %s\n", it.ExpiresAt)
	}
	if it.Emoji != nil {
		fmt.Printf("  emoji:       %s\n", it.Emoji)
	}
	fmt.Printf("  usable=%t sellable=%t inventory=%t\n", it.Usable, it.Sellable, it.InventoryItem)
}

func newItemCommand() *cli.Command {
	return &cli.Command{
		Name:  "item",
		Usage: "inspect and manage the guild store",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list store items",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sort", Value: "id", Usage: "sort order: id, price, name, stock_remaining, or expires_at"},
					&cli.IntFlag{Name: "limit", Usage: "maximum items to show (0 for all)"},
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

					sort := unb.ItemSort(c.String("sort"))
					for it, err := range scope.StoreItems(c.Context, sort, c.Int("limit")) {
						if err != nil {
							return err
						}
						price := "-"
						if it.Price != nil {
							price = fmt.Sprintf("%d", *it.Price)
						}
						fmt.Printf("%-20d %-30s price=%s\n", it.ID, it.Name, price)
					}

					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "show a store item",
				ArgsUsage: "ITEM",
				Action: func(c *cli.Context) error {
					return withItem(c, func(c *cli.Context, it *unb.Item) error {
						printItem(it)
						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a store item",
				ArgsUsage: "ITEM",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "cascade",
						Usage: "also remove the item from every inventory",
					},
				},
				Action: func(c *cli.Context) error {
					return withItem(c, func(c *cli.Context, it *unb.Item) error {
						if err := it.Delete(c.Context, c.Bool("cascade")); err != nil {
							return err
						}
						fmt.Printf("deleted item %d\n", it.ID)
						return nil
					})
				},
			},
		},
	}
}

// withItem fetches the ITEM positional argument in the --guild scope and
// runs fn against it.
func withItem(c *cli.Context, fn func(*cli.Context, *unb.Item) error) error {
	if c.NArg() < 1 {
		return fmt.Errorf("an ITEM argument is required")
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

	it, err := scope.FetchItem(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	return fn(c, it)
}

func newInventoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "inventory",
		Usage: "inspect and manage user inventories",
		Subcommands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list a user's inventory",
				ArgsUsage: "USER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sort", Value: "item_id", Usage: "sort order: item_id, name, or quantity"},
					&cli.IntFlag{Name: "limit", Usage: "maximum entries to show (0 for all)"},
				},
				Action: func(c *cli.Context) error {
					return withUser(c, func(c *cli.Context, user *unb.PartialUser) error {
						sort := unb.InventorySort(c.String("sort"))
						for it, err := range user.Inventory(c.Context, sort, c.Int("limit")) {
							if err != nil {
								return err
							}
							quantity := int64(0)
							if it.Quantity != nil {
								quantity = *it.Quantity
							}
							fmt.Printf("%-20d %-30s x%d\n", it.ID, it.Name, quantity)
						}
						return nil
					})
				},
			},
			{
				Name:      "quantity",
				Usage:     "show how many of an item a user holds",
				ArgsUsage: "USER ITEM",
				Action: func(c *cli.Context) error {
					return withUser(c, func(c *cli.Context, user *unb.PartialUser) error {
						if c.NArg() < 2 {
							return fmt.Errorf("USER and ITEM arguments are required")
						}
						quantity, err := user.ItemQuantity(c.Context, c.Args().Get(1))
						if err != nil {
							return err
						}
						fmt.Println(quantity)
						return nil
					})
				},
			},
			{
				Name:      "add",
				Usage:     "add an item to a user's inventory",
				ArgsUsage: "USER ITEM",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "quantity", Value: 1, Usage: "how many to add"},
					&cli.Int64Flag{Name: "from", Usage: "user ID of an inventory to copy a discontinued item from"},
				},
				Action: func(c *cli.Context) error {
					return withUser(c, func(c *cli.Context, user *unb.PartialUser) error {
						if c.NArg() < 2 {
							return fmt.Errorf("USER and ITEM arguments are required")
						}

						var opts *unb.AddItemOptions
						if origin := c.Int64("from"); origin != 0 {
							opts = &unb.AddItemOptions{OriginInventoryUser: origin}
						}

						it, err := user.AddItem(c.Context, c.Args().Get(1), c.Int64("quantity"), opts)
						if err != nil {
							return err
						}
						printItem(it)
						return nil
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "remove an item from a user's inventory",
				ArgsUsage: "USER ITEM",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "quantity", Value: 1, Usage: "how many to remove"},
				},
				Action: func(c *cli.Context) error {
					return withUser(c, func(c *cli.Context, user *unb.PartialUser) error {
						if c.NArg() < 2 {
							return fmt.Errorf("USER and ITEM arguments are required")
						}
						if err := user.RemoveItem(c.Context, c.Args().Get(1), c.Int64("quantity")); err != nil {
							return err
						}
						fmt.Println("removed")
						return nil
					})
				},
			},
		},
	}
}
