package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sayandeep-bot/spectosoft/cli/reader"
	"github.com/sayandeep-bot/spectosoft/cli/render"
	"github.com/sayandeep-bot/spectosoft/cli/tui"
	"github.com/sayandeep-bot/spectosoft/pending"
)

// PendingCommand returns the pending command: a read-only inventory of
// artifacts awaiting delivery, by kind and day.
func PendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "Show the pending backlog by kind and day",
		Flags: append(ReadOnlyFlags(),
			ConfigFlag,
			DataRootFlag,
		),
		Action: pendingAction,
	}
}

func pendingAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	store := pending.NewStore(resolveStoreRoot(c, cfg))
	inventory, err := reader.Inventory(store)
	if err != nil {
		return fmt.Errorf("cannot read pending store: %w", err)
	}

	if c.Bool("tui") {
		return tui.Run(inventory)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(inventory)
}
