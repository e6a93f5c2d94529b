package cmd

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/timvw/panectl/internal/browse"
	"github.com/timvw/panectl/internal/inventory"
)

var flagInventoryJSON bool

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"inv", "tree"},
	Short:   "Show all sessions, windows, and panes",
	Long: `Walk every session, window, and pane and print them as a tree.

Sessions matching exclude_sessions globs are skipped. Listing failures are
logged and leave that branch empty.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := newInventory()
		if err != nil {
			return err
		}
		if err := inv.Refresh(cmd.Context()); err != nil {
			return err
		}
		snap := inv.Snapshot()
		if flagInventoryJSON {
			return printJSON(cmd.OutOrStdout(), snap)
		}
		styles := inventory.PlainStyles()
		if term.IsTerminal(os.Stdout.Fd()) {
			styles = browse.ThemeByName(cur.cfg.Theme).TreeStyles()
		}
		return inventory.Render(cmd.OutOrStdout(), snap, cur.tmux.Current(), styles)
	},
}

func init() {
	inventoryCmd.Flags().BoolVar(&flagInventoryJSON, "json", false, "print the snapshot as JSON")
	rootCmd.AddCommand(inventoryCmd)
}

func newInventory() (*inventory.Inventory, error) {
	inv, err := inventory.New(cur.tmux, cur.log, cur.cfg.ExcludeSessions)
	if err != nil {
		return nil, err
	}
	return inv.WithMetrics(cur.core.Metrics), nil
}
