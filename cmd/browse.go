package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/timvw/panectl/internal/browse"
	"github.com/timvw/panectl/internal/events"
)

var flagTheme string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive browser for sessions and panes",
	Long: `Launch an interactive terminal UI listing every session and pane.

The pane under the cursor is captured into a preview. From the list you
can select a pane, send it keys, and toggle synchronized input for its
window. The list refreshes every refresh interval (see the refresh config
key; "off" disables it).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cur.tmux.Available(); err != nil {
			return err
		}
		inv, err := newInventory()
		if err != nil {
			return err
		}

		recent := events.NewStore(events.DefaultTTL)
		if err := recent.Record(cur.core.Hooks, "capture-pane", "list-sessions", "list-windows", "list-panes"); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel() // cancels in-flight refreshes when the UI exits

		theme := cur.cfg.Theme
		if cmd.Flags().Changed("theme") {
			theme = flagTheme
		}
		b := &browse.Browser{
			Mux:             cur.tmux,
			Inventory:       inv,
			RefreshInterval: cur.cfg.RefreshDuration,
			Theme:           browse.ThemeByName(theme),
			Events:          recent,
		}
		return b.Run(ctx)
	},
}

func init() {
	browseCmd.Flags().StringVar(&flagTheme, "theme", "dark", "color theme: dark, light")
	rootCmd.AddCommand(browseCmd)
}
