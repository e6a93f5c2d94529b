package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/panectl/internal/model"
	"github.com/timvw/panectl/internal/mux"
)

var (
	flagWindowName string
	flagDirection  string
)

var windowCmd = &cobra.Command{
	Use:     "window",
	Aliases: []string{"w"},
	Short:   "Create, list, and arrange windows",
	Long: `Create, list, and arrange windows.

Targets are "session:window"; omitted positions come from the current
selection.`,
}

var windowNewCmd = &cobra.Command{
	Use:   "new [session]",
	Short: "Open a window and print its index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := cur.tmux.CreateWindow(cmd.Context(), optArg(args, 0), flagWindowName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), index)
		return nil
	},
}

var windowKillCmd = &cobra.Command{
	Use:   "kill [target]",
	Short: "Kill a window",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		return cur.tmux.KillWindow(cmd.Context(), t)
	}),
}

var windowListCmd = &cobra.Command{
	Use:     "list [session]",
	Aliases: []string{"ls"},
	Short:   "List window indexes of a session",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		windows, err := cur.tmux.ListWindows(cmd.Context(), optArg(args, 0))
		if err != nil {
			return err
		}
		printLines(cmd.OutOrStdout(), windows)
		return nil
	},
}

var windowRenameCmd = &cobra.Command{
	Use:   "rename <name> [target]",
	Short: "Rename a window",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.RenameWindow(cmd.Context(), t, args[0])
	},
}

var windowSelectCmd = &cobra.Command{
	Use:   "select [target]",
	Short: "Select a window and make it current",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		return cur.tmux.SelectWindow(cmd.Context(), t)
	}),
}

var windowSplitCmd = &cobra.Command{
	Use:   "split [target]",
	Short: "Split the active pane of a window",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		dir, err := direction(flagDirection)
		if err != nil {
			return err
		}
		return cur.tmux.SplitWindow(cmd.Context(), t, dir)
	}),
}

var windowMoveCmd = &cobra.Command{
	Use:   "move <index> [target]",
	Short: "Move a window to another index in its session",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.MoveWindow(cmd.Context(), t, args[0])
	},
}

var windowLinkCmd = &cobra.Command{
	Use:   "link <session> [target]",
	Short: "Link a window into another session",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.LinkWindow(cmd.Context(), t, args[0])
	},
}

var windowUnlinkCmd = &cobra.Command{
	Use:   "unlink [target]",
	Short: "Unlink a window from its session",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		return cur.tmux.UnlinkWindow(cmd.Context(), t)
	}),
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Save and restore window layouts",
}

var layoutSaveCmd = &cobra.Command{
	Use:   "save <file> [session]",
	Short: "Write one layout line per window of a session",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cur.tmux.SaveLayout(cmd.Context(), optArg(args, 1), args[0])
	},
}

var layoutRestoreCmd = &cobra.Command{
	Use:   "restore <file> [session]",
	Short: "Apply saved layouts to windows 0..n-1",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := cur.tmux.RestoreLayout(cmd.Context(), optArg(args, 1), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored %d windows\n", n)
		return nil
	},
}

func init() {
	windowNewCmd.Flags().StringVarP(&flagWindowName, "name", "n", "", "window name")
	windowSplitCmd.Flags().StringVarP(&flagDirection, "direction", "d", "h", "split direction: h (side by side), v (stacked)")
	windowCmd.AddCommand(windowNewCmd, windowKillCmd, windowListCmd, windowRenameCmd, windowSelectCmd,
		windowSplitCmd, windowMoveCmd, windowLinkCmd, windowUnlinkCmd)
	layoutCmd.AddCommand(layoutSaveCmd, layoutRestoreCmd)
	rootCmd.AddCommand(windowCmd, layoutCmd)
}

// withTarget adapts a handler taking the parsed first argument as target.
func withTarget(fn func(cmd *cobra.Command, t model.Target, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		t, err := parseTarget(args, 0)
		if err != nil {
			return err
		}
		return fn(cmd, t, args)
	}
}

func direction(s string) (mux.Direction, error) {
	dir, ok := mux.ParseDirection(s)
	if !ok {
		return "", fmt.Errorf("invalid direction %q (supported: h, v)", s)
	}
	return dir, nil
}
