package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timvw/panectl/internal/model"
)

var (
	flagSplitDirection  string
	flagResizeDirection string
)

var paneCmd = &cobra.Command{
	Use:     "pane",
	Aliases: []string{"p"},
	Short:   "Split, select, and drive panes",
	Long: `Split, select, and drive panes.

Targets are "session:window.pane" or a pane id such as "%3"; omitted
positions come from the current selection.`,
}

var paneSplitCmd = &cobra.Command{
	Use:   "split [target]",
	Short: "Split a window and print the new pane id",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		dir, err := direction(flagSplitDirection)
		if err != nil {
			return err
		}
		id, err := cur.tmux.SplitPane(cmd.Context(), t, dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}),
}

var paneKillCmd = &cobra.Command{
	Use:   "kill [target]",
	Short: "Kill a pane",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		return cur.tmux.KillPane(cmd.Context(), t)
	}),
}

var paneListCmd = &cobra.Command{
	Use:     "list [session:window]",
	Aliases: []string{"ls"},
	Short:   "List pane indexes of a window",
	Args:    cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		panes, err := cur.tmux.ListPanes(cmd.Context(), t)
		if err != nil {
			return err
		}
		printLines(cmd.OutOrStdout(), panes)
		return nil
	}),
}

var paneSelectCmd = &cobra.Command{
	Use:   "select [target]",
	Short: "Select a pane and make it current",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		return cur.tmux.SelectPane(cmd.Context(), t)
	}),
}

var paneResizeCmd = &cobra.Command{
	Use:   "resize <size> [target]",
	Short: "Resize a pane to size cells (width for h, height for v)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", args[0], err)
		}
		dir, err := direction(flagResizeDirection)
		if err != nil {
			return err
		}
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.ResizePane(cmd.Context(), t, size, dir)
	},
}

var paneMoveCmd = &cobra.Command{
	Use:   "move <window> [target]",
	Short: "Move a pane into another window of its session",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.MovePane(cmd.Context(), t, args[0])
	},
}

var paneSwapCmd = &cobra.Command{
	Use:   "swap <source> <destination>",
	Short: "Swap two panes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseTarget(args, 0)
		if err != nil {
			return err
		}
		b, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.SwapPanes(cmd.Context(), a, b)
	},
}

var paneCaptureCmd = &cobra.Command{
	Use:   "capture [target]",
	Short: "Print the visible content of a pane",
	Long: `Print the visible content of a pane to stdout.

This is pure transport: the content is printed exactly as tmux returns it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withTarget(func(cmd *cobra.Command, t model.Target, args []string) error {
		content, err := cur.tmux.CapturePane(cmd.Context(), t)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}),
}

var paneSendCmd = &cobra.Command{
	Use:   "send <keys> [target]",
	Short: "Type keys into a pane followed by Enter",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.SendKeys(cmd.Context(), t, args[0])
	},
}

var paneSyncCmd = &cobra.Command{
	Use:   "sync <on|off> [session:window]",
	Short: "Turn synchronized input on or off for a window",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			on = true
		case "off", "false", "0":
		default:
			return fmt.Errorf("invalid value %q (supported: on, off)", args[0])
		}
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.tmux.SyncPanes(cmd.Context(), t, on)
	},
}

var paneFindCmd = &cobra.Command{
	Use:   "find <text> [session]",
	Short: "Print the first pane whose content contains text",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, found, err := cur.tmux.FindPane(cmd.Context(), optArg(args, 1), args[0])
		if err != nil {
			return err
		}
		if !found {
			teardown(cmd, args)
			os.Exit(1)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

func init() {
	paneSplitCmd.Flags().StringVarP(&flagSplitDirection, "direction", "d", "h", "split direction: h (side by side), v (stacked)")
	paneResizeCmd.Flags().StringVarP(&flagResizeDirection, "direction", "d", "h", "h sets the width, v sets the height")
	paneCmd.AddCommand(paneSplitCmd, paneKillCmd, paneListCmd, paneSelectCmd, paneResizeCmd,
		paneMoveCmd, paneSwapCmd, paneCaptureCmd, paneSendCmd, paneSyncCmd, paneFindCmd)
	rootCmd.AddCommand(paneCmd)
}
