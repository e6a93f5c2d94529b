package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"s"},
	Short:   "Create, list, and kill tmux sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a detached session and make it current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cur.tmux.CreateSession(cmd.Context(), args[0])
	},
}

var sessionKillCmd = &cobra.Command{
	Use:   "kill [name]",
	Short: "Kill a session (default: the current one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cur.tmux.KillSession(cmd.Context(), optArg(args, 0))
	},
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List session names",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := cur.tmux.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		printLines(cmd.OutOrStdout(), sessions)
		return nil
	},
}

var sessionAttachCmd = &cobra.Command{
	Use:   "attach [name]",
	Short: "Attach this terminal to a session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cur.tmux.AttachSession(cmd.Context(), optArg(args, 0))
	},
}

var sessionRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cur.tmux.RenameSession(cmd.Context(), args[0], args[1])
	},
}

var sessionSwitchCmd = &cobra.Command{
	Use:   "switch [name]",
	Short: "Switch the attached client to a session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cur.tmux.SwitchSession(cmd.Context(), optArg(args, 0))
	},
}

var sessionHasCmd = &cobra.Command{
	Use:   "has <name>",
	Short: "Exit 0 if the session exists, 1 otherwise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := cur.tmux.HasSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			teardown(cmd, args)
			os.Exit(1)
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionNewCmd, sessionKillCmd, sessionListCmd, sessionAttachCmd,
		sessionRenameCmd, sessionSwitchCmd, sessionHasCmd)
	rootCmd.AddCommand(sessionCmd)
}

// optArg returns args[i] or "".
func optArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
