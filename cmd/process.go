package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	flagProcessJSON bool
	flagProcessTTY  string
	flagProcessEnv  []string
)

var processCmd = &cobra.Command{
	Use:     "process",
	Aliases: []string{"proc"},
	Short:   "Move running processes onto panes with reptyr",
	Long: `Move running processes onto panes with reptyr.

reptyr cannot detach a process: "detach" sends it SIGTERM, and "move" is
detach followed by a single reattach attempt that is never rolled back.`,
}

var processListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List processes (pid and command name)",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		procs, err := cur.reptyr.ListProcesses(cmd.Context())
		if err != nil {
			return err
		}
		if flagProcessJSON {
			return printJSON(cmd.OutOrStdout(), procs)
		}
		tbl := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderTop(false).
			BorderBottom(false).
			Headers("PID", "COMMAND")
		for _, p := range procs {
			tbl.Row(strconv.Itoa(p.PID), p.Command)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
		return nil
	},
}

var processReptyrCmd = &cobra.Command{
	Use:   "reptyr-pids",
	Short: "List pids of running reptyr processes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pids, err := cur.reptyr.ListReptyrPIDs(cmd.Context())
		if err != nil {
			return err
		}
		for _, pid := range pids {
			fmt.Fprintln(cmd.OutOrStdout(), pid)
		}
		return nil
	},
}

var processAttachCmd = &cobra.Command{
	Use:   "attach <pid> [target]",
	Short: "Reattach a process to a pane, or to a terminal with --tty",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		if flagProcessTTY != "" {
			if len(flagProcessEnv) > 0 {
				env, err := parseEnv(flagProcessEnv)
				if err != nil {
					return err
				}
				return cur.reptyr.ReattachWithEnv(cmd.Context(), pid, flagProcessTTY, env)
			}
			return cur.reptyr.ReattachToTerminal(cmd.Context(), pid, flagProcessTTY)
		}
		if len(flagProcessEnv) > 0 {
			return fmt.Errorf("--env requires --tty")
		}
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.reptyr.ReattachToPane(cmd.Context(), pid, t)
	},
}

var processDetachCmd = &cobra.Command{
	Use:   "detach <pid>",
	Short: "Terminate a process (SIGTERM)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		return cur.reptyr.DetachProcess(cmd.Context(), pid)
	},
}

var processMoveCmd = &cobra.Command{
	Use:   "move <pid> [target]",
	Short: "Detach a process and reattach it to a pane",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		t, err := parseTarget(args, 1)
		if err != nil {
			return err
		}
		return cur.reptyr.MoveProcessToPane(cmd.Context(), pid, t)
	},
}

var processAttachedCmd = &cobra.Command{
	Use:   "attached <pid>",
	Short: "Report whether a process runs under reptyr",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		attached, err := cur.reptyr.IsProcessAttached(cmd.Context(), pid)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), attached)
		return nil
	},
}

func init() {
	processListCmd.Flags().BoolVar(&flagProcessJSON, "json", false, "print processes as JSON")
	processAttachCmd.Flags().StringVar(&flagProcessTTY, "tty", "", "reattach to this terminal device instead of a pane")
	processAttachCmd.Flags().StringArrayVarP(&flagProcessEnv, "env", "e", nil, "KEY=VALUE to set in the reattached process (with --tty)")
	processCmd.AddCommand(processListCmd, processReptyrCmd, processAttachCmd, processDetachCmd,
		processMoveCmd, processAttachedCmd)
	rootCmd.AddCommand(processCmd)
}

func parsePID(s string) (int, error) {
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	return pid, nil
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid env %q (want KEY=VALUE)", p)
		}
		env[k] = v
	}
	return env, nil
}
