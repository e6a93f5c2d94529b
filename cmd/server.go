package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagServerJSON bool

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start, stop, and check the tmux server",
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tmux server if it is not running",
	Long: `Start the tmux server if it is not running.

A fresh server exits without sessions, so an initial session (init_session
by default, see the init_session config key) is created with it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := cur.tmux.StartServer(cmd.Context())
		if err != nil {
			return err
		}
		if flagServerJSON {
			return printJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tmux server running on %s\n", info.SocketFile)
		return nil
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Kill the tmux server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stopped, err := cur.tmux.StopServer(cmd.Context())
		if err != nil {
			return err
		}
		if stopped {
			fmt.Fprintln(cmd.OutOrStdout(), "tmux server stopped")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "tmux server was not running")
		}
		return nil
	},
}

var serverCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Exit 0 if the tmux server is running, 1 otherwise",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cur.tmux.Available(); err != nil {
			return err
		}
		running, err := cur.tmux.CheckServer(cmd.Context())
		if err != nil {
			return err
		}
		if !running {
			fmt.Fprintln(cmd.OutOrStdout(), "not running")
			teardown(cmd, args)
			os.Exit(1)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "running")
		return nil
	},
}

var serverInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the server socket and status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		running, err := cur.tmux.CheckServer(cmd.Context())
		if err != nil {
			return err
		}
		info := cur.tmux.ServerInfo()
		info.Running = running
		if info.SocketFile == "" {
			info.SocketFile = cur.tmux.SocketPath()
		}
		if flagServerJSON {
			return printJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "socket:  %s\nrunning: %t\n", info.SocketFile, info.Running)
		return nil
	},
}

func init() {
	serverStartCmd.Flags().BoolVar(&flagServerJSON, "json", false, "print server info as JSON")
	serverInfoCmd.Flags().BoolVar(&flagServerJSON, "json", false, "print server info as JSON")
	serverCmd.AddCommand(serverStartCmd, serverStopCmd, serverCheckCmd, serverInfoCmd)
	rootCmd.AddCommand(serverCmd)
}
