package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/timvw/panectl/internal/config"
	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/logging"
	"github.com/timvw/panectl/internal/model"
	"github.com/timvw/panectl/internal/mux"
	telem "github.com/timvw/panectl/internal/otel"
	"github.com/timvw/panectl/internal/reptyr"
)

var (
	// Global flags.
	flagConfig    string
	flagSocket    string
	flagTimeout   string
	flagLogLevel  string
	flagLogFormat string
	flagLogCalls  bool
)

// app is everything a subcommand needs, built once per invocation.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	tel    *telem.Telemetry
	core   *facade.Core
	tmux   *mux.Tmux
	reptyr *reptyr.Reptyr
}

var cur *app

var rootCmd = &cobra.Command{
	Use:   "panectl",
	Short: "Drive tmux and reptyr from one command line",
	Long: `panectl wraps the tmux and reptyr command-line tools.

It creates, lists, and kills sessions, windows, and panes; sends keys and
captures pane content; starts and stops the tmux server; and moves running
processes onto panes with reptyr.

Commands that take a target fill unspecified positions from the current
selection. Inside tmux the current selection starts as the pane panectl
runs in.

Configuration is loaded from .panectl.yaml, ~/.config/panectl/config.yaml,
and PANECTL_* environment variables. Flags override both.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .panectl.yaml or ~/.config/panectl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagSocket, "socket", "L", "", "tmux socket name (tmux -L)")
	rootCmd.PersistentFlags().StringVar(&flagTimeout, "timeout", "", `timeout per external command, e.g. "5s" or "off" (default 10s)`)
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text, json")
	rootCmd.PersistentFlags().BoolVar(&flagLogCalls, "log-calls", false, "log every tmux and reptyr call at debug level")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if cfg.ConfigFile != "" {
		log.Debug("config loaded", "file", cfg.ConfigFile)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(cmd.Context(), telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		log.Warn("otel init failed", "error", err)
	}

	core := facade.NewCore(&facade.ExecRunner{Timeout: cfg.RunnerTimeout()}, log)
	if tel != nil {
		core.Tracer = tel.Tracer
		core.Metrics = tel.Metrics
	}
	if cfg.LogCalls {
		if err := logging.RegisterCallLogging(core.Hooks, log); err != nil {
			return err
		}
	}

	cur = &app{
		cfg:  cfg,
		log:  log,
		tel:  tel,
		core: core,
		tmux: mux.New(core, mux.Options{
			Binary:      cfg.TmuxBinary,
			SocketName:  cfg.SocketName,
			InitSession: cfg.InitSession,
		}),
		reptyr: reptyr.New(core, reptyr.Options{
			Binary:     cfg.ReptyrBinary,
			PSBinary:   cfg.PSBinary,
			KillBinary: cfg.KillBinary,
		}),
	}

	if _, err := cur.tmux.SeedFromEnvironment(cmd.Context()); err != nil {
		log.Debug("could not resolve own pane", "error", err)
	}
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if cur != nil && cur.tel != nil {
		cur.tel.Shutdown(context.WithoutCancel(cmd.Context()))
	}
	return nil
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("socket") {
		cfg.SocketName = flagSocket
	}
	if flags.Changed("timeout") {
		cfg.CommandTimeout = flagTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flags.Changed("log-calls") {
		cfg.LogCalls = flagLogCalls
	}
}

// parseTarget parses an optional positional target argument.
func parseTarget(args []string, i int) (model.Target, error) {
	if len(args) <= i {
		return model.Target{}, nil
	}
	return model.ParseTarget(args[i])
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
