// Package reptyr is the process-reattachment façade: it moves running
// processes onto tmux panes or terminals with reptyr and inspects the
// process table with ps.
//
// reptyr has no detach primitive. DetachProcess kills the process, so a
// "move" is really kill-then-reattach and is never rolled back.
package reptyr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/hooks"
	"github.com/timvw/panectl/internal/model"
)

// Options configures the binaries the façade shells out to.
type Options struct {
	Binary     string // default "reptyr"
	PSBinary   string // default "ps"
	KillBinary string // default "kill"
}

// Reptyr is the reattachment façade.
type Reptyr struct {
	core *facade.Core
	opts Options
}

func New(core *facade.Core, opts Options) *Reptyr {
	if opts.Binary == "" {
		opts.Binary = "reptyr"
	}
	if opts.PSBinary == "" {
		opts.PSBinary = "ps"
	}
	if opts.KillBinary == "" {
		opts.KillBinary = "kill"
	}
	return &Reptyr{core: core, opts: opts}
}

// ReattachToPane reattaches pid to a tmux pane. Empty target positions are
// taken from the current selection; all three must end up set unless the
// pane is given by id.
func (r *Reptyr) ReattachToPane(ctx context.Context, pid int, target model.Target) error {
	const op = "reattach-to-pane"
	tg, err := r.resolvePane(op, target)
	if err != nil {
		return err
	}
	return facade.Exec(ctx, r.core, op, paneArgs(pid, tg), func(ctx context.Context) error {
		return r.reattach(ctx, pid, tg.String())
	})
}

// ReattachToTerminal reattaches pid to a terminal device such as /dev/pts/3.
func (r *Reptyr) ReattachToTerminal(ctx context.Context, pid int, tty string) error {
	const op = "reattach-to-terminal"
	if tty == "" {
		return r.noTarget(op, "terminal")
	}
	args := facade.Args("pid", strconv.Itoa(pid), "terminal", tty)
	return facade.Exec(ctx, r.core, op, args, func(ctx context.Context) error {
		return r.reattach(ctx, pid, tty)
	})
}

// ReattachWithEnv reattaches pid to tty with extra environment variables,
// passed to reptyr -E as one "K=V K=V" word with keys sorted.
func (r *Reptyr) ReattachWithEnv(ctx context.Context, pid int, tty string, env map[string]string) error {
	const op = "reattach-with-env"
	if tty == "" {
		return r.noTarget(op, "terminal")
	}
	envWord := FormatEnv(env)
	args := facade.Args("pid", strconv.Itoa(pid), "terminal", tty, "env", envWord)
	return facade.Exec(ctx, r.core, op, args, func(ctx context.Context) error {
		_, err := r.core.Runner.Run(ctx, r.opts.Binary, "-T", tty, "-E", envWord, strconv.Itoa(pid))
		return withTarget(err, tty)
	})
}

// ListReptyrPIDs returns the pids of processes whose command line mentions
// reptyr.
func (r *Reptyr) ListReptyrPIDs(ctx context.Context) ([]int, error) {
	return facade.Invoke(ctx, r.core, "list-reptyr-pids", nil, func(ctx context.Context) ([]int, error) {
		out, err := r.core.Runner.Run(ctx, r.opts.PSBinary, "-e", "-o", "pid,command")
		if err != nil {
			return nil, err
		}
		procs, err := ParseProcessTable(out)
		if err != nil {
			return nil, err
		}
		pids := []int{}
		for _, p := range procs {
			if strings.Contains(p.Command, "reptyr") {
				pids = append(pids, p.PID)
			}
		}
		return pids, nil
	})
}

// ListProcesses returns every process id with its short command name.
func (r *Reptyr) ListProcesses(ctx context.Context) ([]model.Process, error) {
	return facade.Invoke(ctx, r.core, "list-processes", nil, func(ctx context.Context) ([]model.Process, error) {
		out, err := r.core.Runner.Run(ctx, r.opts.PSBinary, "-e", "-o", "pid,comm")
		if err != nil {
			return nil, err
		}
		return ParseProcessTable(out)
	})
}

// IsProcessAttached reports whether pid's command name contains "reptyr".
// Any failure, including a pid that no longer exists, is a "no".
func (r *Reptyr) IsProcessAttached(ctx context.Context, pid int) (bool, error) {
	const op = "is-process-attached"
	return facade.Invoke(ctx, r.core, op, facade.Args("pid", strconv.Itoa(pid)), func(ctx context.Context) (bool, error) {
		out, err := r.core.Runner.Run(ctx, r.opts.PSBinary, "-p", strconv.Itoa(pid), "-o", "comm=")
		if err != nil {
			if errors.Is(err, facade.ErrTimeout) || errors.Is(err, facade.ErrNotInstalled) {
				return false, err
			}
			return false, nil
		}
		return strings.Contains(strings.TrimSpace(out), "reptyr"), nil
	})
}

// DetachProcess sends SIGTERM to pid. This terminates the process.
func (r *Reptyr) DetachProcess(ctx context.Context, pid int) error {
	const op = "detach-process"
	return facade.Exec(ctx, r.core, op, facade.Args("pid", strconv.Itoa(pid)), func(ctx context.Context) error {
		_, err := r.core.Runner.Run(ctx, r.opts.KillBinary, strconv.Itoa(pid))
		return withTarget(err, strconv.Itoa(pid))
	})
}

// MoveProcessToPane detaches pid and reattaches it to a tmux pane. The
// reattach is attempted exactly once even if the detach failed, and nothing
// is rolled back; both failures are joined in the returned error.
func (r *Reptyr) MoveProcessToPane(ctx context.Context, pid int, target model.Target) error {
	const op = "move-process-to-pane"
	tg, err := r.resolvePane(op, target)
	if err != nil {
		return err
	}
	return facade.Exec(ctx, r.core, op, paneArgs(pid, tg), func(ctx context.Context) error {
		detachErr := r.DetachProcess(ctx, pid)
		reattachErr := r.ReattachToPane(ctx, pid, tg)
		return errors.Join(detachErr, reattachErr)
	})
}

func (r *Reptyr) reattach(ctx context.Context, pid int, tty string) error {
	_, err := r.core.Runner.Run(ctx, r.opts.Binary, "-T", tty, strconv.Itoa(pid))
	return withTarget(err, tty)
}

func (r *Reptyr) resolvePane(op string, explicit model.Target) (model.Target, error) {
	tg := r.core.State.Resolve(explicit)
	if missing := tg.MissingForPane(); len(missing) > 0 {
		return tg, r.noTarget(op, missing...)
	}
	return tg, nil
}

func (r *Reptyr) noTarget(op string, missing ...string) error {
	err := facade.NoTarget(op, missing...)
	r.core.Log.Warn("call failed", "op", op, "kind", err.Kind.String(), "error", err)
	return err
}

// FormatEnv renders env as "K=V K=V" with keys in sorted order.
func FormatEnv(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + env[k]
	}
	return strings.Join(pairs, " ")
}

// ParseProcessTable parses "ps -o pid,<cmd>" output: a header line followed
// by "<pid> <command...>" rows. A row that does not start with a numeric pid
// followed by a command is a KindParse error and no rows are returned.
func ParseProcessTable(out string) ([]model.Process, error) {
	lines := facade.SplitLines(out)
	procs := []model.Process{}
	if len(lines) <= 1 {
		return procs, nil
	}
	for i, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.IndexAny(line, " \t")
		if idx < 0 {
			return []model.Process{}, parseError(i+2, line, "missing command")
		}
		pid, err := strconv.Atoi(line[:idx])
		if err != nil {
			return []model.Process{}, parseError(i+2, line, "pid is not a number")
		}
		procs = append(procs, model.Process{PID: pid, Command: strings.TrimSpace(line[idx:])})
	}
	return procs, nil
}

func parseError(lineNo int, line, reason string) *facade.Error {
	return &facade.Error{
		Kind: facade.KindParse,
		Msg:  fmt.Sprintf("process table line %d %q: %s", lineNo, line, reason),
	}
}

func paneArgs(pid int, tg model.Target) []hooks.Arg {
	return facade.Args("pid", strconv.Itoa(pid), "session", tg.Session, "window", tg.Window, "pane", tg.Pane)
}

func withTarget(err error, target string) error {
	if fe, ok := err.(*facade.Error); ok && fe.Target == "" {
		named := *fe
		named.Target = target
		return &named
	}
	return err
}
