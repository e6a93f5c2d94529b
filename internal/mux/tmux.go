package mux

import (
	"context"
	"strings"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/hooks"
	"github.com/timvw/panectl/internal/model"
)

// DefaultInitSession is the session created to bring up a fresh server.
const DefaultInitSession = "init_session"

// Options configures the tmux façade.
type Options struct {
	Binary      string // default "tmux"
	SocketName  string // passed as -L when set
	InitSession string // default DefaultInitSession
}

// Tmux is the tmux façade.
type Tmux struct {
	core *facade.Core
	opts Options
}

// New creates a tmux façade on core.
func New(core *facade.Core, opts Options) *Tmux {
	if opts.Binary == "" {
		opts.Binary = "tmux"
	}
	if opts.InitSession == "" {
		opts.InitSession = DefaultInitSession
	}
	return &Tmux{core: core, opts: opts}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// Core returns the façade core this Tmux runs on.
func (t *Tmux) Core() *facade.Core {
	return t.core
}

// Current returns the current selection.
func (t *Tmux) Current() model.Target {
	return t.core.State.Current()
}

// argv prefixes args with the socket selector, if any.
func (t *Tmux) argv(args ...string) []string {
	if t.opts.SocketName == "" {
		return args
	}
	return append([]string{"-L", t.opts.SocketName}, args...)
}

// run executes a tmux command and returns its stdout. Failures carry the
// target so the reported error names what was addressed.
func (t *Tmux) run(ctx context.Context, target string, args ...string) (string, error) {
	out, err := t.core.Runner.Run(ctx, t.opts.Binary, t.argv(args...)...)
	if err != nil {
		return "", withTarget(err, target)
	}
	return out, nil
}

// runLines is run followed by facade.SplitLines.
func (t *Tmux) runLines(ctx context.Context, target string, args ...string) ([]string, error) {
	out, err := t.run(ctx, target, args...)
	if err != nil {
		return nil, err
	}
	return facade.SplitLines(out), nil
}

// resolve fills the empty positions of explicit from the current selection
// and fails with KindNoTarget if any of required is still empty.
func (t *Tmux) resolve(op string, explicit model.Target, required ...string) (model.Target, error) {
	resolved := t.core.State.Resolve(explicit)
	if missing := resolved.Missing(required...); len(missing) > 0 {
		return resolved, t.noTarget(op, missing...)
	}
	return resolved, nil
}

func withTarget(err error, target string) error {
	if fe, ok := err.(*facade.Error); ok && fe.Target == "" && target != "" {
		named := *fe
		named.Target = target
		return &named
	}
	return err
}

func targetArgs(tg model.Target) []hooks.Arg {
	return facade.Args("session", tg.Session, "window", tg.Window, "pane", tg.Pane)
}

// firstLine returns the first non-empty line of out, trimmed.
func firstLine(out string) string {
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

func windowArgs(tg model.Target) []hooks.Arg {
	return facade.Args("session", tg.Session, "window", tg.Window)
}
