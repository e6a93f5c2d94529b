package mux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

// Available reports whether the tmux binary can be found.
func (t *Tmux) Available() error {
	if _, err := exec.LookPath(t.opts.Binary); err != nil {
		return &facade.Error{
			Kind: facade.KindNotInstalled,
			Op:   "detect",
			Msg:  fmt.Sprintf("%s not found in PATH", t.opts.Binary),
			Err:  err,
		}
	}
	return nil
}

// SeedFromEnvironment makes the pane this process runs in current, when it
// runs inside tmux ($TMUX_PANE is set). Outside tmux it does nothing and
// returns the zero Target.
func (t *Tmux) SeedFromEnvironment(ctx context.Context) (model.Target, error) {
	pane := os.Getenv("TMUX_PANE")
	if os.Getenv("TMUX") == "" || pane == "" {
		return model.Target{}, nil
	}
	return facade.Invoke(ctx, t.core, "detect", facade.Args("pane", pane), func(ctx context.Context) (model.Target, error) {
		out, err := t.run(ctx, pane, "display-message", "-p", "-t", pane, "#{session_name}\t#{window_index}\t#{pane_id}")
		if err != nil {
			return model.Target{}, err
		}
		parts := strings.Split(firstLine(out), "\t")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return model.Target{}, &facade.Error{
				Kind:   facade.KindParse,
				Target: pane,
				Msg:    fmt.Sprintf("unexpected display-message output %q", out),
			}
		}
		tg := model.Target{Session: parts[0], Window: parts[1], Pane: parts[2]}
		t.core.State.Select(tg)
		return tg, nil
	})
}
