package mux

import (
	"context"
	"strconv"
	"strings"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

// resolvePane resolves a pane target. A pane id ("%3") is unique server-wide,
// so session and window are only required for index-addressed panes.
func (t *Tmux) resolvePane(op string, explicit model.Target) (model.Target, error) {
	resolved := t.core.State.Resolve(explicit)
	if missing := resolved.MissingForPane(); len(missing) > 0 {
		return resolved, t.noTarget(op, missing...)
	}
	return resolved, nil
}

// SplitPane splits a window and makes the new pane current. It returns the
// new pane's id (e.g. "%5").
func (t *Tmux) SplitPane(ctx context.Context, target model.Target, dir Direction) (string, error) {
	const op = "split-pane"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return "", err
	}
	args := append(windowArgs(tg), facade.Args("direction", string(dir))...)
	return facade.Invoke(ctx, t.core, op, args, func(ctx context.Context) (string, error) {
		out, err := t.run(ctx, tg.WindowTarget(),
			"split-window", dir.splitFlag(), "-t", tg.WindowTarget(), "-P", "-F", "#{pane_id}")
		if err != nil {
			return "", err
		}
		id := firstLine(out)
		if id == "" {
			return "", &facade.Error{Kind: facade.KindParse, Target: tg.WindowTarget(), Msg: "split-window printed no pane id"}
		}
		t.core.State.SetSession(tg.Session)
		t.core.State.SetWindow(tg.Window)
		t.core.State.SetPane(id)
		return id, nil
	})
}

// KillPane kills a pane and clears the current pane if it was that pane.
func (t *Tmux) KillPane(ctx context.Context, target model.Target) error {
	const op = "kill-pane"
	tg, err := t.resolvePane(op, target)
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, targetArgs(tg), func(ctx context.Context) error {
		if _, err := t.run(ctx, tg.String(), "kill-pane", "-t", tg.String()); err != nil {
			return err
		}
		t.core.State.ClearPaneIf(tg)
		return nil
	})
}

// ListPanes returns the pane indexes of a window.
func (t *Tmux) ListPanes(ctx context.Context, target model.Target) ([]string, error) {
	const op = "list-panes"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return nil, err
	}
	return facade.Invoke(ctx, t.core, op, windowArgs(tg), func(ctx context.Context) ([]string, error) {
		return t.runLines(ctx, tg.WindowTarget(), "list-panes", "-t", tg.WindowTarget(), "-F", "#P")
	})
}

// SelectPane makes a pane active in tmux and current here.
func (t *Tmux) SelectPane(ctx context.Context, target model.Target) error {
	const op = "select-pane"
	tg, err := t.resolvePane(op, target)
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, targetArgs(tg), func(ctx context.Context) error {
		if _, err := t.run(ctx, tg.String(), "select-pane", "-t", tg.String()); err != nil {
			return err
		}
		t.core.State.Select(tg)
		return nil
	})
}

// ResizePane resizes a pane to size cells: width for Horizontal, height
// for Vertical.
func (t *Tmux) ResizePane(ctx context.Context, target model.Target, size int, dir Direction) error {
	const op = "resize-pane"
	tg, err := t.resolvePane(op, target)
	if err != nil {
		return err
	}
	if size <= 0 {
		return &facade.Error{Kind: facade.KindCommandFailed, Op: op, Target: tg.String(), Msg: "size must be positive"}
	}
	// -x/-y set an absolute size; adding -L/-U would also shift it by one.
	sizeFlag := "-y"
	if dir == Horizontal {
		sizeFlag = "-x"
	}
	args := append(targetArgs(tg), facade.Args("size", strconv.Itoa(size), "direction", string(dir))...)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, tg.String(), "resize-pane", "-t", tg.String(), sizeFlag, strconv.Itoa(size))
		return err
	})
}

// MovePane moves a pane into window dstWindow of the same session.
func (t *Tmux) MovePane(ctx context.Context, target model.Target, dstWindow string) error {
	const op = "move-pane"
	tg, err := t.resolve(op, target, "session", "window", "pane")
	if err != nil {
		return err
	}
	if dstWindow == "" {
		return t.noTarget(op, "destination window")
	}
	dst := model.Target{Session: tg.Session, Window: dstWindow}
	args := append(targetArgs(tg), facade.Args("destination", dstWindow)...)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, tg.String(), "move-pane", "-s", tg.String(), "-t", dst.WindowTarget())
		return err
	})
}

// SwapPanes swaps two panes. Empty positions of either side are resolved
// independently from the current selection.
func (t *Tmux) SwapPanes(ctx context.Context, a, b model.Target) error {
	const op = "swap-pane"
	src, err := t.resolvePane(op, a)
	if err != nil {
		return err
	}
	dst, err := t.resolvePane(op, b)
	if err != nil {
		return err
	}
	args := facade.Args("source", src.String(), "destination", dst.String())
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, src.String(), "swap-pane", "-s", src.String(), "-t", dst.String())
		return err
	})
}

// CapturePane returns the visible content of a pane verbatim.
func (t *Tmux) CapturePane(ctx context.Context, target model.Target) (string, error) {
	const op = "capture-pane"
	tg, err := t.resolvePane(op, target)
	if err != nil {
		return "", err
	}
	return facade.Invoke(ctx, t.core, op, targetArgs(tg), func(ctx context.Context) (string, error) {
		return t.run(ctx, tg.String(), "capture-pane", "-p", "-t", tg.String())
	})
}

// SendKeys types keys into a pane followed by Enter.
func (t *Tmux) SendKeys(ctx context.Context, target model.Target, keys string) error {
	const op = "send-keys"
	tg, err := t.resolvePane(op, target)
	if err != nil {
		return err
	}
	args := append(targetArgs(tg), facade.Args("keys", keys)...)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, tg.String(), "send-keys", "-t", tg.String(), keys, "C-m")
		return err
	})
}

// SyncPanes turns synchronize-panes on or off for a window.
func (t *Tmux) SyncPanes(ctx context.Context, target model.Target, on bool) error {
	op := "sync-panes"
	value := "on"
	if !on {
		op, value = "unsync-panes", "off"
	}
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, windowArgs(tg), func(ctx context.Context) error {
		_, err := t.run(ctx, tg.WindowTarget(), "setw", "-t", tg.WindowTarget(), "synchronize-panes", value)
		return err
	})
}

// FindPane returns the first pane in session whose visible content contains
// needle, walking windows and panes in tmux order. Panes that cannot be
// listed or captured are skipped.
func (t *Tmux) FindPane(ctx context.Context, session, needle string) (model.Target, bool, error) {
	const op = "find-pane"
	tg, err := t.resolve(op, model.Target{Session: session}, "session")
	if err != nil {
		return model.Target{}, false, err
	}
	args := facade.Args("session", tg.Session, "needle", needle)
	found, err := facade.Invoke(ctx, t.core, op, args, func(ctx context.Context) (model.Target, error) {
		windows, err := t.ListWindows(ctx, tg.Session)
		if err != nil {
			return model.Target{}, err
		}
		for _, w := range windows {
			panes, err := t.ListPanes(ctx, model.Target{Session: tg.Session, Window: w})
			if err != nil {
				continue
			}
			for _, p := range panes {
				candidate := model.Target{Session: tg.Session, Window: w, Pane: p}
				content, err := t.CapturePane(ctx, candidate)
				if err != nil {
					continue
				}
				if strings.Contains(content, needle) {
					return candidate, nil
				}
			}
		}
		return model.Target{}, nil
	})
	if err != nil {
		return model.Target{}, false, err
	}
	return found, !found.IsZero(), nil
}
