package mux

import (
	"context"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

// CreateWindow opens a window named name in session (or the current
// session). The new window's index becomes the current window.
func (t *Tmux) CreateWindow(ctx context.Context, session, name string) (string, error) {
	const op = "create-window"
	tg, err := t.resolve(op, model.Target{Session: session}, "session")
	if err != nil {
		return "", err
	}
	args := facade.Args("session", tg.Session, "name", name)
	return facade.Invoke(ctx, t.core, op, args, func(ctx context.Context) (string, error) {
		argv := []string{"new-window", "-t", tg.Session}
		if name != "" {
			argv = append(argv, "-n", name)
		}
		argv = append(argv, "-P", "-F", "#{window_index}")
		out, err := t.run(ctx, tg.Session, argv...)
		if err != nil {
			return "", err
		}
		index := firstLine(out)
		if index == "" {
			return "", &facade.Error{Kind: facade.KindParse, Target: tg.Session, Msg: "new-window printed no window index"}
		}
		t.core.State.SetSession(tg.Session)
		t.core.State.SetWindow(index)
		return index, nil
	})
}

// KillWindow kills a window; empty positions come from the current selection.
func (t *Tmux) KillWindow(ctx context.Context, target model.Target) error {
	const op = "kill-window"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, windowArgs(tg), func(ctx context.Context) error {
		if _, err := t.run(ctx, tg.WindowTarget(), "kill-window", "-t", tg.WindowTarget()); err != nil {
			return err
		}
		t.core.State.ClearWindowIf(tg.Session, tg.Window)
		return nil
	})
}

// ListWindows returns the window indexes of a session.
func (t *Tmux) ListWindows(ctx context.Context, session string) ([]string, error) {
	const op = "list-windows"
	tg, err := t.resolve(op, model.Target{Session: session}, "session")
	if err != nil {
		return nil, err
	}
	return facade.Invoke(ctx, t.core, op, facade.Args("session", tg.Session), func(ctx context.Context) ([]string, error) {
		return t.runLines(ctx, tg.Session, "list-windows", "-t", tg.Session, "-F", "#I")
	})
}

func (t *Tmux) RenameWindow(ctx context.Context, target model.Target, name string) error {
	const op = "rename-window"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	if name == "" {
		return t.noTarget(op, "new name")
	}
	args := append(windowArgs(tg), facade.Args("new_name", name)...)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, tg.WindowTarget(), "rename-window", "-t", tg.WindowTarget(), name)
		return err
	})
}

// SelectWindow makes a window active in tmux and current here.
func (t *Tmux) SelectWindow(ctx context.Context, target model.Target) error {
	const op = "select-window"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, windowArgs(tg), func(ctx context.Context) error {
		if _, err := t.run(ctx, tg.WindowTarget(), "select-window", "-t", tg.WindowTarget()); err != nil {
			return err
		}
		t.core.State.SetSession(tg.Session)
		t.core.State.SetWindow(tg.Window)
		return nil
	})
}

// SplitWindow splits the active pane of a window. Unlike SplitPane it does
// not track the new pane.
func (t *Tmux) SplitWindow(ctx context.Context, target model.Target, dir Direction) error {
	const op = "split-window"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	args := append(windowArgs(tg), facade.Args("direction", string(dir))...)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, tg.WindowTarget(), "split-window", dir.splitFlag(), "-t", tg.WindowTarget())
		return err
	})
}

// MoveWindow moves a window to index dst within the same session.
func (t *Tmux) MoveWindow(ctx context.Context, target model.Target, dst string) error {
	const op = "move-window"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	if dst == "" {
		return t.noTarget(op, "destination index")
	}
	dstTarget := model.Target{Session: tg.Session, Window: dst}
	args := append(windowArgs(tg), facade.Args("destination", dst)...)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, tg.WindowTarget(), "move-window", "-s", tg.WindowTarget(), "-t", dstTarget.WindowTarget())
		if err != nil {
			return err
		}
		if t.core.State.ClearWindowIf(tg.Session, tg.Window) {
			t.core.State.SetWindow(dst)
		}
		return nil
	})
}

// LinkWindow links a window into another session.
func (t *Tmux) LinkWindow(ctx context.Context, target model.Target, dstSession string) error {
	const op = "link-window"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	if dstSession == "" {
		return t.noTarget(op, "destination session")
	}
	args := append(windowArgs(tg), facade.Args("destination", dstSession)...)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		_, err := t.run(ctx, tg.WindowTarget(), "link-window", "-s", tg.WindowTarget(), "-t", dstSession)
		return err
	})
}

func (t *Tmux) UnlinkWindow(ctx context.Context, target model.Target) error {
	const op = "unlink-window"
	tg, err := t.resolve(op, target, "session", "window")
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, windowArgs(tg), func(ctx context.Context) error {
		_, err := t.run(ctx, tg.WindowTarget(), "unlink-window", "-t", tg.WindowTarget())
		return err
	})
}
