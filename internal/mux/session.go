package mux

import (
	"context"
	"errors"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

// CreateSession starts a detached session and makes it current.
func (t *Tmux) CreateSession(ctx context.Context, name string) error {
	const op = "create-session"
	if name == "" {
		return t.noTarget(op, "session")
	}
	return facade.Exec(ctx, t.core, op, facade.Args("session", name), func(ctx context.Context) error {
		if _, err := t.run(ctx, name, "new-session", "-d", "-s", name); err != nil {
			return err
		}
		t.core.State.SetSession(name)
		return nil
	})
}

// KillSession kills name, or the current session if name is empty.
// The current session is cleared if it was the one killed.
func (t *Tmux) KillSession(ctx context.Context, name string) error {
	const op = "kill-session"
	tg, err := t.resolve(op, model.Target{Session: name}, "session")
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, facade.Args("session", tg.Session), func(ctx context.Context) error {
		if _, err := t.run(ctx, tg.Session, "kill-session", "-t", tg.Session); err != nil {
			return err
		}
		t.core.State.ClearSessionIf(tg.Session)
		return nil
	})
}

// ListSessions returns session names in tmux order.
func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	return facade.Invoke(ctx, t.core, "list-sessions", nil, func(ctx context.Context) ([]string, error) {
		return t.runLines(ctx, "", "list-sessions", "-F", "#S")
	})
}

// AttachSession attaches the caller's terminal to a session and blocks
// until the client detaches.
func (t *Tmux) AttachSession(ctx context.Context, name string) error {
	const op = "attach-session"
	tg, err := t.resolve(op, model.Target{Session: name}, "session")
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, facade.Args("session", tg.Session), func(ctx context.Context) error {
		err := t.core.Runner.RunInteractive(ctx, t.opts.Binary, t.argv("attach-session", "-t", tg.Session)...)
		if err != nil {
			return withTarget(err, tg.Session)
		}
		t.core.State.SetSession(tg.Session)
		return nil
	})
}

// RenameSession renames oldName (or the current session) to newName.
func (t *Tmux) RenameSession(ctx context.Context, oldName, newName string) error {
	const op = "rename-session"
	tg, err := t.resolve(op, model.Target{Session: oldName}, "session")
	if err != nil {
		return err
	}
	if newName == "" {
		return t.noTarget(op, "new name")
	}
	args := facade.Args("session", tg.Session, "new_name", newName)
	return facade.Exec(ctx, t.core, op, args, func(ctx context.Context) error {
		if _, err := t.run(ctx, tg.Session, "rename-session", "-t", tg.Session, newName); err != nil {
			return err
		}
		t.core.State.RenameSession(tg.Session, newName)
		return nil
	})
}

// SwitchSession switches the attached client to name and makes it current.
func (t *Tmux) SwitchSession(ctx context.Context, name string) error {
	const op = "switch-session"
	if name == "" {
		return t.noTarget(op, "session")
	}
	return facade.Exec(ctx, t.core, op, facade.Args("session", name), func(ctx context.Context) error {
		if _, err := t.run(ctx, name, "switch-client", "-t", name); err != nil {
			return err
		}
		t.core.State.SetSession(name)
		return nil
	})
}

// HasSession reports whether tmux knows the session. A non-zero exit from
// has-session is a "no", not a failure; only timeouts and a missing binary
// are returned as errors.
func (t *Tmux) HasSession(ctx context.Context, name string) (bool, error) {
	const op = "has-session"
	tg, err := t.resolve(op, model.Target{Session: name}, "session")
	if err != nil {
		return false, err
	}
	return facade.Invoke(ctx, t.core, op, facade.Args("session", tg.Session), func(ctx context.Context) (bool, error) {
		_, err := t.run(ctx, tg.Session, "has-session", "-t", tg.Session)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, facade.ErrTimeout), errors.Is(err, facade.ErrNotInstalled):
			return false, err
		default:
			return false, nil
		}
	})
}

func (t *Tmux) noTarget(op string, missing ...string) error {
	err := facade.NoTarget(op, missing...)
	t.core.Log.Warn("call failed", "op", op, "kind", err.Kind.String(), "error", err)
	return err
}
