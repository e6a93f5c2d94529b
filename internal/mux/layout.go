package mux

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

// SaveLayout writes one layout descriptor per window of session to path,
// exactly as tmux prints them.
func (t *Tmux) SaveLayout(ctx context.Context, session, path string) error {
	const op = "save-layout"
	tg, err := t.resolve(op, model.Target{Session: session}, "session")
	if err != nil {
		return err
	}
	return facade.Exec(ctx, t.core, op, facade.Args("session", tg.Session, "path", path), func(ctx context.Context) error {
		out, err := t.run(ctx, tg.Session, "list-windows", "-t", tg.Session, "-F", "#{window_layout}")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return &facade.Error{Kind: facade.KindIO, Target: path, Err: err}
		}
		return nil
	})
}

// RestoreLayout applies line i of the file at path to window i of session.
// It stops at the first select-layout failure and returns how many windows
// were restored.
func (t *Tmux) RestoreLayout(ctx context.Context, session, path string) (int, error) {
	const op = "restore-layout"
	tg, err := t.resolve(op, model.Target{Session: session}, "session")
	if err != nil {
		return 0, err
	}
	return facade.Invoke(ctx, t.core, op, facade.Args("session", tg.Session, "path", path), func(ctx context.Context) (int, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, &facade.Error{Kind: facade.KindIO, Target: path, Err: err}
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			return 0, nil
		}
		restored := 0
		for i, layout := range strings.Split(content, "\n") {
			window := model.Target{Session: tg.Session, Window: strconv.Itoa(i)}
			layout = strings.TrimRight(layout, "\r")
			if _, err := t.run(ctx, window.WindowTarget(), "select-layout", "-t", window.WindowTarget(), layout); err != nil {
				return restored, err
			}
			restored++
		}
		return restored, nil
	})
}
