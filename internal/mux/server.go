package mux

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

// CheckServer reports whether a tmux server answers on the configured
// socket. "tmux info" exiting 0 means running.
func (t *Tmux) CheckServer(ctx context.Context) (bool, error) {
	return facade.Invoke(ctx, t.core, "check-server", nil, func(ctx context.Context) (bool, error) {
		return t.checkServer(ctx)
	})
}

func (t *Tmux) checkServer(ctx context.Context) (bool, error) {
	_, err := t.run(ctx, "", "info")
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, facade.ErrTimeout), errors.Is(err, facade.ErrNotInstalled):
		return false, err
	default:
		return false, nil
	}
}

// StartServer starts the tmux server if it is not already running and
// records the server info. A fresh server needs a session to stay up, so
// InitSession is created right after start-server.
func (t *Tmux) StartServer(ctx context.Context) (model.ServerInfo, error) {
	running := t.core.State.Server().Running
	if !running {
		var err error
		running, err = t.checkServer(ctx)
		if err != nil {
			t.core.Log.Warn("call failed", "op", "start-server", "error", err)
			return model.ServerInfo{}, err
		}
	}
	if running {
		info := t.serverInfo()
		t.core.State.SetServer(info)
		t.core.Log.Debug("tmux server already running", "socket", info.SocketFile)
		return info, nil
	}

	args := facade.Args("socket", t.SocketPath(), "init_session", t.opts.InitSession)
	return facade.Invoke(ctx, t.core, "start-server", args, func(ctx context.Context) (model.ServerInfo, error) {
		if _, err := t.run(ctx, "", "start-server"); err != nil {
			return model.ServerInfo{}, err
		}
		if _, err := t.run(ctx, t.opts.InitSession, "new-session", "-d", "-s", t.opts.InitSession); err != nil {
			return model.ServerInfo{}, err
		}
		info := t.serverInfo()
		t.core.State.SetServer(info)
		return info, nil
	})
}

// StopServer kills the server if it is running and clears the server info.
// It returns false if there was no server to stop.
func (t *Tmux) StopServer(ctx context.Context) (bool, error) {
	running, err := t.checkServer(ctx)
	if err != nil {
		t.core.Log.Warn("call failed", "op", "stop-server", "error", err)
		return false, err
	}
	if !running {
		t.core.State.ClearServer()
		return false, nil
	}
	return facade.Invoke(ctx, t.core, "stop-server", facade.Args("socket", t.SocketPath()), func(ctx context.Context) (bool, error) {
		if _, err := t.run(ctx, "", "kill-server"); err != nil {
			return false, err
		}
		t.core.State.ClearServer()
		return true, nil
	})
}

// ServerInfo returns the last recorded server info.
func (t *Tmux) ServerInfo() model.ServerInfo {
	return t.core.State.Server()
}

func (t *Tmux) serverInfo() model.ServerInfo {
	return model.ServerInfo{
		Running:    true,
		SocketFile: t.SocketPath(),
		CreatedAt:  time.Now(),
	}
}

// SocketPath returns where tmux puts the server socket for this user:
// $TMUX_TMPDIR (default /tmp) / tmux-<uid> / <socket name or "default">.
func (t *Tmux) SocketPath() string {
	dir := os.Getenv("TMUX_TMPDIR")
	if dir == "" {
		dir = "/tmp"
	}
	name := t.opts.SocketName
	if name == "" {
		name = "default"
	}
	return filepath.Join(dir, "tmux-"+strconv.Itoa(os.Getuid()), name)
}
