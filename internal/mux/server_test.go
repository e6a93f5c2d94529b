package mux

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

func TestStartServer_FreshServer(t *testing.T) {
	tm, runner := newTestTmux(t)
	runner.FailKind("tmux info", facade.KindServerNotRunning, "no server running on /tmp/tmux-0/default")

	info, err := tm.StartServer(context.Background())
	if err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	want := []string{"tmux info", "tmux start-server", "tmux new-session -d -s init_session"}
	if strings.Join(runner.Lines(), "|") != strings.Join(want, "|") {
		t.Errorf("commands = %q, want %q", runner.Lines(), want)
	}
	if !info.Running || info.SocketFile == "" || info.CreatedAt.IsZero() {
		t.Errorf("info = %+v", info)
	}
	if got := tm.ServerInfo(); !got.Running {
		t.Errorf("state server info = %+v", got)
	}
}

func TestStartServer_AlreadyRunning(t *testing.T) {
	tm, runner := newTestTmux(t)

	info, err := tm.StartServer(context.Background())
	if err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	if lines := runner.Lines(); len(lines) != 1 || lines[0] != "tmux info" {
		t.Errorf("commands = %q, want only the check", lines)
	}
	if !info.Running {
		t.Errorf("info = %+v", info)
	}

	// Once recorded as running, not even the check runs.
	runner.Reset()
	if _, err := tm.StartServer(context.Background()); err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	if len(runner.Calls()) != 0 {
		t.Errorf("commands = %q, want none", runner.Lines())
	}
}

func TestStopServer(t *testing.T) {
	tm, runner := newTestTmux(t)
	tm.core.State.SetServer(model.ServerInfo{Running: true, SocketFile: "/tmp/x"})

	stopped, err := tm.StopServer(context.Background())
	if err != nil || !stopped {
		t.Fatalf("StopServer = %v, %v", stopped, err)
	}
	if runner.Count("tmux kill-server") != 1 {
		t.Errorf("commands = %q", runner.Lines())
	}
	if tm.ServerInfo().Running {
		t.Error("server info not cleared")
	}
}

func TestStopServer_NotRunning(t *testing.T) {
	tm, runner := newTestTmux(t)
	runner.FailKind("tmux info", facade.KindServerNotRunning, "no server running")

	stopped, err := tm.StopServer(context.Background())
	if err != nil || stopped {
		t.Errorf("StopServer = %v, %v; want false, nil", stopped, err)
	}
	if runner.Count("tmux kill-server") != 0 {
		t.Error("kill-server ran without a server")
	}
}

func TestCheckServer_NotInstalled(t *testing.T) {
	tm, runner := newTestTmux(t)
	runner.FailKind("tmux info", facade.KindNotInstalled, "tmux not found in PATH")

	ok, err := tm.CheckServer(context.Background())
	if ok || !errors.Is(err, facade.ErrNotInstalled) {
		t.Errorf("CheckServer = %v, %v", ok, err)
	}
}

func TestSocketPath(t *testing.T) {
	uid := strconv.Itoa(os.Getuid())

	t.Setenv("TMUX_TMPDIR", "")
	tm, _ := newTestTmux(t)
	if got, want := tm.SocketPath(), filepath.Join("/tmp", "tmux-"+uid, "default"); got != want {
		t.Errorf("SocketPath() = %q, want %q", got, want)
	}

	t.Setenv("TMUX_TMPDIR", "/run/user/x")
	named := New(tm.core, Options{SocketName: "work"})
	if got, want := named.SocketPath(), filepath.Join("/run/user/x", "tmux-"+uid, "work"); got != want {
		t.Errorf("SocketPath() = %q, want %q", got, want)
	}
}

func TestSeedFromEnvironment(t *testing.T) {
	tm, runner := newTestTmux(t)

	t.Setenv("TMUX", "")
	t.Setenv("TMUX_PANE", "")
	if got, err := tm.SeedFromEnvironment(context.Background()); err != nil || !got.IsZero() {
		t.Errorf("outside tmux: %+v, %v", got, err)
	}

	t.Setenv("TMUX", "/tmp/tmux-0/default,1,0")
	t.Setenv("TMUX_PANE", "%4")
	runner.On("tmux display-message -p -t %4 #{session_name}\t#{window_index}\t#{pane_id}", "dev\t2\t%4\n")

	got, err := tm.SeedFromEnvironment(context.Background())
	if err != nil {
		t.Fatalf("SeedFromEnvironment: %v", err)
	}
	want := model.Target{Session: "dev", Window: "2", Pane: "%4"}
	if got != want || tm.Current() != want {
		t.Errorf("seeded %+v, current %+v; want %+v", got, tm.Current(), want)
	}
}
