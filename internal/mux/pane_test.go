package mux

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
)

func TestCreateWindow_SetsCurrent(t *testing.T) {
	tm, runner := newTestTmux(t)
	tm.core.State.SetSession("dev")
	runner.On("tmux new-window -t dev -n logs -P -F #{window_index}", "2\n")

	idx, err := tm.CreateWindow(context.Background(), "", "logs")
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	if idx != "2" {
		t.Errorf("index = %q, want 2", idx)
	}
	cur := tm.Current()
	if cur.Session != "dev" || cur.Window != "2" {
		t.Errorf("current = %+v", cur)
	}
}

func TestKillWindow_ClearsCurrent(t *testing.T) {
	tm, runner := newTestTmux(t)
	tm.core.State.Select(model.Target{Session: "dev", Window: "0"})

	if err := tm.KillWindow(context.Background(), model.Target{}); err != nil {
		t.Fatalf("KillWindow: %v", err)
	}
	if runner.Count("tmux kill-window -t dev:0") != 1 {
		t.Errorf("commands = %q", runner.Lines())
	}
	if got := tm.Current().Window; got != "" {
		t.Errorf("current window = %q, want empty", got)
	}
}

func TestKill_SameIndexElsewhereKeepsCurrent(t *testing.T) {
	current := model.Target{Session: "dev", Window: "0", Pane: "1"}
	tests := []struct {
		name string
		call func(tm *Tmux) error
		want string
	}{
		{
			name: "window of another session",
			call: func(tm *Tmux) error { return tm.KillWindow(context.Background(), model.Target{Session: "ops"}) },
			want: "tmux kill-window -t ops:0",
		},
		{
			name: "pane of another window",
			call: func(tm *Tmux) error { return tm.KillPane(context.Background(), model.Target{Window: "3"}) },
			want: "tmux kill-pane -t dev:3.1",
		},
		{
			name: "moved window of another session",
			call: func(tm *Tmux) error { return tm.MoveWindow(context.Background(), model.Target{Session: "ops"}, "4") },
			want: "tmux move-window -s ops:0 -t ops:4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, runner := newTestTmux(t)
			tm.core.State.Select(current)
			if err := tt.call(tm); err != nil {
				t.Fatalf("call: %v", err)
			}
			if runner.Count(tt.want) != 1 {
				t.Errorf("commands = %q, want %q", runner.Lines(), tt.want)
			}
			if got := tm.Current(); got != current {
				t.Errorf("current = %+v, want %+v unchanged", got, current)
			}
		})
	}
}

func TestSplitPane_SetsCurrentPaneID(t *testing.T) {
	tm, runner := newTestTmux(t)
	tm.core.State.Select(model.Target{Session: "dev", Window: "1"})
	runner.On("tmux split-window -h -t dev:1 -P -F #{pane_id}", "%7\n")

	id, err := tm.SplitPane(context.Background(), model.Target{}, Horizontal)
	if err != nil {
		t.Fatalf("SplitPane: %v", err)
	}
	if id != "%7" || tm.Current().Pane != "%7" {
		t.Errorf("id = %q, current pane = %q; want %%7", id, tm.Current().Pane)
	}

	// The tracked pane id is usable as a default target.
	if err := tm.SendKeys(context.Background(), model.Target{}, "echo hi"); err != nil {
		t.Fatalf("SendKeys: %v", err)
	}
	if runner.Count("tmux send-keys -t %7 echo hi C-m") != 1 {
		t.Errorf("commands = %q", runner.Lines())
	}
}

func TestSplitPane_NoIDIsParseError(t *testing.T) {
	tm, _ := newTestTmux(t)
	_, err := tm.SplitPane(context.Background(), model.Target{Session: "s", Window: "0"}, Vertical)
	if !errors.Is(err, facade.ErrParse) {
		t.Errorf("err = %v, want parse error", err)
	}
	if tm.Current().Pane != "" {
		t.Error("current pane set despite failure")
	}
}

func TestKillPane(t *testing.T) {
	tm, runner := newTestTmux(t)
	tm.core.State.Select(model.Target{Session: "dev", Window: "0", Pane: "1"})

	if err := tm.KillPane(context.Background(), model.Target{}); err != nil {
		t.Fatalf("KillPane: %v", err)
	}
	if runner.Count("tmux kill-pane -t dev:0.1") != 1 {
		t.Errorf("commands = %q", runner.Lines())
	}
	if tm.Current().Pane != "" {
		t.Errorf("current pane = %q, want empty", tm.Current().Pane)
	}

	if err := tm.KillPane(context.Background(), model.Target{}); !errors.Is(err, facade.ErrNoTarget) {
		t.Errorf("second KillPane err = %v, want no target", err)
	}
}

func TestCapturePane_Verbatim(t *testing.T) {
	tm, runner := newTestTmux(t)
	content := "  $ ls\nfile1  file2\n\n\n"
	runner.On("tmux capture-pane -p -t dev:0.0", content)

	got, err := tm.CapturePane(context.Background(), model.Target{Session: "dev", Window: "0", Pane: "0"})
	if err != nil {
		t.Fatalf("CapturePane: %v", err)
	}
	if got != content {
		t.Errorf("CapturePane = %q, want %q", got, content)
	}
}

func TestCapturePane_FailureIsEmpty(t *testing.T) {
	tm, runner := newTestTmux(t)
	runner.FailKind("tmux capture-pane -p -t dev:0.9", facade.KindNotFound, "can't find pane: 9")

	got, err := tm.CapturePane(context.Background(), model.Target{Session: "dev", Window: "0", Pane: "9"})
	if got != "" || !errors.Is(err, facade.ErrNotFound) {
		t.Errorf("CapturePane = %q, %v; want empty, not found", got, err)
	}
}

func TestPaneCommands(t *testing.T) {
	tg := model.Target{Session: "s", Window: "1", Pane: "2"}
	tests := []struct {
		name string
		call func(*Tmux) error
		want string
	}{
		{
			name: "select",
			call: func(tm *Tmux) error { return tm.SelectPane(context.Background(), tg) },
			want: "tmux select-pane -t s:1.2",
		},
		{
			name: "resize horizontal",
			call: func(tm *Tmux) error { return tm.ResizePane(context.Background(), tg, 40, Horizontal) },
			want: "tmux resize-pane -t s:1.2 -x 40",
		},
		{
			name: "resize vertical",
			call: func(tm *Tmux) error { return tm.ResizePane(context.Background(), tg, 10, Vertical) },
			want: "tmux resize-pane -t s:1.2 -y 10",
		},
		{
			name: "move",
			call: func(tm *Tmux) error { return tm.MovePane(context.Background(), tg, "3") },
			want: "tmux move-pane -s s:1.2 -t s:3",
		},
		{
			name: "swap",
			call: func(tm *Tmux) error {
				return tm.SwapPanes(context.Background(), tg, model.Target{Session: "s", Window: "1", Pane: "0"})
			},
			want: "tmux swap-pane -s s:1.2 -t s:1.0",
		},
		{
			name: "sync on",
			call: func(tm *Tmux) error { return tm.SyncPanes(context.Background(), tg, true) },
			want: "tmux setw -t s:1 synchronize-panes on",
		},
		{
			name: "sync off",
			call: func(tm *Tmux) error { return tm.SyncPanes(context.Background(), tg, false) },
			want: "tmux setw -t s:1 synchronize-panes off",
		},
		{
			name: "split window",
			call: func(tm *Tmux) error { return tm.SplitWindow(context.Background(), tg, Vertical) },
			want: "tmux split-window -v -t s:1",
		},
		{
			name: "move window",
			call: func(tm *Tmux) error { return tm.MoveWindow(context.Background(), tg, "5") },
			want: "tmux move-window -s s:1 -t s:5",
		},
		{
			name: "link window",
			call: func(tm *Tmux) error { return tm.LinkWindow(context.Background(), tg, "other") },
			want: "tmux link-window -s s:1 -t other",
		},
		{
			name: "unlink window",
			call: func(tm *Tmux) error { return tm.UnlinkWindow(context.Background(), tg) },
			want: "tmux unlink-window -t s:1",
		},
		{
			name: "rename window",
			call: func(tm *Tmux) error { return tm.RenameWindow(context.Background(), tg, "editor") },
			want: "tmux rename-window -t s:1 editor",
		},
		{
			name: "select window",
			call: func(tm *Tmux) error { return tm.SelectWindow(context.Background(), tg) },
			want: "tmux select-window -t s:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, runner := newTestTmux(t)
			if err := tt.call(tm); err != nil {
				t.Fatalf("call: %v", err)
			}
			lines := runner.Lines()
			if len(lines) != 1 || lines[0] != tt.want {
				t.Errorf("commands = %q, want [%q]", lines, tt.want)
			}
		})
	}
}

func TestSelectPane_SetsCurrent(t *testing.T) {
	tm, _ := newTestTmux(t)
	tg := model.Target{Session: "s", Window: "1", Pane: "2"}
	if err := tm.SelectPane(context.Background(), tg); err != nil {
		t.Fatalf("SelectPane: %v", err)
	}
	if got := tm.Current(); got != tg {
		t.Errorf("current = %+v, want %+v", got, tg)
	}
}

func TestResizePane_RejectsNonPositive(t *testing.T) {
	tm, runner := newTestTmux(t)
	err := tm.ResizePane(context.Background(), model.Target{Session: "s", Window: "0", Pane: "0"}, 0, Horizontal)
	if err == nil {
		t.Fatal("expected error for size 0")
	}
	if len(runner.Calls()) != 0 {
		t.Errorf("tmux invoked: %q", runner.Lines())
	}
}

func TestFindPane(t *testing.T) {
	tm, runner := newTestTmux(t)
	runner.On("tmux list-windows -t dev -F #I", "0\n1\n")
	runner.On("tmux list-panes -t dev:0 -F #P", "0\n")
	runner.On("tmux list-panes -t dev:1 -F #P", "0\n1\n")
	runner.On("tmux capture-pane -p -t dev:0.0", "vim\n")
	runner.FailKind("tmux capture-pane -p -t dev:1.0", facade.KindNotFound, "can't find pane: 0")
	runner.On("tmux capture-pane -p -t dev:1.1", "$ make test\nPASS\n")

	got, ok, err := tm.FindPane(context.Background(), "dev", "PASS")
	if err != nil || !ok {
		t.Fatalf("FindPane = %+v, %v, %v", got, ok, err)
	}
	want := model.Target{Session: "dev", Window: "1", Pane: "1"}
	if got != want {
		t.Errorf("FindPane = %+v, want %+v", got, want)
	}

	_, ok, err = tm.FindPane(context.Background(), "dev", "nowhere")
	if ok || err != nil {
		t.Errorf("FindPane(nowhere) = %v, %v; want false, nil", ok, err)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"h": Horizontal, "horizontal": Horizontal, "v": Vertical, "": Horizontal} {
		if got, ok := ParseDirection(in); !ok || got != want {
			t.Errorf("ParseDirection(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseDirection("diagonal"); ok {
		t.Error("ParseDirection(diagonal) should fail")
	}
	if !strings.HasPrefix(Horizontal.splitFlag(), "-h") {
		t.Error("horizontal split flag")
	}
}
