package inventory

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/timvw/panectl/internal/facade"
	"github.com/timvw/panectl/internal/model"
	"github.com/timvw/panectl/internal/mux"
	"github.com/timvw/panectl/internal/testutil"
)

func newTestInventory(t *testing.T, exclude ...string) (*Inventory, *testutil.FakeRunner, *mux.Tmux) {
	t.Helper()
	runner := testutil.NewFakeRunner()
	tm := mux.New(facade.NewCore(runner, nil), mux.Options{})
	inv, err := New(tm, nil, exclude)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return inv, runner, tm
}

func scriptTwoSessions(runner *testutil.FakeRunner) {
	runner.On("tmux list-sessions -F #S", "dev\nops\n")
	runner.On("tmux list-windows -t dev -F #I", "0\n1\n")
	runner.On("tmux list-windows -t ops -F #I", "2\n")
	runner.On("tmux list-panes -t dev:0 -F #P", "0\n1\n")
	runner.On("tmux list-panes -t dev:1 -F #P", "0\n")
	runner.On("tmux list-panes -t ops:2 -F #P", "0\n1\n2\n")
}

func TestRefresh_BuildsSnapshot(t *testing.T) {
	inv, runner, _ := newTestInventory(t)
	scriptTwoSessions(runner)

	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := inv.Snapshot()

	if snap.Sessions[0] != "dev" || snap.Sessions[1] != "ops" || len(snap.Sessions) != 2 {
		t.Errorf("Sessions = %v", snap.Sessions)
	}
	if snap.Windows["dev"][1] != "1" || len(snap.Windows["ops"]) != 1 {
		t.Errorf("Windows = %v", snap.Windows)
	}
	if len(snap.Panes["ops:2"]) != 3 || snap.Panes["dev:0"][1] != "1" {
		t.Errorf("Panes = %v", snap.Panes)
	}
	if snap.RefreshedAt.IsZero() {
		t.Error("RefreshedAt not set")
	}
	if got, want := snap.String(), "2 sessions, 3 windows, 6 panes"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRefresh_EmptyServer(t *testing.T) {
	inv, _, _ := newTestInventory(t)

	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := inv.Snapshot()
	if len(snap.Sessions) != 0 || len(snap.Windows) != 0 || len(snap.Panes) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if got := inv.Targets(); got == nil || len(got) != 0 {
		t.Errorf("Targets() = %v, want empty non-nil", got)
	}
}

func TestRefresh_PartialFailureLeavesBranchEmpty(t *testing.T) {
	inv, runner, _ := newTestInventory(t)
	scriptTwoSessions(runner)
	runner.FailKind("tmux list-windows -t dev -F #I", facade.KindNotFound, "can't find session: dev")

	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := inv.Snapshot()

	if len(snap.Sessions) != 2 {
		t.Errorf("Sessions = %v, want both sessions kept", snap.Sessions)
	}
	if w, ok := snap.Windows["dev"]; !ok || len(w) != 0 {
		t.Errorf("Windows[dev] = %v, %v; want present and empty", w, ok)
	}
	if len(snap.Panes["ops:2"]) != 3 {
		t.Errorf("Panes[ops:2] = %v, want refresh to continue past the failure", snap.Panes["ops:2"])
	}
	if runner.Count("tmux list-panes -t dev:0 -F #P") != 0 {
		t.Error("panes listed for a session whose windows failed")
	}
}

func TestRefresh_SessionListingFailure(t *testing.T) {
	inv, runner, _ := newTestInventory(t)
	runner.FailKind("tmux list-sessions -F #S", facade.KindServerNotRunning, "no server running on /tmp/tmux-0/default")

	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if n := len(inv.Snapshot().Sessions); n != 0 {
		t.Errorf("Sessions = %d, want 0", n)
	}
	if len(runner.Calls()) != 1 {
		t.Errorf("expected only the session listing, got %v", runner.Lines())
	}
}

func TestRefresh_ExcludesSessions(t *testing.T) {
	inv, runner, _ := newTestInventory(t, "scratch-*")
	runner.On("tmux list-sessions -F #S", "scratch-1\ndev\nscratch-2\n")
	runner.On("tmux list-windows -t dev -F #I", "0\n")

	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := inv.Snapshot()
	if len(snap.Sessions) != 1 || snap.Sessions[0] != "dev" {
		t.Errorf("Sessions = %v, want only dev at position 0", snap.Sessions)
	}
	if runner.Count("tmux list-windows -t scratch-1 -F #I") != 0 {
		t.Error("excluded session was walked")
	}
}

func TestRefresh_CancelledContext(t *testing.T) {
	inv, runner, _ := newTestInventory(t)
	scriptTwoSessions(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := inv.Refresh(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if n := len(inv.Snapshot().Sessions); n != 0 {
		t.Errorf("snapshot replaced by an aborted pass: %d sessions", n)
	}
}

func TestNew_InvalidExclude(t *testing.T) {
	if _, err := New(nil, nil, []string{"[unterminated"}); err == nil {
		t.Fatal("expected error for invalid glob")
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	inv, runner, _ := newTestInventory(t)
	scriptTwoSessions(runner)
	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := inv.Snapshot()
	snap.Sessions[0] = "mutated"
	snap.Windows["dev"][0] = "99"
	delete(snap.Panes, "ops:2")

	again := inv.Snapshot()
	if again.Sessions[0] != "dev" || again.Windows["dev"][0] != "0" || len(again.Panes["ops:2"]) != 3 {
		t.Errorf("snapshot mutation leaked into inventory: %+v", again)
	}
}

func TestTargets_Ordered(t *testing.T) {
	inv, runner, _ := newTestInventory(t)
	scriptTwoSessions(runner)
	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var got []string
	for _, tg := range inv.Targets() {
		got = append(got, tg.String())
	}
	want := "dev:0.0,dev:0.1,dev:1.0,ops:2.0,ops:2.1,ops:2.2"
	if strings.Join(got, ",") != want {
		t.Errorf("Targets() = %s, want %s", strings.Join(got, ","), want)
	}
}

func TestRender(t *testing.T) {
	inv, runner, _ := newTestInventory(t)
	scriptTwoSessions(runner)
	if err := inv.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var buf bytes.Buffer
	current := model.Target{Session: "ops", Window: "2", Pane: "1"}
	if err := Render(&buf, inv.Snapshot(), current, PlainStyles()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"2 sessions, 3 windows, 6 panes", "dev", "window 1", "* ops", "* window 2", "* pane 1", "pane 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "dev") > strings.Index(out, "ops") {
		t.Errorf("sessions out of order:\n%s", out)
	}
	if strings.Contains(out, "* dev") {
		t.Errorf("non-current session marked:\n%s", out)
	}
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	inv, _, _ := newTestInventory(t)
	if err := Render(&buf, inv.Snapshot(), model.Target{}, PlainStyles()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "0 sessions") {
		t.Errorf("output = %q", buf.String())
	}
}
