package facade

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/timvw/panectl/internal/hooks"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "only newline", in: "\n", want: []string{}},
		{name: "whitespace", in: "  \n\t\n", want: []string{}},
		{name: "single", in: "dev\n", want: []string{"dev"}},
		{name: "multiple", in: "a\nb\nc\n", want: []string{"a", "b", "c"}},
		{name: "crlf", in: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "leading spaces kept", in: "  1 x\n", want: []string{"  1 x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.in)
			if got == nil {
				t.Fatal("SplitLines returned nil, want non-nil slice")
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := &Error{Kind: KindNotFound, Op: "kill-session", Target: "dev", Msg: "can't find session: dev"}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("errors.Is(err, ErrTimeout) = true, want false")
	}
	wrapped := errors.Join(errors.New("other"), err)
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want not_found", KindOf(wrapped))
	}
	if got := err.Error(); got != "kill-session dev: not_found: can't find session: dev" {
		t.Errorf("Error() = %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		stderr string
		want   Kind
	}{
		{"no server running on /tmp/tmux-1000/default", KindServerNotRunning},
		{"error connecting to /tmp/tmux-1000/x (No such file or directory)", KindServerNotRunning},
		{"can't find session: nope", KindNotFound},
		{"can't find window: 9", KindNotFound},
		{"kill: (4242) - No such process", KindNotFound},
		{"unknown option -- z", KindCommandFailed},
		{"", KindCommandFailed},
	}
	for _, tt := range tests {
		if got := classify(tt.stderr); got != tt.want {
			t.Errorf("classify(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := ExecRunner{Timeout: 5 * time.Second}
	_, err := r.Run(context.Background(), "sh", "-c", "echo \"can't find pane: 7\" >&2; exit 3")
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if fe.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", fe.ExitCode)
	}
	if fe.Kind != KindNotFound {
		t.Errorf("Kind = %v, want not_found", fe.Kind)
	}
	if fe.Msg != "can't find pane: 7" {
		t.Errorf("Msg = %q", fe.Msg)
	}
}

func TestExecRunner_Stdout(t *testing.T) {
	r := ExecRunner{}
	out, err := r.Run(context.Background(), "sh", "-c", "printf 'a\\nb\\n'; echo noise >&2")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "a\nb\n" {
		t.Errorf("stdout = %q, want %q", out, "a\nb\n")
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	r := ExecRunner{Timeout: 100 * time.Millisecond}
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep", "5")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Run took %v, expected it to stop near the timeout", elapsed)
	}
}

func TestExecRunner_TimeoutDefaults(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "zero uses default", timeout: 0, want: DefaultTimeout},
		{name: "explicit", timeout: 2 * time.Second, want: 2 * time.Second},
		{name: "negative disables", timeout: -1, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (ExecRunner{Timeout: tt.timeout}).timeout(); got != tt.want {
				t.Errorf("timeout() = %v, want %v", got, tt.want)
			}
		})
	}

	// A disabled timeout leaves the caller's context without a deadline.
	out, err := ExecRunner{Timeout: -1}.Run(context.Background(), "sh", "-c", "echo ok")
	if err != nil || out != "ok\n" {
		t.Errorf("Run with disabled timeout = %q, %v; want %q, nil", out, err, "ok\n")
	}
}

func TestExecRunner_NotInstalled(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "panectl-definitely-not-a-binary")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected not installed, got %v", err)
	}
}

type stubRunner func(name string, args ...string) (string, error)

func (s stubRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	return s(name, args...)
}

func (s stubRunner) RunInteractive(_ context.Context, name string, args ...string) error {
	_, err := s(name, args...)
	return err
}

func TestInvoke_Success(t *testing.T) {
	core := NewCore(nil, nil)
	var events []string
	var ids []string
	_ = core.Hooks.Register(hooks.BeforeCall, func(p hooks.Payload) error {
		events = append(events, "before:"+p.Op)
		ids = append(ids, p.CallID)
		if p.Result != nil {
			t.Errorf("before-call payload has result %v", p.Result)
		}
		return nil
	})
	_ = core.Hooks.Register(hooks.AfterCall, func(p hooks.Payload) error {
		events = append(events, "after:"+p.Op)
		ids = append(ids, p.CallID)
		if got, _ := p.Result.([]string); len(got) != 2 {
			t.Errorf("after-call result = %v", p.Result)
		}
		return nil
	})

	got, err := Invoke(context.Background(), core, "list-sessions", nil, func(context.Context) ([]string, error) {
		events = append(events, "run")
		return []string{"a", "b"}, nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("result = %v", got)
	}
	if strings.Join(events, ",") != "before:list-sessions,run,after:list-sessions" {
		t.Errorf("events = %v", events)
	}
	if len(ids) != 2 || ids[0] == "" || ids[0] != ids[1] {
		t.Errorf("call ids = %v, want one shared non-empty id", ids)
	}
}

func TestInvoke_FailureSkipsAfterAndLogs(t *testing.T) {
	var buf bytes.Buffer
	core := NewCore(stubRunner(func(string, ...string) (string, error) { return "", nil }),
		slog.New(slog.NewTextHandler(&buf, nil)))
	after := 0
	_ = core.Hooks.Register(hooks.AfterCall, func(hooks.Payload) error { after++; return nil })

	got, err := Invoke(context.Background(), core, "kill-session", Args("session", "dev"), func(context.Context) (bool, error) {
		return true, &Error{Kind: KindNotFound, Msg: "can't find session: dev"}
	})

	if got {
		t.Error("failed call should return the zero value")
	}
	var fe *Error
	if !errors.As(err, &fe) || fe.Op != "kill-session" {
		t.Fatalf("expected *Error with op filled in, got %v", err)
	}
	if after != 0 {
		t.Errorf("after-call fired %d times on failure", after)
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "op=kill-session", "session=dev", "kind=not_found"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestInvoke_DoesNotMutateSentinel(t *testing.T) {
	core := NewCore(nil, nil)
	_ = Exec(context.Background(), core, "op", nil, func(context.Context) error { return ErrTimeout })
	if ErrTimeout.Op != "" {
		t.Errorf("sentinel mutated: Op = %q", ErrTimeout.Op)
	}
}

func TestArgs(t *testing.T) {
	got := Args("session", "dev", "window", "0", "dangling")
	if len(got) != 2 || got[1].Name != "window" || got[1].Value != "0" {
		t.Errorf("Args = %+v", got)
	}
}
