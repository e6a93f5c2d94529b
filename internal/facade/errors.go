package facade

import (
	"errors"
	"strings"
)

// Kind classifies a façade failure.
type Kind int

const (
	KindCommandFailed Kind = iota + 1
	KindTimeout
	KindNotFound
	KindServerNotRunning
	KindParse
	KindNoTarget
	KindIO
	KindNotInstalled
)

func (k Kind) String() string {
	switch k {
	case KindCommandFailed:
		return "command_failed"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	case KindServerNotRunning:
		return "server_not_running"
	case KindParse:
		return "parse"
	case KindNoTarget:
		return "no_target"
	case KindIO:
		return "io"
	case KindNotInstalled:
		return "not_installed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrCommandFailed    = &Error{Kind: KindCommandFailed}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrServerNotRunning = &Error{Kind: KindServerNotRunning}
	ErrParse            = &Error{Kind: KindParse}
	ErrNoTarget         = &Error{Kind: KindNoTarget}
	ErrIO               = &Error{Kind: KindIO}
	ErrNotInstalled     = &Error{Kind: KindNotInstalled}
)

// Error is the failure type of every façade operation.
type Error struct {
	Kind   Kind
	Op     string // façade operation, e.g. "kill-session"
	Target string // resolved target, if any
	Msg    string // tool stderr or a short description
	Err    error  // underlying error, if any

	// ExitCode is the tool's exit status, or -1 if it did not exit normally.
	ExitCode int
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Target != "" {
			b.WriteString(" ")
			b.WriteString(e.Target)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil && e.Msg == "" {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// NoTarget returns a KindNoTarget error naming the missing positions.
func NoTarget(op string, missing ...string) *Error {
	return &Error{
		Kind: KindNoTarget,
		Op:   op,
		Msg:  "no " + strings.Join(missing, ", ") + " given and none selected",
	}
}

// classify maps tool stderr to a Kind. Unrecognised output is
// KindCommandFailed.
func classify(stderr string) Kind {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "no server running"),
		strings.Contains(s, "error connecting to"):
		return KindServerNotRunning
	case strings.Contains(s, "can't find"),
		strings.Contains(s, "session not found"),
		strings.Contains(s, "window not found"),
		strings.Contains(s, "pane not found"),
		strings.Contains(s, "no such process"),
		strings.Contains(s, "no such file"):
		return KindNotFound
	default:
		return KindCommandFailed
	}
}
