// Package facade holds the plumbing shared by the tmux and reptyr façades:
// command execution, the typed error, and Invoke, which wraps every
// operation with hooks, tracing, metrics, and failure reporting.
package facade

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/panectl/internal/hooks"
	pcotel "github.com/timvw/panectl/internal/otel"
	"github.com/timvw/panectl/internal/state"
)

// Core is the per-process context shared by every façade.
type Core struct {
	Runner  Runner
	Hooks   *hooks.Dispatcher
	State   *state.State
	Log     *slog.Logger
	Tracer  trace.Tracer    // nil uses the global tracer
	Metrics *pcotel.Metrics // nil-safe
}

// NewCore returns a Core with fresh state and an empty, enabled dispatcher.
func NewCore(r Runner, log *slog.Logger) *Core {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Core{
		Runner: r,
		Hooks:  hooks.NewDispatcher(log),
		State:  state.New(),
		Log:    log,
	}
}

func (c *Core) tracer() trace.Tracer {
	if c.Tracer != nil {
		return c.Tracer
	}
	return otel.Tracer("panectl")
}

// Args builds a hook argument list from alternating name/value pairs.
func Args(kv ...string) []hooks.Arg {
	args := make([]hooks.Arg, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		args = append(args, hooks.Arg{Name: kv[i], Value: kv[i+1]})
	}
	return args
}

// Invoke runs fn as the façade operation op.
//
// It dispatches before-call, runs fn inside a span, and dispatches after-call
// with the result only if fn succeeded. On failure the error is logged at
// WARN with op and args, Op is filled in on any *Error, and the zero value
// of T is returned alongside the error.
func Invoke[T any](ctx context.Context, c *Core, op string, args []hooks.Arg, fn func(context.Context) (T, error)) (T, error) {
	callID := uuid.NewString()
	payload := hooks.Payload{CallID: callID, Op: op, Args: args}
	c.Hooks.Dispatch(hooks.BeforeCall, payload)

	attrs := make([]attribute.KeyValue, 0, len(args)+1)
	attrs = append(attrs, attribute.String("call.id", callID))
	for _, a := range args {
		attrs = append(attrs, attribute.String("arg."+a.Name, a.Value))
	}
	ctx, span := c.tracer().Start(ctx, op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		var fe *Error
		if errors.As(err, &fe) && fe.Op == "" && err == error(fe) {
			named := *fe
			named.Op = op
			err = &named
		}
		kind := KindOf(err)
		kindName := kind.String()
		if kind == 0 {
			kindName = KindCommandFailed.String()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, kindName)
		c.Metrics.RecordCall(ctx, op, elapsed, kindName)

		logAttrs := append(payload.LogAttrs(), "kind", kindName, "error", err)
		c.Log.Warn("call failed", logAttrs...)

		var zero T
		return zero, err
	}

	c.Metrics.RecordCall(ctx, op, elapsed, "")
	payload.Result = result
	c.Hooks.Dispatch(hooks.AfterCall, payload)
	return result, nil
}

// Exec is Invoke for operations with no result.
func Exec(ctx context.Context, c *Core, op string, args []hooks.Arg, fn func(context.Context) error) error {
	_, err := Invoke(ctx, c, op, args, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// SplitLines splits tool output into lines after trimming trailing
// whitespace. Empty output yields an empty, non-nil slice.
func SplitLines(stdout string) []string {
	trimmed := strings.TrimRight(stdout, " \t\r\n")
	if trimmed == "" {
		return []string{}
	}
	lines := strings.Split(trimmed, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
