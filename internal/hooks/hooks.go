// Package hooks dispatches the two façade call events, "before-call" and
// "after-call", to registered callbacks.
//
// Callbacks run synchronously in registration order on the caller's
// goroutine. A callback that returns an error or panics is logged and
// skipped; the remaining callbacks still run and the façade call proceeds.
package hooks

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

const (
	BeforeCall = "before-call"
	AfterCall  = "after-call"
)

// ErrUnknownEvent is returned by Register for an event name other than
// BeforeCall or AfterCall.
var ErrUnknownEvent = errors.New("unknown hook event")

// Arg is one named argument of a façade call, rendered as a string.
type Arg struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payload describes one façade call. Result is only set for AfterCall.
type Payload struct {
	CallID string `json:"call_id"`
	Event  string `json:"event"`
	Op     string `json:"op"`
	Args   []Arg  `json:"args,omitempty"`
	Result any    `json:"result,omitempty"`
}

// ArgValue returns the value of the named argument, or "".
func (p Payload) ArgValue(name string) string {
	for _, a := range p.Args {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// LogAttrs returns the payload's op and args as slog attributes.
func (p Payload) LogAttrs() []any {
	attrs := make([]any, 0, 2+len(p.Args))
	attrs = append(attrs, "op", p.Op, "call_id", p.CallID)
	for _, a := range p.Args {
		attrs = append(attrs, a.Name, a.Value)
	}
	return attrs
}

// Hook is a callback for one event.
type Hook func(Payload) error

// Dispatcher maps each event to an ordered list of hooks.
type Dispatcher struct {
	mu       sync.RWMutex
	table    map[string][]Hook
	disabled bool
	log      *slog.Logger
}

// NewDispatcher returns an enabled dispatcher with an empty table.
// A nil logger discards hook failures.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		table: map[string][]Hook{
			BeforeCall: nil,
			AfterCall:  nil,
		},
		log: log,
	}
}

// Register appends h to the hooks for event.
func (d *Dispatcher) Register(event string, h Hook) error {
	if h == nil {
		return fmt.Errorf("register %s: nil hook", event)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.table[event]; !ok {
		return fmt.Errorf("register %q: %w", event, ErrUnknownEvent)
	}
	d.table[event] = append(d.table[event], h)
	return nil
}

// Dispatch invokes every hook registered for event with payload.
// It is a no-op when the dispatcher is disabled or the event is unknown.
func (d *Dispatcher) Dispatch(event string, payload Payload) {
	d.mu.RLock()
	if d.disabled {
		d.mu.RUnlock()
		return
	}
	registered, ok := d.table[event]
	hs := make([]Hook, len(registered))
	copy(hs, registered)
	d.mu.RUnlock()

	if !ok {
		return
	}

	payload.Event = event
	for i, h := range hs {
		if err := safeCall(h, payload); err != nil {
			d.log.Warn("hook failed",
				"event", event,
				"op", payload.Op,
				"hook", i,
				"error", err)
		}
	}
}

// Enable turns dispatching on. The dispatcher starts enabled.
func (d *Dispatcher) Enable() {
	d.mu.Lock()
	d.disabled = false
	d.mu.Unlock()
}

// Disable turns dispatching off without touching registrations.
func (d *Dispatcher) Disable() {
	d.mu.Lock()
	d.disabled = true
	d.mu.Unlock()
}

func (d *Dispatcher) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return !d.disabled
}

// Len returns the number of hooks registered for event.
func (d *Dispatcher) Len(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.table[event])
}

func safeCall(h Hook, p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return h(p)
}
