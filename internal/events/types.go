// Package events keeps the most recent successful façade call per target,
// fed by an after-call hook. The browser uses it to show what was last done
// to each pane.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/timvw/panectl/internal/hooks"
	"github.com/timvw/panectl/internal/model"
)

// Event is one completed call that addressed a session, window, or pane.
type Event struct {
	Op     string    `json:"op"`
	CallID string    `json:"call_id"`
	Target string    `json:"target"`
	TS     time.Time `json:"ts"`
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Op) == "" {
		return fmt.Errorf("op is required")
	}
	if strings.TrimSpace(e.Target) == "" {
		return fmt.Errorf("target is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

// FromPayload builds an Event from the session, window, and pane arguments
// of p. It returns false for calls that address nothing, such as listings
// of sessions or the process table.
func FromPayload(p hooks.Payload, now time.Time) (Event, bool) {
	t := model.Target{
		Session: p.ArgValue("session"),
		Window:  p.ArgValue("window"),
		Pane:    p.ArgValue("pane"),
	}
	target := targetKey(t)
	if target == "" {
		return Event{}, false
	}
	return Event{Op: p.Op, CallID: p.CallID, Target: target, TS: now}, true
}

// targetKey renders the most specific form of t that is set.
func targetKey(t model.Target) string {
	switch {
	case strings.HasPrefix(t.Pane, "%"):
		return t.Pane
	case t.Session == "":
		return ""
	case t.Window == "":
		return t.Session
	case t.Pane == "":
		return t.WindowTarget()
	default:
		return t.String()
	}
}
