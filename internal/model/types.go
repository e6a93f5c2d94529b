package model

import (
	"fmt"
	"strings"
	"time"
)

// Target addresses a tmux session, window, or pane.
// An empty field means "not specified"; the state resolver fills it in
// from the current selection before a command is built.
type Target struct {
	// Session is the session name.
	Session string `json:"session"`
	// Window is the window index as tmux prints it (e.g., "0").
	Window string `json:"window"`
	// Pane is the pane index, or a server-assigned pane id (e.g., "%3").
	Pane string `json:"pane"`
}

// WindowTarget returns "session:window".
func (t Target) WindowTarget() string {
	return t.Session + ":" + t.Window
}

// String returns the fully qualified pane target "session:window.pane".
// Pane ids ("%3") are globally unique in tmux and are returned as-is.
func (t Target) String() string {
	if IsPaneID(t.Pane) {
		return t.Pane
	}
	return t.Session + ":" + t.Window + "." + t.Pane
}

// IsZero reports whether no position is set.
func (t Target) IsZero() bool {
	return t.Session == "" && t.Window == "" && t.Pane == ""
}

// Missing returns the names of the given positions that are empty.
func (t Target) Missing(positions ...string) []string {
	var missing []string
	for _, p := range positions {
		switch p {
		case "session":
			if t.Session == "" {
				missing = append(missing, p)
			}
		case "window":
			if t.Window == "" {
				missing = append(missing, p)
			}
		case "pane":
			if t.Pane == "" {
				missing = append(missing, p)
			}
		}
	}
	return missing
}

// MissingForPane returns the positions a pane-level command still needs.
// A pane id is enough on its own.
func (t Target) MissingForPane() []string {
	if IsPaneID(t.Pane) {
		return nil
	}
	return t.Missing("session", "window", "pane")
}

// IsPaneID reports whether s is a server-assigned pane id such as "%3".
func IsPaneID(s string) bool {
	return strings.HasPrefix(s, "%")
}

// ParseTarget parses "session", "session:window", "session:window.pane",
// or a pane id such as "%3".
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return Target{}, nil
	}
	if IsPaneID(s) {
		return Target{Pane: s}, nil
	}
	colonIdx := strings.LastIndex(s, ":")
	if colonIdx < 0 {
		return Target{Session: s}, nil
	}
	t := Target{Session: s[:colonIdx]}
	if t.Session == "" {
		return Target{}, fmt.Errorf("invalid target %q: empty session", s)
	}
	rest := s[colonIdx+1:]
	if dotIdx := strings.LastIndex(rest, "."); dotIdx >= 0 {
		t.Window = rest[:dotIdx]
		t.Pane = rest[dotIdx+1:]
		if t.Pane == "" {
			return Target{}, fmt.Errorf("invalid target %q: empty pane", s)
		}
	} else {
		t.Window = rest
	}
	if t.Window == "" {
		return Target{}, fmt.Errorf("invalid target %q: empty window", s)
	}
	return t, nil
}

// ServerInfo describes the tmux server as last observed by this process.
type ServerInfo struct {
	Running    bool      `json:"is_running"`
	SocketFile string    `json:"socket_file,omitempty"`
	CreatedAt  time.Time `json:"time_created,omitempty"`
}

// Process is a row of the process table.
type Process struct {
	PID     int    `json:"pid"`
	Command string `json:"command"`
}
