// Package state holds the "current" session, window, and pane that façade
// calls fall back to when the caller leaves a position unspecified.
//
// The current values are hints. Nothing here checks that the referenced
// session, window, or pane still exists; callers must expect tmux to report
// a missing target even when the resolver supplied a previously valid value.
package state

import (
	"strings"
	"sync"

	"github.com/timvw/panectl/internal/model"
)

// State is the process-wide selection context plus tmux server metadata.
// It is safe for concurrent use; every read-modify-write happens under mu.
type State struct {
	mu      sync.Mutex
	current model.Target
	server  model.ServerInfo
}

// New returns an empty State.
func New() *State {
	return &State{}
}

// Current returns a copy of the current selection.
func (s *State) Current() model.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Resolve fills every empty position of explicit from the current selection.
// Each position is resolved independently. The result may still have empty
// positions when nothing is selected.
func (s *State) Resolve(explicit model.Target) model.Target {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := explicit
	if resolved.Session == "" {
		resolved.Session = s.current.Session
	}
	if resolved.Window == "" {
		resolved.Window = s.current.Window
	}
	if resolved.Pane == "" {
		resolved.Pane = s.current.Pane
	}
	return resolved
}

func (s *State) SetSession(name string) {
	s.mu.Lock()
	s.current.Session = name
	s.mu.Unlock()
}

func (s *State) SetWindow(index string) {
	s.mu.Lock()
	s.current.Window = index
	s.mu.Unlock()
}

func (s *State) SetPane(pane string) {
	s.mu.Lock()
	s.current.Pane = pane
	s.mu.Unlock()
}

// Select replaces the whole current selection.
func (s *State) Select(t model.Target) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
}

// ClearSessionIf clears the current session if it equals name.
// Returns true if the field was cleared.
func (s *State) ClearSessionIf(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" || s.current.Session != name {
		return false
	}
	s.current.Session = ""
	return true
}

// ClearWindowIf clears the current window if it is window index of session.
// Window indexes repeat across sessions, so both must match.
func (s *State) ClearWindowIf(session, index string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index == "" || s.current.Session != session || s.current.Window != index {
		return false
	}
	s.current.Window = ""
	return true
}

// ClearPaneIf clears the current pane if it is pane. A pane id ("%3") is
// compared on its own; an index-addressed pane must also match the current
// session and window.
func (s *State) ClearPaneIf(pane model.Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pane.Pane == "" || s.current.Pane != pane.Pane {
		return false
	}
	if !strings.HasPrefix(pane.Pane, "%") &&
		(s.current.Session != pane.Session || s.current.Window != pane.Window) {
		return false
	}
	s.current.Pane = ""
	return true
}

// RenameSession moves the current session from oldName to newName if it was
// oldName.
func (s *State) RenameSession(oldName, newName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Session == oldName {
		s.current.Session = newName
	}
}

// Server returns a copy of the server metadata.
func (s *State) Server() model.ServerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server
}

func (s *State) SetServer(info model.ServerInfo) {
	s.mu.Lock()
	s.server = info
	s.mu.Unlock()
}

// ClearServer resets the server metadata to "not running".
func (s *State) ClearServer() {
	s.mu.Lock()
	s.server = model.ServerInfo{}
	s.mu.Unlock()
}
