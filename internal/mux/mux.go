// Package mux is the tmux façade.
//
// Every operation builds a tmux argv, runs it through the shared façade core
// (hooks, tracing, failure reporting), and parses stdout without further
// interpretation. Unspecified session, window, and pane positions are filled
// in from the core's current selection.
package mux

import (
	"context"

	"github.com/timvw/panectl/internal/model"
)

// Lister is the read-only subset of *Tmux used to build inventories.
type Lister interface {
	ListSessions(ctx context.Context) ([]string, error)
	ListWindows(ctx context.Context, session string) ([]string, error)
	ListPanes(ctx context.Context, t model.Target) ([]string, error)
}

// Controller is the subset of *Tmux the interactive browser drives.
type Controller interface {
	Lister
	CapturePane(ctx context.Context, t model.Target) (string, error)
	SendKeys(ctx context.Context, t model.Target, keys string) error
	SelectPane(ctx context.Context, t model.Target) error
	SyncPanes(ctx context.Context, t model.Target, on bool) error
	Current() model.Target
}

var (
	_ Lister     = (*Tmux)(nil)
	_ Controller = (*Tmux)(nil)
)

// Direction selects a split or resize axis.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// ParseDirection accepts "h", "horizontal", "v", and "vertical". An empty
// string is Horizontal, the side-by-side split.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "h", "horizontal", "":
		return Horizontal, true
	case "v", "vertical":
		return Vertical, true
	}
	return "", false
}

// splitFlag returns the tmux split-window flag for d.
func (d Direction) splitFlag() string {
	if d == Horizontal {
		return "-h"
	}
	return "-v"
}
