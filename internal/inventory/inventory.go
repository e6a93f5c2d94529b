// Package inventory keeps a snapshot of tmux sessions, windows, and panes.
//
// A refresh walks the listing calls sequentially: sessions, then the windows
// of each session, then the panes of each window. A listing failure is
// logged and leaves that branch empty; the rest of the pass continues. The
// snapshot is replaced as a whole at the end of a pass and is stale between
// refreshes.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/timvw/panectl/internal/config"
	"github.com/timvw/panectl/internal/model"
	"github.com/timvw/panectl/internal/mux"
	pcotel "github.com/timvw/panectl/internal/otel"
)

// Snapshot is one inventory pass.
type Snapshot struct {
	// Sessions maps position to session name.
	Sessions map[int]string `json:"sessions"`
	// Windows maps session name to (position -> window index).
	Windows map[string]map[int]string `json:"windows"`
	// Panes maps "session:window" to (position -> pane index).
	Panes map[string]map[int]string `json:"panes"`

	RefreshedAt time.Time `json:"refreshed_at"`
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Sessions: map[int]string{},
		Windows:  map[string]map[int]string{},
		Panes:    map[string]map[int]string{},
	}
}

// Inventory owns the latest Snapshot. It is safe for concurrent use.
type Inventory struct {
	lister   mux.Lister
	log      *slog.Logger
	excludes config.ExcludeList
	metrics  *pcotel.Metrics

	mu   sync.RWMutex
	snap Snapshot
}

// New creates an empty inventory. Sessions whose name matches any exclude
// glob are skipped during refresh.
func New(lister mux.Lister, log *slog.Logger, exclude []string) (*Inventory, error) {
	excludes, err := config.CompileExcludeList(exclude)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Inventory{
		lister:   lister,
		log:      log,
		excludes: excludes,
		snap:     emptySnapshot(),
	}, nil
}

// WithMetrics records refresh counts and sizes on m.
func (inv *Inventory) WithMetrics(m *pcotel.Metrics) *Inventory {
	inv.metrics = m
	return inv
}

// Refresh rebuilds the snapshot. It only fails if ctx is done; listing
// failures are logged and leave their branch empty.
func (inv *Inventory) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := emptySnapshot()

	sessions, err := inv.lister.ListSessions(ctx)
	if err != nil {
		inv.log.Warn("inventory: listing sessions failed", "error", err)
	}
	i := 0
	for _, s := range sessions {
		if inv.excludes.Match(s) {
			continue
		}
		next.Sessions[i] = s
		i++
	}

	for _, s := range orderedValues(next.Sessions) {
		if err := ctx.Err(); err != nil {
			return err
		}
		windows, err := inv.lister.ListWindows(ctx, s)
		if err != nil {
			inv.log.Warn("inventory: listing windows failed", "session", s, "error", err)
		}
		next.Windows[s] = indexed(windows)
	}

	for _, s := range orderedValues(next.Sessions) {
		for _, w := range orderedValues(next.Windows[s]) {
			if err := ctx.Err(); err != nil {
				return err
			}
			tg := model.Target{Session: s, Window: w}
			panes, err := inv.lister.ListPanes(ctx, tg)
			if err != nil {
				inv.log.Warn("inventory: listing panes failed", "window", tg.WindowTarget(), "error", err)
			}
			next.Panes[tg.WindowTarget()] = indexed(panes)
		}
	}

	next.RefreshedAt = time.Now()
	inv.mu.Lock()
	inv.snap = next
	inv.mu.Unlock()

	inv.metrics.RecordInventory(ctx, len(next.Sessions))
	inv.log.Debug("inventory refreshed", "sessions", len(next.Sessions))
	return nil
}

// Snapshot returns a deep copy of the latest snapshot.
func (inv *Inventory) Snapshot() Snapshot {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.snap.clone()
}

// Targets flattens the latest snapshot into pane targets, ordered by
// session, window, and pane position.
func (inv *Inventory) Targets() []model.Target {
	return inv.Snapshot().Targets()
}

// Targets flattens s into pane targets in order.
func (s Snapshot) Targets() []model.Target {
	targets := []model.Target{}
	for _, sess := range orderedValues(s.Sessions) {
		for _, w := range orderedValues(s.Windows[sess]) {
			key := model.Target{Session: sess, Window: w}.WindowTarget()
			for _, p := range orderedValues(s.Panes[key]) {
				targets = append(targets, model.Target{Session: sess, Window: w, Pane: p})
			}
		}
	}
	return targets
}

// Counts returns the number of sessions, windows, and panes.
func (s Snapshot) Counts() (sessions, windows, panes int) {
	sessions = len(s.Sessions)
	for _, w := range s.Windows {
		windows += len(w)
	}
	for _, p := range s.Panes {
		panes += len(p)
	}
	return sessions, windows, panes
}

// String summarizes the counts, e.g. "2 sessions, 3 windows, 5 panes".
func (s Snapshot) String() string {
	ns, nw, np := s.Counts()
	return fmt.Sprintf("%d sessions, %d windows, %d panes", ns, nw, np)
}

func (s Snapshot) clone() Snapshot {
	c := Snapshot{
		Sessions:    make(map[int]string, len(s.Sessions)),
		Windows:     make(map[string]map[int]string, len(s.Windows)),
		Panes:       make(map[string]map[int]string, len(s.Panes)),
		RefreshedAt: s.RefreshedAt,
	}
	for k, v := range s.Sessions {
		c.Sessions[k] = v
	}
	for k, v := range s.Windows {
		c.Windows[k] = cloneIndex(v)
	}
	for k, v := range s.Panes {
		c.Panes[k] = cloneIndex(v)
	}
	return c
}

func cloneIndex(m map[int]string) map[int]string {
	c := make(map[int]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func indexed(values []string) map[int]string {
	m := make(map[int]string, len(values))
	for i, v := range values {
		m[i] = v
	}
	return m
}

// orderedValues returns the values of m ordered by key.
func orderedValues(m map[int]string) []string {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return values
}
