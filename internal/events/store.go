package events

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/timvw/panectl/internal/hooks"
)

// DefaultTTL is how long an event stays visible.
const DefaultTTL = 3 * time.Minute

type Store struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]Event
	now  func() time.Time
}

// NewStore returns an empty store. A ttl of 0 keeps events forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, data: make(map[string]Event), now: time.Now}
}

// Upsert stores e as the latest event for its target. Events without an
// op, target, or timestamp are rejected.
func (s *Store) Upsert(e Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[e.Target] = e
	return nil
}

// Get returns the latest unexpired event for target.
func (s *Store) Get(target string, now time.Time) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[target]
	if !ok || s.expired(e, now) {
		return Event{}, false
	}
	return e, true
}

// Snapshot drops expired events and returns the rest ordered by target.
func (s *Store) Snapshot(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	for target, e := range s.data {
		if s.expired(e, now) {
			delete(s.data, target)
		}
	}
	result := make([]Event, 0, len(s.data))
	for _, e := range s.data {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Target == result[j].Target {
			return result[i].TS.Before(result[j].TS)
		}
		return result[i].Target < result[j].Target
	})
	return result
}

func (s *Store) expired(e Event, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.TS) > s.ttl
}

// Record registers an after-call hook on d that upserts every call with a
// target into s, except calls whose op is in skip.
func (s *Store) Record(d *hooks.Dispatcher, skip ...string) error {
	ignored := make(map[string]bool, len(skip))
	for _, op := range skip {
		ignored[op] = true
	}
	return d.Register(hooks.AfterCall, func(p hooks.Payload) error {
		if ignored[p.Op] {
			return nil
		}
		e, ok := FromPayload(p, s.now())
		if !ok {
			return nil
		}
		return s.Upsert(e)
	})
}
