// Package session holds the per-process perception cache and the in-memory
// action journal the circuit breaker and label-learning hooks consult on
// every request. Both are process-lifetime state, rebuilt fresh on restart
// (the durable history lives in internal/store).
package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/config"
)

const cacheCapacity = 10

const journalCapacity = 50

// JournalEntry is one in-memory action record, mirroring the fields the
// circuit breaker and fail/success label correlation need without a round
// trip to the database.
type JournalEntry struct {
	App     string
	Verb    string
	Target  string
	Success bool
	Method  string
	At      time.Time
}

type cacheKey struct {
	pid         int
	maxElements int
}

type cacheEntry struct {
	elements []capability.Element
	expires  time.Time
	dirty    bool
}

// Session is the process-lifetime perception cache plus action journal.
type Session struct {
	mu       sync.Mutex
	ttl      time.Duration
	cache    map[cacheKey]*list.Element // -> *cacheListEntry
	order    *list.List
	journal  []JournalEntry
	journalI int
	started  time.Time
}

type cacheListEntry struct {
	key   cacheKey
	entry cacheEntry
}

// New creates a Session using cfg's configured cache TTL.
func New(cfg config.Config) *Session {
	return &Session{
		ttl:     cfg.CacheTTL(),
		cache:   make(map[cacheKey]*list.Element),
		order:   list.New(),
		journal: make([]JournalEntry, 0, journalCapacity),
		started: time.Now(),
	}
}

// SpatialGet returns the cached element list for pid/maxElements if it's
// present, unexpired, and not marked dirty.
func (s *Session) SpatialGet(pid, maxElements int) ([]capability.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cacheKey{pid, maxElements}
	le, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	ce := le.Value.(*cacheListEntry).entry
	if ce.dirty || time.Now().After(ce.expires) {
		s.order.Remove(le)
		delete(s.cache, key)
		return nil, false
	}
	s.order.MoveToFront(le)
	return ce.elements, true
}

// SpatialPut stores an element list for pid/maxElements, evicting the
// least-recently-used entry if the cache is at capacity.
func (s *Session) SpatialPut(pid, maxElements int, elements []capability.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cacheKey{pid, maxElements}
	if le, ok := s.cache[key]; ok {
		s.order.Remove(le)
		delete(s.cache, key)
	}

	entry := &cacheListEntry{key: key, entry: cacheEntry{
		elements: elements,
		expires:  time.Now().Add(s.ttl),
	}}
	le := s.order.PushFront(entry)
	s.cache[key] = le

	for s.order.Len() > cacheCapacity {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.cache, oldest.Value.(*cacheListEntry).key)
	}
}

// Invalidate marks every cached entry for pid dirty, forcing the next
// SpatialGet to miss. Called after any action that might change the UI.
func (s *Session) Invalidate(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, le := range s.cache {
		if k.pid == pid {
			ce := le.Value.(*cacheListEntry)
			ce.entry.dirty = true
		}
	}
}

// JournalAppend records one action outcome in the ring buffer.
func (s *Session) JournalAppend(e JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if len(s.journal) < journalCapacity {
		s.journal = append(s.journal, e)
		return
	}
	s.journal[s.journalI] = e
	s.journalI = (s.journalI + 1) % journalCapacity
}

// JournalRecentForApp walks the journal backwards (most recent first) and
// returns up to n entries for the given app.
func (s *Session) JournalRecentForApp(app string, n int) []JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.journal)
	out := make([]JournalEntry, 0, n)
	for i := 0; i < total && len(out) < n; i++ {
		idx := (s.journalI - 1 - i + total) % total
		e := s.journal[idx]
		if e.App == app {
			out = append(out, e)
		}
	}
	return out
}

// JournalRecent returns the last n journal entries across every app, most
// recent first, with no app filtering — used by the circuit breaker, which
// takes the app from the newest entry and skips entries from other apps.
func (s *Session) JournalRecent(n int) []JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.journal)
	if n > total {
		n = total
	}
	out := make([]JournalEntry, 0, n)
	for i := 0; i < n; i++ {
		idx := (s.journalI - 1 - i + total) % total
		out = append(out, s.journal[idx])
	}
	return out
}

// Uptime reports how long this Session has been alive.
func (s *Session) Uptime() time.Duration {
	return time.Since(s.started)
}
