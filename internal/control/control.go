// Package control maintains the shared state file an external HUD polls to
// show what this process is doing right now. Writes are atomic
// (tmp-file-then-rename) and rate-limited except at action boundaries,
// where a flush is always forced.
package control

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/logging"
)

const (
	minFlushInterval = 200 * time.Millisecond
	logCapacity      = 30
)

// LogEntry is one completed action in the rolling log the HUD displays.
type LogEntry struct {
	App     string    `json:"app"`
	Verb    string    `json:"verb"`
	Success bool      `json:"success"`
	At      time.Time `json:"at"`
}

// state is the JSON document written to disk.
type state struct {
	Paused    bool       `json:"paused"`
	Current   string     `json:"current,omitempty"`
	Hint      string     `json:"hint,omitempty"`
	Log       []LogEntry `json:"log"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Channel is the control-channel writer.
type Channel struct {
	path string

	mu         sync.Mutex
	st         state
	lastFlush  time.Time
}

// New creates a Channel writing to path. The file is not created until the
// first Emit or action boundary.
func New(path string) *Channel {
	return &Channel{path: path}
}

// Close flushes any pending state before the process exits.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked(true)
}

// SetPaused updates the paused flag and force-flushes.
func (c *Channel) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Paused = paused
	c.flushLocked(true)
}

// Paused reports the last-known paused flag.
func (c *Channel) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Paused
}

// StartAction records that app/verb is now running and force-flushes, since
// an action boundary always bypasses the rate limiter.
func (c *Channel) StartAction(app, verb string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Current = app + " " + verb
	c.flushLocked(true)
}

// EndAction records the outcome of the action started by StartAction,
// appends it to the rolling log (capped at 30 entries), and force-flushes.
func (c *Channel) EndAction(app, verb string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Current = ""
	c.st.Log = append(c.st.Log, LogEntry{App: app, Verb: verb, Success: success, At: time.Now()})
	if len(c.st.Log) > logCapacity {
		c.st.Log = c.st.Log[len(c.st.Log)-logCapacity:]
	}
	c.flushLocked(true)
}

// SetHint stores a one-shot hint (e.g. a skill suggestion after an error)
// for the HUD to surface, and force-flushes.
func (c *Channel) SetHint(hint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Hint = hint
	c.flushLocked(true)
}

// ReadAndClearHint returns the current hint and clears it, so it is only
// ever surfaced once.
func (c *Channel) ReadAndClearHint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.st.Hint
	c.st.Hint = ""
	c.flushLocked(true)
	return h
}

// Emit is the non-boundary write path: it's rate-limited to at most one
// flush per 200ms so high-frequency perception updates don't thrash the
// disk.
func (c *Channel) Emit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked(false)
}

// ClearState resets to a fresh empty state and force-flushes.
func (c *Channel) ClearState() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st = state{}
	c.flushLocked(true)
}

func (c *Channel) flushLocked(force bool) {
	now := time.Now()
	if !force && now.Sub(c.lastFlush) < minFlushInterval {
		return
	}
	c.lastFlush = now
	c.st.UpdatedAt = now

	data, err := json.MarshalIndent(c.st, "", "  ")
	if err != nil {
		logging.Errorf("control: marshal state: %v", err)
		return
	}

	dir := filepath.Dir(c.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Errorf("control: mkdir: %v", err)
			return
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logging.Errorf("control: write temp state: %v", err)
		return
	}
	if err := os.Rename(tmp, c.path); err != nil {
		logging.Errorf("control: rename state: %v", err)
	}
}
