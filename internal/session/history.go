package session

import (
	"sync"
	"time"
)

// Entry is one dispatch attempt in the history ledger.
//
// Entries record intent-to-send: they are appended before the underlying
// dispatch settles, so an entry's presence does not imply confirmed delivery.
// Immutable once appended.
type Entry struct {
	// Token is a unique, time-sortable identifier for this dispatch attempt.
	Token string `json:"token"`

	// Value is the trigger code handed to the dispatch engine.
	Value int64 `json:"value"`

	// Label is the caller-supplied description, prefixed with the event path
	// for event-based sends.
	Label string `json:"label"`

	// Timestamp is the wall-clock instant the attempt was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// Ledger is the append-only record of dispatch attempts.
//
// The ledger grows monotonically for the life of the session and is never
// pruned or persisted by the core. Insertion order records temporal order of
// issue, not of network completion.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records one dispatch attempt.
func (l *Ledger) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Snapshot returns a copy of all entries in insertion order. Later appends
// never mutate an already-returned snapshot.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded attempts.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
