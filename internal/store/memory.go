// internal/store/memory.go
//
// Attempt history: the Store contract and its in-memory implementation.
//
// Characteristics:
//   - Entries are kept newest-last in a bounded slice; the oldest entry is
//     dropped once the cap is reached.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts. Use the SQLite store for
//     durable history.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rishn/Wordler/internal/solver"
)

// DefaultLimit is the page size of Recent when the caller passes <= 0.
const DefaultLimit = 20

// ErrInvalidEntry is returned for entries without an id or mode.
var ErrInvalidEntry = errors.New("store: entry needs id and mode")

// Entry is one finished attempt.
type Entry struct {
	ID      string         `json:"id"`
	Mode    string         `json:"mode"` // random | simulate | daily | bench | live
	At      time.Time      `json:"at"`
	Summary solver.Summary `json:"summary"`
}

// Stats aggregates every recorded attempt.
type Stats struct {
	Attempts    int         `json:"attempts"`
	Wins        int         `json:"wins"`
	MeanGuesses float64     `json:"meanGuesses"` // over wins only
	Histogram   map[int]int `json:"histogram"`   // guesses taken → wins
}

// Store persists attempt summaries.
// Implementations may be backed by memory (this file) or SQLite.
type Store interface {
	// Record stores a finished attempt.
	Record(ctx context.Context, e Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Stats summarises all entries.
	Stats(ctx context.Context) (Stats, error)
}

// Memory is a bounded in-memory Store.
type Memory struct {
	mu      sync.RWMutex // guards entries
	entries []Entry
	max     int
}

// NewMemory constructs a Memory keeping at most capacity entries (0 = unbounded).
func NewMemory(capacity int) *Memory {
	return &Memory{max: capacity}
}

// Record appends e, evicting the oldest entry when full.
func (m *Memory) Record(ctx context.Context, e Entry) error {
	if e.ID == "" || e.Mode == "" {
		return ErrInvalidEntry
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max > 0 && len(m.entries) == m.max {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, e)
	return nil
}

// Recent returns up to limit entries, newest first.
func (m *Memory) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, min(limit, len(m.entries)))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Stats folds every retained entry.
func (m *Memory) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var acc statsAcc
	for _, e := range m.entries {
		acc.add(e.Summary.Success, e.Summary.Guesses())
	}
	return acc.stats(), nil
}

type statsAcc struct {
	attempts, wins, guesses int
	hist                    map[int]int
}

func (a *statsAcc) add(success bool, guesses int) {
	a.attempts++
	if !success {
		return
	}
	if a.hist == nil {
		a.hist = make(map[int]int)
	}
	a.wins++
	a.guesses += guesses
	a.hist[guesses]++
}

func (a *statsAcc) stats() Stats {
	s := Stats{Attempts: a.attempts, Wins: a.wins, Histogram: a.hist}
	if s.Histogram == nil {
		s.Histogram = map[int]int{}
	}
	if a.wins > 0 {
		s.MeanGuesses = float64(a.guesses) / float64(a.wins)
	}
	return s
}
