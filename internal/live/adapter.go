// internal/live/adapter.go
//
// Contracts between the live orchestrator and whatever renders the puzzle.
//   - Sessions hands out one exclusive Adapter per attempt.
//   - Adapter drives a single puzzle surface: reset, wait, type, read back.
//   - Recorder receives finished summaries.
//
// Adapters must honour the context of every call; the orchestrator bounds
// each call with a timeout and relies on that.

package live

import (
	"context"
	"fmt"

	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/store"
)

// Strategy selects how a pattern is read back from the surface.
type Strategy int

const (
	// Primary is the preferred, most direct read.
	Primary Strategy = iota
	// Secondary is the fallback read.
	Secondary
)

func (s Strategy) String() string {
	switch s {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Submission is the surface's answer to a typed guess.
type Submission struct {
	Accepted bool
	Reason   string // why a guess was refused, e.g. "not in word list"
}

// Extraction is one attempt at reading a row. OK=false means the pattern
// was unavailable with that strategy; it is not an error.
type Extraction struct {
	Pattern game.Pattern
	OK      bool
}

// Adapter drives one puzzle surface. Any returned error is a session fault.
type Adapter interface {
	// Reset puts the surface on a fresh puzzle with no persisted progress.
	Reset(ctx context.Context) error
	// Ready blocks until the board accepts input.
	Ready(ctx context.Context) error
	// SubmitGuess types word and reports whether the surface accepted it.
	SubmitGuess(ctx context.Context, word string) (Submission, error)
	// ReadPattern reads the feedback of row turn (0-based).
	ReadPattern(ctx context.Context, turn int, s Strategy) (Extraction, error)
	// Release frees the session. Called exactly once per acquired adapter.
	Release() error
}

// Sessions produces adapters. Each adapter is used by one attempt only.
type Sessions interface {
	Acquire(ctx context.Context) (Adapter, error)
}

// Recorder persists finished attempts.
type Recorder interface {
	Record(ctx context.Context, e store.Entry) error
}

// SessionFault wraps an adapter failure that ended an attempt.
type SessionFault struct {
	Op  string // acquire | reset | ready | submit | read
	Err error
}

func (f *SessionFault) Error() string {
	return fmt.Sprintf("live session fault during %s: %v", f.Op, f.Err)
}

func (f *SessionFault) Unwrap() error { return f.Err }
