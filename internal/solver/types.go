// internal/solver/types.go
//
// Result types shared by the solve loops.
//   - GuessResult: one guess with its feedback, immutable once in a history.
//   - Summary: the terminal result of one attempt.

package solver

import "github.com/rishn/Wordler/internal/game"

// MaxTurns is the guess budget of one attempt.
const MaxTurns = 6

// GuessResult is one step of an attempt.
type GuessResult struct {
	Guess     string       `json:"guess"`
	Pattern   game.Pattern `json:"pattern"`
	Remaining int          `json:"remaining"`          // candidates left after this step
	Degraded  bool         `json:"degraded,omitempty"` // pattern unreadable; never used as evidence
}

// Summary is the immutable outcome of one attempt.
type Summary struct {
	Success bool          `json:"success"`
	Answer  string        `json:"answer,omitempty"`
	Steps   []GuessResult `json:"steps"`
}

// Guesses returns the number of steps taken.
func (s Summary) Guesses() int { return len(s.Steps) }
