// internal/game/types.go
//
// Core type definitions for feedback patterns and a single puzzle instance.
// Defines:
//   - Mark: per-letter feedback for a guess (correct/present/absent).
//   - Pattern: the five marks of one guess, position-significant.
//   - Game: state for a single in-progress or finished puzzle.

package game

import (
	"fmt"
	"strings"
)

// Mark represents the evaluation result for a single letter in a guess.
//   - "correct": letter is in the answer at this position.
//   - "present": letter is in the answer elsewhere (multiset accounting).
//   - "absent":  no unconsumed occurrence of the letter remains.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// Valid reports whether m is one of the three marks.
func (m Mark) Valid() bool {
	return m == MarkCorrect || m == MarkPresent || m == MarkAbsent
}

// Pattern is the feedback for one five-letter guess. Arrays compare with ==,
// which makes patterns usable as map keys when partitioning candidates.
type Pattern [5]Mark

// AllAbsent is the pattern of a guess sharing no letter with the target.
var AllAbsent = Pattern{MarkAbsent, MarkAbsent, MarkAbsent, MarkAbsent, MarkAbsent}

// Solved reports whether every slot is correct.
func (p Pattern) Solved() bool {
	for _, m := range p {
		if m != MarkCorrect {
			return false
		}
	}
	return true
}

// Valid reports whether every slot holds a known mark.
func (p Pattern) Valid() bool {
	for _, m := range p {
		if !m.Valid() {
			return false
		}
	}
	return true
}

// String renders the pattern in the compact G/Y/. form used in logs.
func (p Pattern) String() string {
	var b strings.Builder
	for _, m := range p {
		switch m {
		case MarkCorrect:
			b.WriteByte('G')
		case MarkPresent:
			b.WriteByte('Y')
		case MarkAbsent:
			b.WriteByte('.')
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// ParsePattern reads the compact form produced by String. 'g'/'y'/'.' and
// '2'/'1'/'0' are accepted too.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	if len(s) != len(p) {
		return p, fmt.Errorf("pattern %q: must be %d marks", s, len(p))
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'G', 'g', '2':
			p[i] = MarkCorrect
		case 'Y', 'y', '1':
			p[i] = MarkPresent
		case '.', 'B', 'b', 'X', 'x', '0', '-':
			p[i] = MarkAbsent
		default:
			return p, fmt.Errorf("pattern %q: bad mark %q", s, s[i])
		}
	}
	return p, nil
}

// Game holds the state of a single puzzle instance.
type Game struct {
	ID       string    // Unique game identifier (random hex string).
	Answer   string    // The solution word (always lowercase).
	Rows     int       // Maximum number of guesses allowed (typically 6).
	Cols     int       // Number of letters per word (typically 5).
	Guesses  []string  // List of accepted guesses (lowercased).
	Marks    []Pattern // Feedback for each accepted guess, same order as Guesses.
	Finished bool      // True once the game is over (won or lost).
	Won      bool      // True if the game was finished with a win.
}
