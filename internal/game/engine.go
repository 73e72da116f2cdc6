// internal/game/engine.go
//
// Pattern engine and single-puzzle game engine.
// Responsibilities:
//   - Compare a guess to a target with the two‑pass multiset algorithm.
//   - Check whether a candidate is consistent with an observed pattern.
//   - Create puzzle instances (6x5) and apply guesses with validation against
//     the allowed list, tracking playing → won/lost.
//
// Notes:
//   - Word lists come from a words.Corpus passed in by the caller.
//   - randomID() is a compact hex identifier for correlating puzzle state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/rishn/Wordler/internal/words"
)

const (
	defaultRows = 6
	defaultCols = words.Length
)

var (
	// ErrFinished is returned when guessing on a finished game.
	ErrFinished = errors.New("game finished")
	// ErrNotInList is returned for well-formed guesses that are not allowed.
	ErrNotInList = errors.New("not in word list")
)

// Compare implements the two‑pass scoring algorithm.
//
// Pass 1:
//   - Mark aligned letters Correct.
//   - Count the target letters at the remaining positions.
//
// Pass 2:
//   - Walk the remaining guess letters left to right: Present while the
//     letter's count is > 0 (decrementing it), otherwise Absent.
//
// A repeated guess letter is credited Present only up to the target
// occurrences not consumed by Correct matches, earliest guess positions first.
// Both inputs must be validated words.
func Compare(guess, target string) Pattern {
	var res Pattern
	var counts [26]int

	for i := 0; i < len(res); i++ {
		if guess[i] == target[i] {
			res[i] = MarkCorrect
		} else {
			counts[target[i]-'a']++
		}
	}
	for i := 0; i < len(res); i++ {
		if res[i] == MarkCorrect {
			continue
		}
		j := guess[i] - 'a'
		if counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// Consistent reports whether candidate, had it been the target, would have
// produced exactly pattern for guess.
func Consistent(guess string, pattern Pattern, candidate string) bool {
	return Compare(guess, candidate) == pattern
}

// New constructs a new puzzle instance over corpus c.
// If withAnswer is empty, a random answer is chosen from the corpus.
func New(c *words.Corpus, withAnswer string) (*Game, error) {
	ans := withAnswer
	if ans == "" {
		ans = c.RandomAnswer()
	}
	ans, err := words.Validate(ans)
	if err != nil {
		return nil, err
	}
	return &Game{
		ID:      randomID(),
		Answer:  ans,
		Rows:    defaultRows,
		Cols:    defaultCols,
		Guesses: []string{},
	}, nil
}

// ApplyGuess validates and scores a guess against the allowed list of c,
// mutating the game state. Malformed guesses return a *words.InputError,
// unknown words ErrNotInList.
//
// State transitions:
//   - All tiles Correct → Finished = true, Won = true.
//   - Else if the number of guesses reaches g.Rows → Finished = true (loss).
func (g *Game) ApplyGuess(c *words.Corpus, guess string) (Pattern, string, error) {
	if g.Finished {
		return Pattern{}, g.State(), ErrFinished
	}
	guess, err := words.Validate(guess)
	if err != nil {
		return Pattern{}, g.State(), err
	}
	if !c.IsAllowed(guess) && guess != g.Answer {
		return Pattern{}, g.State(), ErrNotInList
	}

	marks := Compare(guess, g.Answer)
	g.Guesses = append(g.Guesses, guess)
	g.Marks = append(g.Marks, marks)

	if marks.Solved() {
		g.Finished, g.Won = true, true
	} else if len(g.Guesses) >= g.Rows {
		g.Finished = true
	}
	return marks, g.State(), nil
}

// State reports a coarse string representation of the current game state.
func (g *Game) State() string {
	if g.Finished {
		if g.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}

// Reset clears all guesses so the same answer starts fresh.
func (g *Game) Reset() {
	g.Guesses = []string{}
	g.Marks = nil
	g.Finished, g.Won = false, false
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
