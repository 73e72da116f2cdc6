package solver

import (
	"github.com/rishn/Wordler/internal/game"
)

// Constraints is the cumulative knowledge derived from a history. It is
// rebuilt from scratch by DeriveConstraints and never updated in place.
//
// Duplicate letters are handled conservatively: MinCount is the largest
// number of positive marks a letter got within a single guess, and a letter
// is excluded only if no guess ever marked it positively.
type Constraints struct {
	Fixed     [5]byte     // letter known at each position, 0 if unknown
	Forbidden [26][5]bool // letter scored Present at that position
	MinCount  [26]int     // lower bound on occurrences
	Excluded  [26]bool    // only ever Absent
	Seen      [26]bool    // appeared in any guess
	Tried     map[string]struct{}
}

// DeriveConstraints builds Constraints from the full history. Degraded steps
// only mark their letters seen and the word tried.
func DeriveConstraints(history []GuessResult) *Constraints {
	c := &Constraints{Tried: make(map[string]struct{}, len(history))}
	var positive, absent [26]bool

	for _, step := range history {
		c.Tried[step.Guess] = struct{}{}
		for i := 0; i < len(step.Guess); i++ {
			c.Seen[step.Guess[i]-'a'] = true
		}
		if step.Degraded {
			continue
		}

		var perGuess [26]int
		for i, m := range step.Pattern {
			l := step.Guess[i] - 'a'
			switch m {
			case game.MarkCorrect:
				c.Fixed[i] = step.Guess[i]
				positive[l] = true
				perGuess[l]++
			case game.MarkPresent:
				c.Forbidden[l][i] = true
				positive[l] = true
				perGuess[l]++
			default:
				absent[l] = true
			}
		}
		for l, n := range perGuess {
			if n > c.MinCount[l] {
				c.MinCount[l] = n
			}
		}
	}
	for l := range absent {
		c.Excluded[l] = absent[l] && !positive[l]
	}
	return c
}

// Required reports whether letter l (0..25) is known to be in the answer.
func (c *Constraints) Required(l byte) bool {
	return c.MinCount[l] > 0 && !c.Excluded[l]
}

// RequiredCount returns how many distinct letters are known present.
func (c *Constraints) RequiredCount() int {
	n := 0
	for l := byte(0); l < 26; l++ {
		if c.Required(l) {
			n++
		}
	}
	return n
}

// WasTried reports whether w was already guessed.
func (c *Constraints) WasTried(w string) bool {
	_, ok := c.Tried[w]
	return ok
}

// Fits reports whether word satisfies every fixed position, forbidden
// position, exclusion and minimum count.
func (c *Constraints) Fits(word string) bool {
	var counts [26]int
	for i := 0; i < len(word); i++ {
		l := word[i] - 'a'
		if c.Fixed[i] != 0 && word[i] != c.Fixed[i] {
			return false
		}
		if c.Forbidden[l][i] || c.Excluded[l] {
			return false
		}
		counts[l]++
	}
	for l, want := range c.MinCount {
		if counts[l] < want {
			return false
		}
	}
	return true
}

// hasExcluded reports whether word contains any excluded letter.
func (c *Constraints) hasExcluded(word string) bool {
	for i := 0; i < len(word); i++ {
		if c.Excluded[word[i]-'a'] {
			return true
		}
	}
	return false
}
