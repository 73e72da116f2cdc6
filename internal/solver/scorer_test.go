package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropy(t *testing.T) {
	assert.Zero(t, Entropy("crane", []string{"slate"}))
	assert.Zero(t, Entropy("crane", []string{"crane"}))
	assert.Zero(t, Entropy("crane", nil))
	assert.InDelta(t, 1.0, Entropy("crane", []string{"crane", "slate"}), 1e-9)
	assert.Zero(t, Entropy("fuzzy", []string{"crane", "slate"}), "same pattern for both")
	assert.InDelta(t, math.Log2(3), Entropy("apple", []string{"apple", "ample", "ankle"}), 1e-9)
}

func TestScoreSingleCandidateHasZeroEntropy(t *testing.T) {
	c := DeriveConstraints(nil)
	for _, w := range []string{"crane", "geese", "fuzzy"} {
		assert.Zero(t, Score(w, []string{"slate"}, c).Entropy, w)
	}
}

func TestScoreFreshHistory(t *testing.T) {
	c := DeriveConstraints(nil)

	b := Score("crane", []string{"crane"}, c)
	assert.Equal(t, 5, b.NewLetterBonus)
	assert.Zero(t, b.Coverage)
	assert.Zero(t, b.Positional)
	assert.Zero(t, b.Penalty)
	assert.InDelta(t, 1.0, b.Total, 1e-9)
	assert.Same(t, c, b.Constraints)

	b = Score("geese", []string{"crane"}, c)
	assert.Equal(t, 3, b.NewLetterBonus)
	assert.InDelta(t, repeatPenalty, b.Penalty, 1e-9)
	assert.InDelta(t, 0.2, b.Total, 1e-9)
}

func TestScoreWithConstraints(t *testing.T) {
	c := DeriveConstraints([]GuessResult{step("speed", "abide")}) // required e, d

	b := Score("abide", []string{"abide"}, c)
	assert.InDelta(t, 1.0, b.Coverage, 1e-9)
	assert.Equal(t, 3, b.NewLetterBonus)
	assert.InDelta(t, 0.3, b.Positional, 1e-9) // d@3 and e@4 both placed off forbidden slots
	assert.Zero(t, b.Penalty)
	assert.InDelta(t, 2.0, b.Total, 1e-9)

	b = Score("speed", []string{"abide"}, c)
	assert.InDelta(t, 2*excludedPenalty+repeatPenalty, b.Penalty, 1e-9)
	assert.InDelta(t, 0.15, b.Positional, 1e-9)
	assert.InDelta(t, -2.15, b.Total, 1e-9)
}

func TestScoreFixedLetterBonus(t *testing.T) {
	c := DeriveConstraints([]GuessResult{step("roate", "raise")}) // G.Y.G
	b := Score("raise", []string{"raise"}, c)
	// r@0 and e@4 reinforce fixed slots (0.6 each); r, a, e are required and
	// none sits on a forbidden slot (a is forbidden at 2 only).
	assert.InDelta(t, 2*fixedHitBonus+3*placedBonus, b.Positional, 1e-9)
	assert.InDelta(t, 1.0, b.Coverage, 1e-9)
	assert.Equal(t, 2, b.NewLetterBonus)
}
