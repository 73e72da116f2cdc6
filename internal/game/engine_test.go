package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishn/Wordler/internal/words"
)

func mustPattern(t *testing.T, s string) Pattern {
	t.Helper()
	p, err := ParsePattern(s)
	require.NoError(t, err)
	return p
}

// Reference fixtures for the two-pass algorithm, duplicate letters included.
var compareFixtures = []struct {
	guess, target, want string
}{
	{"roate", "raise", "G.Y.G"},
	{"crane", "crane", "GGGGG"},
	{"speed", "abide", "..Y.Y"},
	{"speed", "erase", "Y.YY."},
	{"eerie", "there", "Y.Y.G"},
	{"llama", "hello", "YY..."},
	{"array", "rarer", "YYG.."},
	{"geese", "eagle", "YY..G"},
	{"apple", "ankle", "G..GG"},
	{"label", "hello", "Y..YY"},
	{"sissy", "bless", "Y..G."},
	{"mamma", "maxim", "GGY.."},
	{"abbey", "babes", "YYGG."},
}

func TestCompareFixtures(t *testing.T) {
	for _, tc := range compareFixtures {
		t.Run(tc.guess+"/"+tc.target, func(t *testing.T) {
			got := Compare(tc.guess, tc.target)
			assert.Equal(t, tc.want, got.String())
			assert.Equal(t, mustPattern(t, tc.want), got)
		})
	}
}

func TestCompareCorrectCountMatchesLiteralMatches(t *testing.T) {
	c, err := words.Load(words.Options{})
	require.NoError(t, err)
	sample := c.Answers[:200]
	for _, g := range sample {
		for _, tgt := range sample {
			p := Compare(g, tgt)
			correct, literal := 0, 0
			for i := range p {
				if p[i] == MarkCorrect {
					correct++
				}
				if g[i] == tgt[i] {
					literal++
				}
			}
			if correct != literal {
				t.Fatalf("%s vs %s: %d correct, %d literal matches", g, tgt, correct, literal)
			}
		}
	}
}

func TestConsistent(t *testing.T) {
	p := Compare("apple", "ankle")
	assert.True(t, Consistent("apple", p, "ankle"))
	assert.False(t, Consistent("apple", p, "apple"))
	assert.False(t, Consistent("apple", p, "ample"))
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("2y0.G")
	require.NoError(t, err)
	assert.Equal(t, Pattern{MarkCorrect, MarkPresent, MarkAbsent, MarkAbsent, MarkCorrect}, p)
	assert.True(t, p.Valid())
	assert.False(t, p.Solved())
	assert.True(t, mustPattern(t, "GGGGG").Solved())

	_, err = ParsePattern("GGG")
	require.Error(t, err)
	_, err = ParsePattern("GGGGZ")
	require.Error(t, err)
	assert.False(t, Pattern{}.Valid())
}

func TestGameApplyGuess(t *testing.T) {
	c, err := words.NewCorpus([]string{"crane", "slate", "brick"}, []string{"adieu"})
	require.NoError(t, err)

	g, err := New(c, "crane")
	require.NoError(t, err)
	assert.Equal(t, "playing", g.State())
	assert.Len(t, g.ID, 16)

	_, _, err = g.ApplyGuess(c, "zzzzz")
	assert.True(t, errors.Is(err, ErrNotInList))
	_, _, err = g.ApplyGuess(c, "abc")
	assert.ErrorIs(t, err, words.ErrInvalidWord)
	assert.Empty(t, g.Guesses)

	marks, state, err := g.ApplyGuess(c, "ADIEU")
	require.NoError(t, err)
	assert.Equal(t, "Y..Y.", marks.String())
	assert.Equal(t, "playing", state)

	marks, state, err = g.ApplyGuess(c, "crane")
	require.NoError(t, err)
	assert.True(t, marks.Solved())
	assert.Equal(t, "won", state)
	assert.Len(t, g.Marks, 2)

	_, _, err = g.ApplyGuess(c, "slate")
	assert.ErrorIs(t, err, ErrFinished)

	g.Reset()
	assert.Equal(t, "playing", g.State())
	assert.Empty(t, g.Guesses)
}

func TestGameLoses(t *testing.T) {
	c, err := words.NewCorpus([]string{"crane", "slate"}, nil)
	require.NoError(t, err)
	g, err := New(c, "crane")
	require.NoError(t, err)
	var state string
	for i := 0; i < 6; i++ {
		_, state, err = g.ApplyGuess(c, "slate")
		require.NoError(t, err)
	}
	assert.Equal(t, "lost", state)
	assert.True(t, g.Finished)
	assert.False(t, g.Won)

	_, err = New(c, "cr4ne")
	require.Error(t, err)
}
