package automation

import (
	"testing"

	"github.com/go-rod/rod/lib/input"
	"github.com/stretchr/testify/assert"
)

func TestPatternFromStates(t *testing.T) {
	p, ok := patternFromStates([]string{"correct", "absent", "present", "absent", "Correct "})
	assert.True(t, ok)
	assert.Equal(t, "G.Y.G", p.String())

	for _, bad := range [][]string{
		{"correct", "absent", "present", "absent"},
		{"correct", "absent", "tbd", "absent", "correct"},
		{"", "", "", "", ""},
	} {
		_, ok := patternFromStates(bad)
		assert.False(t, ok, "%v", bad)
	}
}

func TestPatternFromLabels(t *testing.T) {
	p, ok := patternFromLabels([]string{
		"1st letter, R, correct",
		"2nd letter, O, absent",
		"3rd letter, A, present in another position",
		"4th letter, T, absent",
		"5th letter, E, correct",
	})
	assert.False(t, ok, "unknown phrasing is not guessed at")

	p, ok = patternFromLabels([]string{
		"1st letter, R, correct",
		"2nd letter, O, absent",
		"3rd letter, A, present",
		"4th letter, T, absent",
		"5th letter, E, correct",
	})
	assert.True(t, ok)
	assert.Equal(t, "G.Y.G", p.String())

	p, ok = patternFromLabels([]string{
		"R is in the correct spot",
		"O is not in the word",
		"A is in the word but in the wrong spot",
		"T is not in the word",
		"E is in the correct spot",
	})
	assert.True(t, ok)
	assert.Equal(t, "G.Y.G", p.String())

	_, ok = patternFromLabels([]string{"empty", "empty", "empty", "empty", "empty"})
	assert.False(t, ok)
}

func TestKeysOf(t *testing.T) {
	assert.Equal(t, []input.Key{'c', 'r', 'a', 'n', 'e'}, keysOf("crane"))
}
