package solver

import "github.com/rishn/Wordler/internal/game"

// FilterCandidates returns every answer consistent with each non-degraded
// step of history, in corpus order. It keeps no state between calls.
func FilterCandidates(answers []string, history []GuessResult) []string {
	out := make([]string, 0, len(answers))
next:
	for _, w := range answers {
		for _, step := range history {
			if step.Degraded {
				continue
			}
			if !game.Consistent(step.Guess, step.Pattern, w) {
				continue next
			}
		}
		out = append(out, w)
	}
	return out
}
