package solver

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/words"
)

// Solve plays one simulated attempt against a known target: the opener
// first, then the selector, until the target is hit or MaxTurns run out.
// Targets outside the corpus are allowed; malformed ones are rejected with a
// *words.InputError before any guess is made.
func Solve(ctx context.Context, sel *Selector, target string) (Summary, error) {
	target, err := words.Validate(target)
	if err != nil {
		return Summary{}, err
	}

	candidates := sel.Corpus().Answers
	history := make([]GuessResult, 0, MaxTurns)
	for turn := 0; turn < MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return Summary{Steps: history}, err
		}

		guess := Opener
		if turn > 0 {
			guess = sel.PickNextGuess(candidates, history)
		}
		pattern := game.Compare(guess, target)
		next := append(history, GuessResult{Guess: guess, Pattern: pattern})
		candidates = FilterCandidates(sel.Corpus().Answers, next)
		next[len(next)-1].Remaining = len(candidates)
		history = next

		log.Debug().Int("turn", turn).Str("guess", guess).Str("pattern", pattern.String()).
			Int("remaining", len(candidates)).Msg("simulated turn")

		if guess == target {
			return Summary{Success: true, Answer: target, Steps: history}, nil
		}
	}
	return Summary{Success: false, Steps: history}, nil
}
