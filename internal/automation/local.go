// internal/automation/local.go
//
// In-process puzzle surface backed by game.Game.
// Responsibilities:
//   - One puzzle per acquired session (no shared state between attempts).
//   - Reject guesses the puzzle refuses, the way a rendered board would.
//   - Read feedback two ways: from the stored rows (primary) and by
//     re-scoring the guess list (secondary).

package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/live"
	"github.com/rishn/Wordler/internal/words"
)

var (
	// ErrReleased is returned by calls on a released session.
	ErrReleased = errors.New("automation: session released")
	// ErrNotReset is returned when the board is used before Reset.
	ErrNotReset = errors.New("automation: surface not reset")
)

// Local hands out sessions over in-memory puzzles.
type Local struct {
	corpus words.Provider
	target string // fixed answer; random per session if empty
}

// NewLocal builds a Local surface. An empty target picks a random answer
// for every session.
func NewLocal(corpus words.Provider, target string) *Local {
	return &Local{corpus: corpus, target: target}
}

// Acquire opens a new session.
func (l *Local) Acquire(ctx context.Context) (live.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := l.corpus.Corpus()
	if c == nil {
		return nil, errors.New("automation: no corpus")
	}
	return &LocalSession{corpus: c, target: l.target}, nil
}

// LocalSession is one puzzle instance driven through live.Adapter.
type LocalSession struct {
	mu       sync.Mutex
	corpus   *words.Corpus
	target   string
	game     *game.Game
	released bool
}

// Reset clears the board. The first call creates the puzzle; later calls
// keep its answer and discard the rows, like reloading the same day's page.
func (s *LocalSession) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if s.game != nil {
		s.game.Reset()
		log.Debug().Str("puzzle", s.game.ID).Msg("local board cleared")
		return nil
	}
	g, err := game.New(s.corpus, s.target)
	if err != nil {
		return fmt.Errorf("new puzzle: %w", err)
	}
	s.game = g
	log.Debug().Str("puzzle", g.ID).Msg("local puzzle created")
	return nil
}

// Ready succeeds once a puzzle is in progress.
func (s *LocalSession) Ready(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.current()
	return err
}

// SubmitGuess applies word to the puzzle.
func (s *LocalSession) SubmitGuess(ctx context.Context, word string) (live.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.current()
	if err != nil {
		return live.Submission{}, err
	}
	_, _, err = g.ApplyGuess(s.corpus, word)
	var inputErr *words.InputError
	switch {
	case err == nil:
		return live.Submission{Accepted: true}, nil
	case errors.Is(err, game.ErrNotInList):
		return live.Submission{Reason: err.Error()}, nil
	case errors.As(err, &inputErr):
		return live.Submission{Reason: inputErr.Reason}, nil
	default:
		return live.Submission{}, err
	}
}

// ReadPattern returns the feedback of row turn.
func (s *LocalSession) ReadPattern(ctx context.Context, turn int, st live.Strategy) (live.Extraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.current()
	if err != nil {
		return live.Extraction{}, err
	}
	if turn < 0 || turn >= len(g.Guesses) {
		return live.Extraction{}, nil
	}
	switch st {
	case live.Primary:
		return live.Extraction{Pattern: g.Marks[turn], OK: true}, nil
	case live.Secondary:
		return live.Extraction{Pattern: game.Compare(g.Guesses[turn], g.Answer), OK: true}, nil
	}
	return live.Extraction{}, nil
}

// Release ends the session. A second call returns ErrReleased.
func (s *LocalSession) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	s.released = true
	s.game = nil
	return nil
}

// Answer reveals the puzzle answer ("" before Reset).
func (s *LocalSession) Answer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ""
	}
	return s.game.Answer
}

func (s *LocalSession) current() (*game.Game, error) {
	if s.released {
		return nil, ErrReleased
	}
	if s.game == nil {
		return nil, ErrNotReset
	}
	return s.game, nil
}
