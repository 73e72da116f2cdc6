// internal/live/orchestrator.go
//
// Live solve orchestration.
//
// An attempt moves through
//
//	Initializing → AwaitingSurfaceReady → Turn(0..5) → Solved | Failed | Aborted
//
// and streams its progress on an unbuffered channel that is closed when the
// attempt ends. Cancelling the context ends the attempt silently: nothing is
// sent after cancellation and no terminal event is produced. The acquired
// session is released exactly once on every path.

package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/metrics"
	"github.com/rishn/Wordler/internal/solver"
	"github.com/rishn/Wordler/internal/store"
	"github.com/rishn/Wordler/internal/words"
)

// State is a position in the attempt state machine.
type State int

const (
	StateInitializing State = iota
	StateAwaitingReady
	StateTurn
	StateSolved
	StateFailed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAwaitingReady:
		return "awaiting_ready"
	case StateTurn:
		return "turn"
	case StateSolved:
		return "solved"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ReasonTurnBudget is the failure reason after MaxTurns accepted guesses.
const ReasonTurnBudget = "turn budget exhausted"

// Config bounds an attempt.
type Config struct {
	StepTimeout   time.Duration // every submit/read call
	SetupTimeout  time.Duration // acquire, reset and ready; StepTimeout if zero
	MaxRejections int           // rejected guesses tolerated per attempt
	Mode          string        // history label; "live" if empty
}

func (c Config) withDefaults() Config {
	if c.StepTimeout <= 0 {
		c.StepTimeout = 10 * time.Second
	}
	if c.SetupTimeout <= 0 {
		c.SetupTimeout = c.StepTimeout
	}
	if c.MaxRejections <= 0 {
		c.MaxRejections = 12
	}
	if c.Mode == "" {
		c.Mode = "live"
	}
	return c
}

// Orchestrator runs live attempts. It holds no per-attempt state and may
// start any number of attempts concurrently, each on its own session.
type Orchestrator struct {
	corpus   words.Provider
	sessions Sessions
	recorder Recorder
	cfg      Config
}

// New builds an orchestrator. rec may be nil.
func New(corpus words.Provider, sessions Sessions, rec Recorder, cfg Config) *Orchestrator {
	return &Orchestrator{corpus: corpus, sessions: sessions, recorder: rec, cfg: cfg.withDefaults()}
}

// Attempt is a running live solve.
type Attempt struct {
	ID     string
	Events <-chan Event
}

// Start launches one attempt. The caller must drain Events until it is
// closed or cancel ctx.
func (o *Orchestrator) Start(ctx context.Context) Attempt {
	out := make(chan Event)
	a := &attempt{
		o:       o,
		id:      uuid.NewString(),
		ctx:     ctx,
		out:     out,
		blocked: make(map[string]struct{}),
	}
	go a.run()
	return Attempt{ID: a.id, Events: out}
}

// attempt is owned by its goroutine; nothing else touches it.
type attempt struct {
	o   *Orchestrator
	id  string
	ctx context.Context
	out chan<- Event

	state      State
	adapter    Adapter
	release    func()
	corpus     *words.Corpus
	sel        *solver.Selector
	candidates []string
	history    []solver.GuessResult
	blocked    map[string]struct{}
	rejections int
}

// errCancelled ends an attempt without a terminal event.
var errCancelled = errors.New("attempt cancelled")

func (a *attempt) run() {
	defer close(a.out)

	if err := a.setup(); err != nil {
		a.finishErr(err)
		return
	}
	defer a.release()

	for turn := 0; turn < solver.MaxTurns; {
		accepted, err := a.turn(turn)
		if err != nil {
			a.finishErr(err)
			return
		}
		if !accepted {
			continue
		}
		if a.history[len(a.history)-1].Pattern.Solved() {
			a.finish(StateSolved, "")
			return
		}
		turn++
	}
	a.finish(StateFailed, ReasonTurnBudget)
}

// setup covers Initializing and AwaitingSurfaceReady.
func (a *attempt) setup() error {
	a.transition(StateInitializing)
	a.corpus = a.o.corpus.Corpus()
	if a.corpus == nil {
		return errors.New("no corpus installed")
	}
	a.sel = solver.NewSelector(a.corpus)
	a.candidates = a.corpus.Answers
	a.history = make([]solver.GuessResult, 0, solver.MaxTurns)

	var adapter Adapter
	err := a.call("acquire", a.o.cfg.SetupTimeout, func(ctx context.Context) error {
		var err error
		adapter, err = a.o.sessions.Acquire(ctx)
		return err
	})
	if adapter != nil {
		a.adapter = adapter
		var once sync.Once
		a.release = func() {
			once.Do(func() {
				if err := adapter.Release(); err != nil {
					log.Warn().Err(err).Str("attempt", a.id).Msg("release session")
				}
			})
		}
	}
	if err != nil {
		if a.release != nil {
			a.release()
		}
		return err
	}

	if err := a.call("reset", a.o.cfg.SetupTimeout, adapter.Reset); err != nil {
		a.release()
		return err
	}
	a.transition(StateAwaitingReady)
	if err := a.call("ready", a.o.cfg.SetupTimeout, adapter.Ready); err != nil {
		a.release()
		return err
	}
	a.logf("surface ready")
	a.transition(StateTurn)
	return nil
}

// turn plays Turn(n) once. It reports false when the guess was rejected and
// the same turn has to be played again.
func (a *attempt) turn(n int) (bool, error) {
	if a.ctx.Err() != nil {
		return false, errCancelled
	}
	guess := a.choose(n)

	var sub Submission
	if err := a.call("submit", a.o.cfg.StepTimeout, func(ctx context.Context) error {
		var err error
		sub, err = a.adapter.SubmitGuess(ctx, guess)
		return err
	}); err != nil {
		return false, err
	}
	if !sub.Accepted {
		a.blocked[guess] = struct{}{}
		a.rejections++
		metrics.RecordRejection()
		log.Info().Str("attempt", a.id).Int("turn", n).Str("guess", guess).Str("reason", sub.Reason).Msg("guess rejected")
		a.logf("guess %q rejected: %s", guess, orUnknown(sub.Reason))
		if a.rejections > a.o.cfg.MaxRejections {
			return false, fmt.Errorf("aborting after %d rejected guesses", a.rejections)
		}
		return false, nil
	}

	pattern, degraded, err := a.read(n)
	if err != nil {
		return false, err
	}
	a.history = append(a.history, solver.GuessResult{Guess: guess, Pattern: pattern, Degraded: degraded})
	a.candidates = solver.FilterCandidates(a.corpus.Answers, a.history)
	a.history[len(a.history)-1].Remaining = len(a.candidates)

	step := a.history[len(a.history)-1]
	log.Debug().Str("attempt", a.id).Int("turn", n).Str("guess", guess).Str("pattern", pattern.String()).
		Int("remaining", step.Remaining).Bool("degraded", degraded).Msg("live turn")
	if !a.emit(StepEvent{Guess: step.Guess, Pattern: step.Pattern, Remaining: step.Remaining, Degraded: step.Degraded}) {
		return false, errCancelled
	}
	if len(a.candidates) == 0 && !pattern.Solved() {
		a.logf("no tracked answer fits the feedback; continuing best-effort")
	}
	return true, nil
}

// choose picks the guess for turn n, honouring the blocked set.
func (a *attempt) choose(n int) string {
	if n == 0 && len(a.history) == 0 {
		if _, bad := a.blocked[solver.Opener]; !bad {
			return solver.Opener
		}
	}
	start := time.Now()
	w := a.sel.PickExcluding(a.candidates, a.history, a.blocked)
	metrics.ObservePick(time.Since(start).Seconds())
	return w
}

// read tries both strategies and degrades to all-Absent.
func (a *attempt) read(n int) (game.Pattern, bool, error) {
	for _, s := range []Strategy{Primary, Secondary} {
		var ex Extraction
		if err := a.call("read", a.o.cfg.StepTimeout, func(ctx context.Context) error {
			var err error
			ex, err = a.adapter.ReadPattern(ctx, n, s)
			return err
		}); err != nil {
			return game.Pattern{}, false, err
		}
		if ex.OK && ex.Pattern.Valid() {
			metrics.RecordExtraction(s.String())
			return ex.Pattern, false, nil
		}
		log.Debug().Str("attempt", a.id).Int("turn", n).Stringer("strategy", s).Msg("pattern unavailable")
	}
	metrics.RecordExtraction("none")
	a.logf("feedback for turn %d unreadable; recorded as all-absent and ignored as evidence", n+1)
	return game.AllAbsent, true, nil
}

// call runs one bounded adapter operation. Failures become session faults
// unless the attempt itself was cancelled.
func (a *attempt) call(op string, d time.Duration, fn func(context.Context) error) error {
	if a.ctx.Err() != nil {
		return errCancelled
	}
	ctx, cancel := context.WithTimeout(a.ctx, d)
	defer cancel()
	err := fn(ctx)
	if a.ctx.Err() != nil {
		return errCancelled
	}
	if err != nil {
		metrics.RecordFault(op)
		return &SessionFault{Op: op, Err: err}
	}
	return nil
}

// finish ends a Solved or Failed attempt.
func (a *attempt) finish(s State, reason string) {
	a.transition(s)
	sum := solver.Summary{Success: s == StateSolved, Steps: a.history}
	outcome := metrics.OutcomeFailed
	if sum.Success {
		sum.Answer = a.history[len(a.history)-1].Guess
		outcome = metrics.OutcomeSolved
	}
	metrics.RecordAttempt(a.o.cfg.Mode, outcome, sum.Guesses())
	a.record(sum)
	a.release()
	a.emit(CompleteEvent{Success: sum.Success, Answer: sum.Answer, Steps: sum.Steps, Reason: reason})
}

// finishErr ends an aborted or cancelled attempt.
func (a *attempt) finishErr(err error) {
	if errors.Is(err, errCancelled) || a.ctx.Err() != nil {
		log.Info().Str("attempt", a.id).Stringer("state", a.state).Msg("attempt cancelled")
		return
	}
	a.transition(StateAborted)
	metrics.RecordAttempt(a.o.cfg.Mode, metrics.OutcomeAborted, len(a.history))
	var fault *SessionFault
	if errors.As(err, &fault) {
		log.Error().Err(fault.Err).Str("attempt", a.id).Str("op", fault.Op).Msg("session fault")
	} else {
		log.Warn().Err(err).Str("attempt", a.id).Msg("attempt aborted")
	}
	if a.release != nil {
		a.release()
	}
	a.emit(ErrorEvent{Message: err.Error()})
}

func (a *attempt) record(sum solver.Summary) {
	if a.o.recorder == nil {
		return
	}
	e := store.Entry{ID: a.id, Mode: a.o.cfg.Mode, At: time.Now().UTC(), Summary: sum}
	if err := a.o.recorder.Record(a.ctx, e); err != nil {
		log.Warn().Err(err).Str("attempt", a.id).Msg("record attempt")
	}
}

func (a *attempt) transition(s State) {
	log.Debug().Str("attempt", a.id).Stringer("from", a.state).Stringer("to", s).Msg("live state")
	a.state = s
}

// emit sends ev unless the attempt was cancelled. It reports whether the
// event was delivered.
func (a *attempt) emit(ev Event) bool {
	if a.ctx.Err() != nil {
		return false
	}
	select {
	case a.out <- ev:
		return true
	case <-a.ctx.Done():
		return false
	}
}

func (a *attempt) logf(format string, args ...any) {
	a.emit(LogEvent{Message: fmt.Sprintf(format, args...), Timestamp: time.Now().UTC()})
}

func orUnknown(reason string) string {
	if reason == "" {
		return "no reason given"
	}
	return reason
}
