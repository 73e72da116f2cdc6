package solver

import (
	"github.com/rishn/Wordler/internal/words"
)

const (
	// Opener is the first guess of every attempt.
	Opener = "roate"
	// DefaultWord is returned when nothing else can be ranked.
	DefaultWord = "crane"

	poolCandidates = 120
	poolExplore    = 120
	wideCandidates = 240
	wideSample     = 240

	seenLetterWeight = 0.2
)

// Selection is the outcome of one pick.
type Selection struct {
	Word      string          `json:"word"`
	Exhausted bool            `json:"exhausted,omitempty"` // no candidate left; fallback ranking used
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"` // nil when no scoring happened
}

// Selector picks guesses over one corpus snapshot. It is safe for
// concurrent use once built.
type Selector struct {
	corpus *words.Corpus
	score  Scorer
	freq   [26]int // answers containing each letter
}

// NewSelector builds a selector for corpus c.
func NewSelector(c *words.Corpus) *Selector {
	s := &Selector{corpus: c, score: Score}
	for _, w := range c.Answers {
		var seen [26]bool
		for i := 0; i < len(w); i++ {
			l := w[i] - 'a'
			if !seen[l] {
				seen[l] = true
				s.freq[l]++
			}
		}
	}
	return s
}

// Corpus returns the corpus the selector ranks against.
func (s *Selector) Corpus() *words.Corpus { return s.corpus }

// PickNextGuess returns the next guess for the given candidates and history.
func (s *Selector) PickNextGuess(candidates []string, history []GuessResult) string {
	return s.Pick(candidates, history, nil).Word
}

// PickExcluding is PickNextGuess that never returns a word in blocked.
func (s *Selector) PickExcluding(candidates []string, history []GuessResult, blocked map[string]struct{}) string {
	return s.Pick(candidates, history, blocked).Word
}

// Pick runs the full selection and reports how the word was chosen.
func (s *Selector) Pick(candidates []string, history []GuessResult, blocked map[string]struct{}) Selection {
	c := DeriveConstraints(history)
	sel := s.pick(candidates, c)
	if _, bad := blocked[sel.Word]; !bad {
		return sel
	}
	return s.pickWide(candidates, c, blocked)
}

func (s *Selector) pick(candidates []string, c *Constraints) Selection {
	switch len(candidates) {
	case 0:
		return Selection{Word: s.fallback(c, nil), Exhausted: true}
	case 1:
		return Selection{Word: candidates[0]}
	}

	pool := make([]string, 0, poolCandidates+poolExplore)
	inPool := make(map[string]struct{}, poolCandidates+poolExplore)
	for _, w := range candidates {
		if len(pool) == poolCandidates {
			break
		}
		pool = append(pool, w)
		inPool[w] = struct{}{}
	}
	explored := 0
	for _, w := range s.corpus.Allowed {
		if explored == poolExplore {
			break
		}
		if _, dup := inPool[w]; dup || c.WasTried(w) || !c.Fits(w) {
			continue
		}
		pool = append(pool, w)
		inPool[w] = struct{}{}
		explored++
	}
	return s.best(pool, candidates, c)
}

// pickWide re-ranks a larger pool when the normal pick is blocked.
func (s *Selector) pickWide(candidates []string, c *Constraints, blocked map[string]struct{}) Selection {
	open := make([]string, 0, len(candidates))
	for _, w := range candidates {
		if _, bad := blocked[w]; !bad {
			open = append(open, w)
		}
	}
	if len(open) == 1 {
		return Selection{Word: open[0]}
	}

	pool := make([]string, 0, wideCandidates+wideSample)
	inPool := make(map[string]struct{}, wideCandidates+wideSample)
	for _, w := range open {
		if len(pool) == wideCandidates {
			break
		}
		pool = append(pool, w)
		inPool[w] = struct{}{}
	}
	stride := len(s.corpus.Allowed) / wideSample
	if stride < 1 {
		stride = 1
	}
	sampled := 0
	for i := 0; i < len(s.corpus.Allowed) && sampled < wideSample; i += stride {
		w := s.corpus.Allowed[i]
		if _, dup := inPool[w]; dup {
			continue
		}
		if _, bad := blocked[w]; bad || c.WasTried(w) || c.hasExcluded(w) {
			continue
		}
		pool = append(pool, w)
		inPool[w] = struct{}{}
		sampled++
	}
	if len(pool) == 0 {
		return Selection{Word: s.fallback(c, blocked), Exhausted: len(open) == 0}
	}
	// Scores stay relative to the real candidate set; when it is empty the
	// sample is still ranked by its heuristics.
	sel := s.best(pool, open, c)
	sel.Exhausted = len(open) == 0
	return sel
}

// best scores every pool word and applies the candidate bias: a
// non-candidate winner yields to the best candidate within candidateBiasGap.
func (s *Selector) best(pool, candidates []string, c *Constraints) Selection {
	isCand := make(map[string]struct{}, len(candidates))
	for _, w := range candidates {
		isCand[w] = struct{}{}
	}

	var top, topCand ScoreBreakdown
	haveTop, haveCand := false, false
	for _, w := range pool {
		b := s.score(w, candidates, c)
		if !haveTop || b.Total > top.Total {
			top, haveTop = b, true
		}
		if _, ok := isCand[w]; ok && (!haveCand || b.Total > topCand.Total) {
			topCand, haveCand = b, true
		}
	}

	if _, ok := isCand[top.Word]; !ok && haveCand && top.Total-topCand.Total <= candidateBiasGap {
		return Selection{Word: topCand.Word, Breakdown: &topCand}
	}
	return Selection{Word: top.Word, Breakdown: &top}
}

// fallback ranks allowed words by letter frequency when no candidate is
// left (the target is outside the tracked answers).
func (s *Selector) fallback(c *Constraints, blocked map[string]struct{}) string {
	usable := func(w string) bool {
		if c.WasTried(w) {
			return false
		}
		_, bad := blocked[w]
		return !bad
	}
	if w, ok := s.rankByFrequency(c, func(w string) bool { return usable(w) && c.Fits(w) }); ok {
		return w
	}
	if w, ok := s.rankByFrequency(c, func(w string) bool { return usable(w) && !c.hasExcluded(w) }); ok {
		return w
	}
	return DefaultWord
}

func (s *Selector) rankByFrequency(c *Constraints, keep func(string) bool) (string, bool) {
	best, bestScore, found := "", -1.0, false
	for _, w := range s.corpus.Allowed {
		if !keep(w) {
			continue
		}
		if f := s.frequencyScore(w, c); f > bestScore {
			best, bestScore, found = w, f, true
		}
	}
	return best, found
}

// frequencyScore sums corpus frequency over the distinct letters of w,
// weighting letters already guessed down.
func (s *Selector) frequencyScore(w string, c *Constraints) float64 {
	var seen [26]bool
	total := 0.0
	for i := 0; i < len(w); i++ {
		l := w[i] - 'a'
		if seen[l] {
			continue
		}
		seen[l] = true
		f := float64(s.freq[l])
		if c.Seen[l] {
			f *= seenLetterWeight
		}
		total += f
	}
	return total
}
