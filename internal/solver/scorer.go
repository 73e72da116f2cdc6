package solver

import (
	"math"

	"github.com/rishn/Wordler/internal/game"
)

// Scoring weights. Guess choice depends on these exact values.
const (
	coverageWeight   = 1.1
	newLetterWeight  = 0.2
	fixedHitBonus    = 0.6
	placedBonus      = 0.15
	excludedPenalty  = 1.5
	repeatPenalty    = 0.4
	candidateBiasGap = 0.35
)

// ScoreBreakdown explains how a word was scored.
type ScoreBreakdown struct {
	Word           string       `json:"word"`
	Entropy        float64      `json:"entropy"`
	Coverage       float64      `json:"coverage"`
	NewLetterBonus int          `json:"newLetterBonus"`
	Positional     float64      `json:"positional"`
	Penalty        float64      `json:"penalty"`
	Total          float64      `json:"totalScore"`
	Constraints    *Constraints `json:"-"`
}

// Scorer scores a word against the current candidates.
type Scorer func(word string, candidates []string, c *Constraints) ScoreBreakdown

// Score combines the entropy of the feedback partition with coverage,
// novelty and positional heuristics:
//
//	total = entropy + 1.1·coverage + 0.2·newLetters + positional − penalty
func Score(word string, candidates []string, c *Constraints) ScoreBreakdown {
	b := ScoreBreakdown{
		Word:        word,
		Entropy:     Entropy(word, candidates),
		Constraints: c,
	}

	var inWord [26]bool
	repeated := false
	for i := 0; i < len(word); i++ {
		l := word[i] - 'a'
		if inWord[l] {
			repeated = true
		}
		inWord[l] = true
	}

	if req := c.RequiredCount(); req > 0 {
		hit := 0
		for l := byte(0); l < 26; l++ {
			if c.Required(l) && inWord[l] {
				hit++
			}
		}
		b.Coverage = float64(hit) / float64(req)
	}

	for l := byte(0); l < 26; l++ {
		if !inWord[l] {
			continue
		}
		if !c.Seen[l] {
			b.NewLetterBonus++
		}
		if c.Excluded[l] {
			b.Penalty += excludedPenalty
		}
	}
	if repeated {
		b.Penalty += repeatPenalty
	}

	for i := 0; i < len(word); i++ {
		l := word[i] - 'a'
		if c.Fixed[i] != 0 && c.Fixed[i] == word[i] {
			b.Positional += fixedHitBonus
		}
		if c.Required(l) && !c.Forbidden[l][i] {
			b.Positional += placedBonus
		}
	}

	b.Total = b.Entropy + coverageWeight*b.Coverage + newLetterWeight*float64(b.NewLetterBonus) + b.Positional - b.Penalty
	return b
}

// Entropy is the Shannon entropy, in bits, of the partition of candidates
// by the pattern word would produce against each of them.
func Entropy(word string, candidates []string) float64 {
	if len(candidates) <= 1 {
		return 0
	}
	buckets := make(map[game.Pattern]int, 64)
	for _, cand := range candidates {
		buckets[game.Compare(word, cand)]++
	}
	n := float64(len(candidates))
	h := 0.0
	for _, k := range buckets {
		p := float64(k) / n
		h -= p * math.Log2(p)
	}
	return h
}
