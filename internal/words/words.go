// internal/words/words.go
//
// Word corpus management for the solver.
//
// Responsibilities:
//   - Validate words at every boundary (exactly 5 lowercase letters a–z).
//   - Build an immutable Corpus from an answers list and an allowed-guess list.
//   - Hold the process-wide corpus in a Source that is swapped atomically,
//     so readers never observe a half-updated pair of lists.
//
// Word Lists:
//   - "answers": canonical solutions, corpus order = file order.
//   - "allowed": valid guesses, always a superset of answers, sorted.
//
// Load behaviour (Load):
//  1. AnswersFile and AllowedFile both set → read both files.
//  2. Only AllowedFile set → use it for both answers and allowed guesses.
//  3. Neither set → embedded defaults from the assets package.
package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rishn/Wordler/assets"
)

// Length is the number of letters in every word.
const Length = 5

// ErrInvalidWord is wrapped by every InputError.
var ErrInvalidWord = errors.New("invalid word")

// InputError reports a word that is not exactly five lowercase letters.
type InputError struct {
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid word %q: %s", e.Input, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidWord }

// Validate trims and lowercases s and checks it is a well-formed word.
func Validate(s string) (string, error) {
	w := strings.ToLower(strings.TrimSpace(s))
	if len(w) != Length {
		return "", &InputError{Input: s, Reason: fmt.Sprintf("must be %d letters", Length)}
	}
	if !isAlpha(w) {
		return "", &InputError{Input: s, Reason: "letters a-z only"}
	}
	return w, nil
}

// IsWord reports whether w is already a normalised word.
func IsWord(w string) bool {
	return len(w) == Length && isAlpha(w)
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// Corpus is an immutable pair of word lists. Never mutate the slices.
type Corpus struct {
	Answers []string
	Allowed []string

	answerSet  map[string]struct{}
	allowedSet map[string]struct{}
}

// NewCorpus normalises both lists, drops malformed words and duplicates, and
// merges answers into the allowed list. It fails if no answer survives.
func NewCorpus(answers, allowed []string) (*Corpus, error) {
	c := &Corpus{
		answerSet:  make(map[string]struct{}, len(answers)),
		allowedSet: make(map[string]struct{}, len(answers)+len(allowed)),
	}
	for _, raw := range answers {
		w := strings.ToLower(strings.TrimSpace(raw))
		if !IsWord(w) {
			continue
		}
		if _, dup := c.answerSet[w]; dup {
			continue
		}
		c.answerSet[w] = struct{}{}
		c.allowedSet[w] = struct{}{}
		c.Answers = append(c.Answers, w)
	}
	if len(c.Answers) == 0 {
		return nil, errors.New("words: answers list is empty")
	}
	for _, raw := range allowed {
		w := strings.ToLower(strings.TrimSpace(raw))
		if IsWord(w) {
			c.allowedSet[w] = struct{}{}
		}
	}
	c.Allowed = make([]string, 0, len(c.allowedSet))
	for w := range c.allowedSet {
		c.Allowed = append(c.Allowed, w)
	}
	sort.Strings(c.Allowed)
	return c, nil
}

// IsAllowed reports whether w is a valid guess (answers ∪ allowed).
func (c *Corpus) IsAllowed(w string) bool {
	_, ok := c.allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (c *Corpus) IsAnswer(w string) bool {
	_, ok := c.answerSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (c *Corpus) Stats() (answersCount int, allowedCount int) {
	return len(c.Answers), len(c.Allowed)
}

// RandomAnswer returns a cryptographically random answer.
func (c *Corpus) RandomAnswer() string {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(c.Answers))))
	if err != nil {
		return c.Answers[0]
	}
	return c.Answers[nBig.Int64()]
}

// Provider hands out the current corpus.
type Provider interface {
	Corpus() *Corpus
}

// Source is a Provider whose corpus can be replaced wholesale at runtime.
type Source struct {
	cur atomic.Pointer[Corpus]
}

// NewSource returns a Source holding c.
func NewSource(c *Corpus) *Source {
	s := &Source{}
	s.cur.Store(c)
	return s
}

// Corpus returns the corpus in effect right now (nil before the first Replace).
func (s *Source) Corpus() *Corpus { return s.cur.Load() }

// Replace installs c and returns the corpus it replaced.
func (s *Source) Replace(c *Corpus) *Corpus {
	if c == nil {
		return s.cur.Load()
	}
	return s.cur.Swap(c)
}

// Options selects local list files; empty paths fall back per the package doc.
type Options struct {
	AnswersFile string
	AllowedFile string
}

// Load builds a corpus from files or the embedded defaults.
func Load(opts Options) (*Corpus, error) {
	var ansList, allowList []string
	var err error

	switch {
	// Case 1: both lists provided
	case opts.AnswersFile != "" && opts.AllowedFile != "":
		if ansList, err = readWordFile(opts.AnswersFile); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(opts.AllowedFile); err != nil {
			return nil, err
		}

	// Case 2: only allowed file provided → use for both
	case opts.AllowedFile != "":
		if allowList, err = readWordFile(opts.AllowedFile); err != nil {
			return nil, err
		}
		ansList = allowList

	// Case 3: embedded defaults
	default:
		if ansList, err = assets.AnswersList(); err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		if allowList, err = assets.AllowedList(); err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
	}
	return NewCorpus(ansList, allowList)
}

// readWordFile loads a whitespace-separated word list from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadWords(f)
}
