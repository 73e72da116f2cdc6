// internal/daily/daily.go
//
// Deterministic daily target. The same UTC day and salt always select the
// same answer, so a daily solve is reproducible across processes.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/rishn/Wordler/internal/words"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}

// Pick is the daily target for one corpus.
type Pick struct {
	Date   string `json:"date"`
	Index  int    `json:"index"`
	Answer string `json:"-"`
}

// Target selects the answer of c for the day containing t.
func Target(c *words.Corpus, t time.Time, salt string) Pick {
	idx := WordIndex(t, salt, len(c.Answers))
	return Pick{Date: DateKey(t), Index: idx, Answer: c.Answers[idx]}
}
