// assets/embed.go
//
// Embedded default word lists.
//   - answers.txt: canonical answers.
//   - allowed.txt: extra guesses accepted on top of the answers.
//
// Both files hold whitespace-separated words; lines starting with '#' are comments.
package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// ReadWords parses a word list from r. Words are lowercased; blank and comment
// lines are skipped. No length/alphabet validation happens here.
func ReadWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		for _, w := range strings.Fields(s) {
			out = append(out, strings.ToLower(w))
		}
	}
	return out, sc.Err()
}

func readList(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWords(f)
}

func AnswersList() ([]string, error) {
	return readList("answers.txt")
}

func AllowedList() ([]string, error) {
	return readList("allowed.txt")
}
