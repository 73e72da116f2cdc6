package words

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"crane", "crane", true},
		{"  CRANE ", "crane", true},
		{"cran", "", false},
		{"cranes", "", false},
		{"cr4ne", "", false},
		{"crâne", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Validate(tc.in)
			if !tc.ok {
				require.Error(t, err)
				var ie *InputError
				assert.True(t, errors.As(err, &ie))
				assert.ErrorIs(t, err, ErrInvalidWord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewCorpus(t *testing.T) {
	c, err := NewCorpus(
		[]string{"Crane", "slate", "crane", "bad", "12345"},
		[]string{"zesty", "adieu", "slate"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"crane", "slate"}, c.Answers)
	assert.Equal(t, []string{"adieu", "crane", "slate", "zesty"}, c.Allowed)
	assert.True(t, c.IsAnswer("CRANE"))
	assert.False(t, c.IsAnswer("adieu"))
	assert.True(t, c.IsAllowed("adieu"))
	a, g := c.Stats()
	assert.Equal(t, 2, a)
	assert.Equal(t, 4, g)

	_, err = NewCorpus([]string{"bad"}, nil)
	require.Error(t, err)
}

func TestLoadEmbedded(t *testing.T) {
	c, err := Load(Options{})
	require.NoError(t, err)
	a, g := c.Stats()
	assert.Greater(t, a, 2000)
	assert.GreaterOrEqual(t, g, a)
	for _, w := range []string{"raise", "apple", "ankle", "crane"} {
		assert.True(t, c.IsAnswer(w), w)
	}
	assert.True(t, c.IsAllowed("roate"))
	assert.Contains(t, c.Answers, c.RandomAnswer())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	ans := filepath.Join(dir, "answers.txt")
	all := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(ans, []byte("# c\nbrick\nstone plank\n"), 0o644))
	require.NoError(t, os.WriteFile(all, []byte("aback\n"), 0o644))

	c, err := Load(Options{AnswersFile: ans, AllowedFile: all})
	require.NoError(t, err)
	assert.Equal(t, []string{"brick", "stone", "plank"}, c.Answers)
	assert.True(t, c.IsAllowed("aback"))

	c, err = Load(Options{AllowedFile: all})
	require.NoError(t, err)
	assert.Equal(t, []string{"aback"}, c.Answers)

	_, err = Load(Options{AnswersFile: filepath.Join(dir, "missing"), AllowedFile: all})
	require.Error(t, err)
}

func TestSourceReplaceIsAtomic(t *testing.T) {
	small, err := NewCorpus([]string{"crane"}, []string{"slate"})
	require.NoError(t, err)
	big, err := NewCorpus([]string{"brick", "stone"}, []string{"plank", "aback", "zesty"})
	require.NoError(t, err)

	src := NewSource(small)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c := src.Corpus()
				a, g := c.Stats()
				// Each reader sees one of the two complete corpora, never a mix.
				ok := (a == 1 && g == 2) || (a == 2 && g == 5)
				if !ok {
					t.Errorf("torn corpus: %d answers, %d allowed", a, g)
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			src.Replace(big)
		} else {
			src.Replace(small)
		}
	}
	wg.Wait()

	assert.Same(t, small, src.Replace(nil))
}

func TestFetchAndUpgrade(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/answers":
			fmt.Fprintln(w, "brick\nstone")
		case "/allowed":
			fmt.Fprintln(w, "aback zesty")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	old, err := NewCorpus([]string{"crane"}, nil)
	require.NoError(t, err)
	src := NewSource(old)

	assert.False(t, Upgrade(context.Background(), src, ts.Client(), ts.URL+"/answers", ts.URL+"/nope"))
	assert.Same(t, old, src.Corpus())

	assert.True(t, Upgrade(context.Background(), src, ts.Client(), ts.URL+"/answers", ts.URL+"/allowed"))
	assert.Equal(t, []string{"brick", "stone"}, src.Corpus().Answers)
	assert.True(t, src.Corpus().IsAllowed("zesty"))

	assert.False(t, Upgrade(context.Background(), src, ts.Client(), "", ""))
}
