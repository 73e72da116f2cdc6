// internal/words/fetch.go
//
// Remote word lists. A better (usually larger) pair of lists can be fetched
// after start-up and swapped into a Source in one step.

package words

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rishn/Wordler/assets"
)

// Fetch downloads the answers and allowed lists concurrently and builds a
// corpus from them. Both downloads must succeed.
func Fetch(ctx context.Context, client *http.Client, answersURL, allowedURL string) (*Corpus, error) {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	var answers, allowed []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		answers, err = fetchList(gctx, client, answersURL)
		return err
	})
	g.Go(func() error {
		var err error
		allowed, err = fetchList(gctx, client, allowedURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewCorpus(answers, allowed)
}

func fetchList(ctx context.Context, client *http.Client, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, res.StatusCode)
	}
	return assets.ReadWords(res.Body)
}

// Upgrade fetches remote lists and installs them into src on success.
// Failures are logged and leave the current corpus in place.
func Upgrade(ctx context.Context, src *Source, client *http.Client, answersURL, allowedURL string) bool {
	if answersURL == "" || allowedURL == "" {
		return false
	}
	c, err := Fetch(ctx, client, answersURL, allowedURL)
	if err != nil {
		log.Warn().Err(err).Msg("word list upgrade failed; keeping current corpus")
		return false
	}
	prev := src.Replace(c)
	a, g := c.Stats()
	ev := log.Info().Int("answers", a).Int("allowed", g)
	if prev != nil {
		pa, pg := prev.Stats()
		ev = ev.Int("prevAnswers", pa).Int("prevAllowed", pg)
	}
	ev.Msg("word lists upgraded")
	return true
}
