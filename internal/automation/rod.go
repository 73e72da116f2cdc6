// internal/automation/rod.go
//
// Browser-rendered puzzle surface driven over the Chrome DevTools protocol.
// Responsibilities:
//   - Launch (or reuse) one Chrome process per Browser.
//   - Give every session its own incognito context, so local puzzle state
//     always starts clean.
//   - Type guesses at a bounded key rate and read tiles back through two
//     independent DOM attributes.

package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/live"
	"github.com/rishn/Wordler/internal/words"
)

// BrowserConfig configures the rod surface.
type BrowserConfig struct {
	URL        string
	Headless   bool
	Bin        string        // explicit chrome binary; auto-detected if empty
	NavTimeout time.Duration // navigation and reload bound
	KeyRate    float64       // keystrokes per second
}

// Browser hands out incognito sessions on a lazily started Chrome.
type Browser struct {
	cfg BrowserConfig

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowser builds a Browser; Chrome starts on the first Acquire.
func NewBrowser(cfg BrowserConfig) *Browser {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.KeyRate <= 0 {
		cfg.KeyRate = 20
	}
	return &Browser{cfg: cfg}
}

func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}
	l := launcher.New().Headless(b.cfg.Headless)
	if b.cfg.Bin != "" {
		l = l.Bin(b.cfg.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	br := rod.New().ControlURL(controlURL)
	if err := br.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	log.Info().Bool("headless", b.cfg.Headless).Msg("browser started")
	b.browser = br
	return br, nil
}

// Acquire opens a blank page in a fresh incognito context.
func (b *Browser) Acquire(ctx context.Context) (live.Adapter, error) {
	br, err := b.connect()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	incognito, err := br.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &PageSession{
		cfg:       b.cfg,
		incognito: incognito,
		page:      page,
		keys:      rate.NewLimiter(rate.Limit(b.cfg.KeyRate), 1),
	}, nil
}

// Close shuts Chrome down.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}

// DOM hooks of the rendered board.
const (
	tileSelector  = `[data-testid="tile"]`
	toastSelector = `[class*="Toast-module_toast"]`
)

const (
	jsClearStorage = `() => { try { localStorage.clear(); sessionStorage.clear(); } catch (e) {} }`

	jsDismiss = `() => {
		const sel = ['[data-testid="Play"]', 'button[aria-label="Close"]', '[class*="closeIcon"]',
			'#fides-banner button', 'button[class*="purr-blocker-card__button"]'];
		let n = 0;
		for (const s of sel) {
			document.querySelectorAll(s).forEach((el) => { el.click(); n++; });
		}
		return n;
	}`

	jsBoardReady = `(sel) => {
		const tiles = document.querySelectorAll(sel);
		if (tiles.length < 30) return false;
		return !document.querySelector('[role="dialog"]');
	}`

	// Resolves once row settles or a toast appears.
	jsRowSettled = `(sel, toast, row) => {
		if (document.querySelector(toast)) return true;
		const tiles = Array.from(document.querySelectorAll(sel)).slice(row * 5, row * 5 + 5);
		return tiles.length === 5 && tiles.every((t) => {
			const s = t.getAttribute('data-state');
			return s === 'correct' || s === 'present' || s === 'absent';
		});
	}`

	jsNoToast = `(toast) => !document.querySelector(toast)`

	jsToastText = `(toast) => {
		const t = document.querySelector(toast);
		return t ? t.textContent.trim() : '';
	}`

	jsRowAttr = `(sel, row, attr) => Array.from(document.querySelectorAll(sel))
		.slice(row * 5, row * 5 + 5)
		.map((t) => t.getAttribute(attr) || '')`
)

// PageSession is one incognito page showing one puzzle.
type PageSession struct {
	cfg       BrowserConfig
	incognito *rod.Browser
	page      *rod.Page
	keys      *rate.Limiter

	mu       sync.Mutex
	released bool
}

// Reset loads the puzzle, wipes persisted progress and dismisses dialogs.
func (s *PageSession) Reset(ctx context.Context) error {
	p := s.page.Context(ctx)
	nav := p.Timeout(s.cfg.NavTimeout)
	defer nav.CancelTimeout()
	if err := nav.Navigate(s.cfg.URL); err != nil {
		return fmt.Errorf("navigate %s: %w", s.cfg.URL, err)
	}
	if err := nav.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	if _, err := p.Eval(jsClearStorage); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	if err := nav.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return s.dismiss(ctx, p)
}

// dismiss clicks through onboarding and consent dialogs, which may appear
// one after another.
func (s *PageSession) dismiss(ctx context.Context, p *rod.Page) error {
	for i := 0; i < 3; i++ {
		res, err := p.Eval(jsDismiss)
		if err != nil {
			return fmt.Errorf("dismiss dialogs: %w", err)
		}
		if res.Value.Int() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}
	}
	return nil
}

// Ready waits until the full board is visible and no dialog covers it.
func (s *PageSession) Ready(ctx context.Context) error {
	p := s.page.Context(ctx)
	if err := s.dismiss(ctx, p); err != nil {
		return err
	}
	return p.Wait(rod.Eval(jsBoardReady, tileSelector))
}

// SubmitGuess types word and waits for the row to reveal or for a toast.
// The row index is the number of rows already revealed, which the board
// tracks itself.
func (s *PageSession) SubmitGuess(ctx context.Context, word string) (live.Submission, error) {
	w, err := words.Validate(word)
	if err != nil {
		return live.Submission{Reason: "malformed guess"}, nil
	}
	p := s.page.Context(ctx)
	if err := p.Wait(rod.Eval(jsNoToast, toastSelector)); err != nil {
		return live.Submission{}, fmt.Errorf("wait for toast to clear: %w", err)
	}
	row, err := s.revealedRows(p)
	if err != nil {
		return live.Submission{}, err
	}
	if err := s.typeKeys(ctx, keysOf(w)...); err != nil {
		return live.Submission{}, err
	}
	if err := s.typeKeys(ctx, input.Enter); err != nil {
		return live.Submission{}, err
	}
	if err := p.Wait(rod.Eval(jsRowSettled, tileSelector, toastSelector, row)); err != nil {
		return live.Submission{}, fmt.Errorf("wait for row %d: %w", row, err)
	}

	res, err := p.Eval(jsToastText, toastSelector)
	if err != nil {
		return live.Submission{}, fmt.Errorf("read toast: %w", err)
	}
	if toast := res.Value.Str(); toast != "" {
		// Still typed into the row; clear it before the next guess.
		back := make([]input.Key, words.Length)
		for i := range back {
			back[i] = input.Backspace
		}
		if err := s.typeKeys(ctx, back...); err != nil {
			return live.Submission{}, err
		}
		if settled, _ := s.rowSettled(p, row); !settled {
			return live.Submission{Accepted: false, Reason: strings.ToLower(toast)}, nil
		}
	}
	return live.Submission{Accepted: true}, nil
}

func (s *PageSession) rowSettled(p *rod.Page, row int) (bool, error) {
	marks, err := s.rowAttr(p, row, "data-state")
	if err != nil {
		return false, err
	}
	_, ok := patternFromStates(marks)
	return ok, nil
}

func (s *PageSession) revealedRows(p *rod.Page) (int, error) {
	for row := 0; row < 6; row++ {
		settled, err := s.rowSettled(p, row)
		if err != nil {
			return 0, err
		}
		if !settled {
			return row, nil
		}
	}
	return 0, errors.New("board is full")
}

func (s *PageSession) typeKeys(ctx context.Context, keys ...input.Key) error {
	for _, k := range keys {
		if err := s.keys.Wait(ctx); err != nil {
			return err
		}
		if err := s.page.Keyboard.Type(k); err != nil {
			return fmt.Errorf("type key: %w", err)
		}
	}
	return nil
}

// ReadPattern reads row turn via tile data-state (primary) or aria-label
// (secondary).
func (s *PageSession) ReadPattern(ctx context.Context, turn int, st live.Strategy) (live.Extraction, error) {
	p := s.page.Context(ctx)
	switch st {
	case live.Primary:
		states, err := s.rowAttr(p, turn, "data-state")
		if err != nil {
			return live.Extraction{}, err
		}
		pat, ok := patternFromStates(states)
		return live.Extraction{Pattern: pat, OK: ok}, nil
	case live.Secondary:
		labels, err := s.rowAttr(p, turn, "aria-label")
		if err != nil {
			return live.Extraction{}, err
		}
		pat, ok := patternFromLabels(labels)
		return live.Extraction{Pattern: pat, OK: ok}, nil
	}
	return live.Extraction{}, nil
}

func (s *PageSession) rowAttr(p *rod.Page, row int, attr string) ([]string, error) {
	res, err := p.Eval(jsRowAttr, tileSelector, row, attr)
	if err != nil {
		return nil, fmt.Errorf("read row %d %s: %w", row, attr, err)
	}
	arr := res.Value.Arr()
	out := make([]string, len(arr))
	for i, v := range arr {
		out[i] = v.Str()
	}
	return out, nil
}

// Release closes the page and disposes of its incognito context.
func (s *PageSession) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	s.released = true
	perr := s.page.Close()
	cerr := s.incognito.Close()
	return errors.Join(perr, cerr)
}

func keysOf(w string) []input.Key {
	keys := make([]input.Key, len(w))
	for i := 0; i < len(w); i++ {
		keys[i] = input.Key(w[i])
	}
	return keys
}

// markFromText maps a tile state or the last word of its label to a mark.
func markFromText(s string) (game.Mark, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct":
		return game.MarkCorrect, true
	case "present":
		return game.MarkPresent, true
	case "absent":
		return game.MarkAbsent, true
	}
	return "", false
}

func patternFromStates(states []string) (game.Pattern, bool) {
	var p game.Pattern
	if len(states) != len(p) {
		return p, false
	}
	for i, s := range states {
		m, ok := markFromText(s)
		if !ok {
			return game.Pattern{}, false
		}
		p[i] = m
	}
	return p, true
}

// patternFromLabels parses labels such as "1st letter, R, correct".
func patternFromLabels(labels []string) (game.Pattern, bool) {
	states := make([]string, len(labels))
	for i, l := range labels {
		parts := strings.Split(l, ",")
		last := parts[len(parts)-1]
		// Some boards phrase it "... is in the word but in the wrong spot".
		switch {
		case strings.Contains(l, "wrong spot"):
			last = "present"
		case strings.Contains(l, "not in the word"):
			last = "absent"
		case strings.Contains(l, "in the correct spot"):
			last = "correct"
		}
		states[i] = last
	}
	return patternFromStates(states)
}
