package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rishn/Wordler/internal/automation"
	"github.com/rishn/Wordler/internal/daily"
	"github.com/rishn/Wordler/internal/httpserver"
	"github.com/rishn/Wordler/internal/live"
	"github.com/rishn/Wordler/internal/metrics"
	"github.com/rishn/Wordler/internal/solver"
	"github.com/rishn/Wordler/internal/store"
	"github.com/rishn/Wordler/internal/words"
)

// --- serve ---

func (a *app) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (solve, history, live websocket, metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}

			src, err := a.loadCorpus()
			if err != nil {
				return err
			}
			client := &http.Client{Timeout: 15 * time.Second}
			go func() {
				if words.Upgrade(ctx, src, client, a.cfg.AnswersURL, a.cfg.AllowedURL) {
					ans, all := src.Corpus().Stats()
					metrics.SetCorpus(ans, all)
				}
			}()

			hist, closeHist, err := a.openHistory()
			if err != nil {
				return err
			}
			defer closeHist()

			browser := automation.NewBrowser(automation.BrowserConfig{
				URL:        a.cfg.Live.URL,
				Headless:   a.cfg.Live.Headless,
				Bin:        a.cfg.Live.BrowserBin,
				NavTimeout: a.cfg.Live.NavTimeout,
				KeyRate:    a.cfg.Live.KeyRate,
			})
			defer func() {
				if err := browser.Close(); err != nil {
					log.Warn().Err(err).Msg("close browser")
				}
			}()

			srv := httpserver.New(httpserver.Options{
				Corpus:         src,
				History:        hist,
				Live:           live.New(src, browser, hist, a.liveConfig()),
				Reload:         a.reloadFunc(client),
				OperatorSecret: a.cfg.OperatorSecret,
				DailySalt:      a.cfg.DailySalt,
				ClientOrigin:   a.cfg.ClientOrigin,
			})
			log.Info().Str("port", a.cfg.Port).Msg("starting wordler")
			if err := srv.Start(ctx, ":"+a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func (a *app) liveConfig() live.Config {
	return live.Config{
		StepTimeout:   a.cfg.Live.StepTimeout,
		SetupTimeout:  a.cfg.Live.NavTimeout,
		MaxRejections: a.cfg.Live.MaxRejections,
	}
}

// --- solve ---

func (a *app) solveCmd() *cobra.Command {
	var (
		target  string
		isDaily bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one puzzle in simulation and print every step",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.loadCorpus()
			if err != nil {
				return err
			}
			c := src.Corpus()
			mode := "simulate"
			switch {
			case isDaily:
				pick := daily.Target(c, time.Now(), a.cfg.DailySalt)
				target, mode = pick.Answer, "daily"
			case target == "":
				target, mode = c.RandomAnswer(), "random"
			}

			sum, err := solver.Solve(cmd.Context(), solver.NewSelector(c), target)
			if err != nil {
				return err
			}
			hist, closeHist, err := a.openHistory()
			if err != nil {
				return err
			}
			defer closeHist()
			if err := hist.Record(cmd.Context(), store.Entry{ID: uuid.NewString(), Mode: mode, Summary: sum}); err != nil {
				log.Warn().Err(err).Msg("record attempt")
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sum)
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "answer to solve for (random answer if empty)")
	cmd.Flags().BoolVar(&isDaily, "daily", false, "solve today's daily puzzle")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.MarkFlagsMutuallyExclusive("target", "daily")
	return cmd
}

func printSummary(w io.Writer, sum solver.Summary) {
	for i, st := range sum.Steps {
		note := ""
		if st.Degraded {
			note = "  (unreadable)"
		}
		fmt.Fprintf(w, "%d  %s  %s  %5d left%s\n", i+1, strings.ToUpper(st.Guess), st.Pattern, st.Remaining, note)
	}
	if sum.Success {
		fmt.Fprintf(w, "solved %q in %d\n", sum.Answer, sum.Guesses())
		return
	}
	fmt.Fprintf(w, "failed after %d guesses\n", sum.Guesses())
}

// --- bench ---

func (a *app) benchCmd() *cobra.Command {
	var limit, workers int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Solve every answer in the corpus and report the win rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.loadCorpus()
			if err != nil {
				return err
			}
			c := src.Corpus()
			targets := c.Answers
			if limit > 0 && limit < len(targets) {
				targets = targets[:limit]
			}
			sel := solver.NewSelector(c)
			results := store.NewMemory(len(targets))
			hist, closeHist, err := a.openHistory()
			if err != nil {
				return err
			}
			defer closeHist()

			start := time.Now()
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(workers, 1))
			for _, target := range targets {
				g.Go(func() error {
					sum, err := solver.Solve(ctx, sel, target)
					if err != nil {
						return fmt.Errorf("solve %s: %w", target, err)
					}
					outcome := metrics.OutcomeFailed
					if sum.Success {
						outcome = metrics.OutcomeSolved
					} else {
						log.Debug().Str("target", target).Msg("bench miss")
					}
					metrics.RecordAttempt("bench", outcome, sum.Guesses())
					if err := hist.Record(ctx, store.Entry{ID: uuid.NewString(), Mode: "bench", Summary: sum}); err != nil {
						log.Warn().Err(err).Str("target", target).Msg("record attempt")
					}
					return results.Record(ctx, store.Entry{ID: target, Mode: "bench", Summary: sum})
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			st, err := results.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), st, time.Since(start))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "solve only the first n answers (0 = all)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent solves")
	return cmd
}

func printStats(w io.Writer, st store.Stats, took time.Duration) {
	rate := 0.0
	if st.Attempts > 0 {
		rate = float64(st.Wins) / float64(st.Attempts)
	}
	fmt.Fprintf(w, "attempts %d  wins %d  win rate %.3f  mean guesses %.3f  (%s)\n",
		st.Attempts, st.Wins, rate, st.MeanGuesses, took.Round(time.Millisecond))
	for n := 1; n <= solver.MaxTurns; n++ {
		fmt.Fprintf(w, "  %d: %d\n", n, st.Histogram[n])
	}
}

// --- live ---

func (a *app) liveCmd() *cobra.Command {
	var (
		local  bool
		target string
	)
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Drive one live attempt and stream its events as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := a.loadCorpus()
			if err != nil {
				return err
			}
			hist, closeHist, err := a.openHistory()
			if err != nil {
				return err
			}
			defer closeHist()

			var sessions live.Sessions
			if local {
				sessions = automation.NewLocal(src, target)
			} else {
				b := automation.NewBrowser(automation.BrowserConfig{
					URL:        a.cfg.Live.URL,
					Headless:   a.cfg.Live.Headless,
					Bin:        a.cfg.Live.BrowserBin,
					NavTimeout: a.cfg.Live.NavTimeout,
					KeyRate:    a.cfg.Live.KeyRate,
				})
				defer b.Close()
				sessions = b
			}

			att := live.New(src, sessions, hist, a.liveConfig()).Start(ctx)
			enc := json.NewEncoder(cmd.OutOrStdout())
			var solved bool
			for ev := range att.Events {
				if err := enc.Encode(ev); err != nil {
					return err
				}
				if c, ok := ev.(live.CompleteEvent); ok {
					solved = c.Success
				}
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !solved {
				return errors.New("live attempt did not solve the puzzle")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "use the in-process board instead of a browser")
	cmd.Flags().StringVarP(&target, "target", "t", "", "answer for the in-process board (random if empty)")
	return cmd
}

// --- token ---

func (a *app) tokenCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for /corpus/reload and /live",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, exp, err := httpserver.SignOperatorToken(a.cfg.OperatorSecret, subject, a.cfg.OperatorTokenDays)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			log.Info().Str("subject", subject).Time("expires", exp).Msg("operator token issued")
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "name recorded with operator actions")
	return cmd
}
