// Command wordler runs the adaptive Wordle solver: as an HTTP service, as a
// one-shot or batch simulator, or against a live puzzle board.
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rishn/Wordler/internal/config"
	"github.com/rishn/Wordler/internal/metrics"
	"github.com/rishn/Wordler/internal/store"
	"github.com/rishn/Wordler/internal/words"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by all subcommands, filled in before any of them run.
type app struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var logLevel, dbPath string
	root := &cobra.Command{
		Use:          "wordler",
		Short:        "Adaptive Wordle solver",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			if cmd.Flags().Changed("log-level") {
				a.cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("db") {
				a.cfg.DBPath = dbPath
			}
			setupLogging(cmd.ErrOrStderr(), a.cfg.LogLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite history file (overrides DB_PATH)")
	root.AddCommand(
		a.serveCmd(),
		a.solveCmd(),
		a.benchCmd(),
		a.liveCmd(),
		a.tokenCmd(),
	)
	return root
}

// setupLogging sets the global level and uses the console writer on a TTY.
func setupLogging(w io.Writer, level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// loadCorpus builds the word lists from local files (or the embedded ones).
func (a *app) loadCorpus() (*words.Source, error) {
	c, err := words.Load(words.Options{AnswersFile: a.cfg.AnswersFile, AllowedFile: a.cfg.AllowedFile})
	if err != nil {
		return nil, err
	}
	ans, all := c.Stats()
	metrics.SetCorpus(ans, all)
	log.Info().Int("answers", ans).Int("allowed", all).Msg("corpus loaded")
	return words.NewSource(c), nil
}

// reloadFunc rebuilds the corpus from the remote lists when configured,
// otherwise from local files.
func (a *app) reloadFunc(client *http.Client) func(ctx context.Context) (*words.Corpus, error) {
	return func(ctx context.Context) (*words.Corpus, error) {
		if a.cfg.AnswersURL != "" && a.cfg.AllowedURL != "" {
			return words.Fetch(ctx, client, a.cfg.AnswersURL, a.cfg.AllowedURL)
		}
		return words.Load(words.Options{AnswersFile: a.cfg.AnswersFile, AllowedFile: a.cfg.AllowedFile})
	}
}

// openHistory returns the SQLite history when DB_PATH is set, memory otherwise.
func (a *app) openHistory() (store.Store, func() error, error) {
	if a.cfg.DBPath == "" {
		return store.NewMemory(1000), func() error { return nil }, nil
	}
	db, err := store.OpenSQLite(a.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("path", a.cfg.DBPath).Msg("history database opened")
	return db, db.Close, nil
}
