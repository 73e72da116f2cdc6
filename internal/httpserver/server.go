// internal/httpserver/server.go
//
// HTTP server wiring for the solver service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Corpus endpoints: GET /corpus, POST /corpus/reload (operator).
//   - Solve endpoints: POST /solve, POST /solve/explain.
//   - Daily endpoints: mounted by routes_daily.go.
//   - History endpoints: GET /history, GET /history/stats.
//   - Live endpoint (operator, websocket): mounted by routes_live.go.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - /live is registered outside the timeout group; an attempt can outlive
//     the 10s handler budget of the other routes.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/rishn/Wordler/internal/daily"
	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/live"
	"github.com/rishn/Wordler/internal/metrics"
	"github.com/rishn/Wordler/internal/solver"
	"github.com/rishn/Wordler/internal/store"
	"github.com/rishn/Wordler/internal/words"
)

// Options carries the server's collaborators.
type Options struct {
	Corpus  *words.Source
	History store.Store
	// Live drives /live; nil disables it.
	Live *live.Orchestrator
	// Reload rebuilds the corpus for /corpus/reload; nil disables it.
	Reload func(ctx context.Context) (*words.Corpus, error)

	OperatorSecret string
	DailySalt      string
	ClientOrigin   string
}

// Server bundles router and collaborators.
type Server struct {
	r    *chi.Mux
	opts Options
	now  func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), opts: opts, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	s.r.Handle("/metrics", promhttp.Handler())
	s.mountLive(s.r)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordler","endpoints":["/health","/metrics","/corpus","POST /solve","POST /solve/explain","/daily","/history","/live"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Get("/corpus", s.handleCorpus)
		r.With(s.requireOperator()).Post("/corpus/reload", s.handleReload)

		r.Post("/solve", s.handleSolve)
		r.Post("/solve/explain", s.handleExplain)
		s.mountDaily(r)

		r.Get("/history", s.handleHistory)
		r.Get("/history/stats", s.handleStats)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start serves HTTP on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ------------------------------ CORPUS -------------------------------------

type corpusRes struct {
	Answers int `json:"answers"`
	Allowed int `json:"allowed"`
}

func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	a, g := s.opts.Corpus.Corpus().Stats()
	_ = json.NewEncoder(w).Encode(corpusRes{Answers: a, Allowed: g})
}

// handleReload rebuilds the corpus and swaps it in as one unit.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.opts.Reload == nil {
		writeError(w, http.StatusNotImplemented, "reload_disabled")
		return
	}
	c, err := s.opts.Reload(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("corpus reload")
		writeError(w, http.StatusBadGateway, "reload_failed")
		return
	}
	s.opts.Corpus.Replace(c)
	a, g := c.Stats()
	metrics.SetCorpus(a, g)
	log.Info().Int("answers", a).Int("allowed", g).Str("operator", operatorFrom(r)).Msg("corpus reloaded")
	_ = json.NewEncoder(w).Encode(corpusRes{Answers: a, Allowed: g})
}

// ------------------------------- SOLVE -------------------------------------

// solveReq/Res payloads for POST /solve.
type solveReq struct {
	Mode   string `json:"mode"`   // "random" | "simulate" | "daily"
	Target string `json:"target"` // simulate only
}
type solveRes struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
	Date string `json:"date,omitempty"` // daily only
	solver.Summary
}

// handleSolve runs one simulated attempt and records it.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	if req.Mode == "" {
		req.Mode = "random"
	}

	c := s.opts.Corpus.Corpus()
	switch req.Mode {
	case "random":
		s.solve(w, r, req.Mode, c.RandomAnswer(), "")
	case "simulate":
		s.solve(w, r, req.Mode, req.Target, "")
	case "daily":
		pick := daily.Target(c, s.now(), s.opts.DailySalt)
		s.solve(w, r, req.Mode, pick.Answer, pick.Date)
	default:
		writeError(w, http.StatusBadRequest, "unknown mode "+strconv.Quote(req.Mode))
	}
}

// solve runs the attempt, records it and writes the result.
func (s *Server) solve(w http.ResponseWriter, r *http.Request, mode, target, date string) {
	c := s.opts.Corpus.Corpus()
	sum, err := solver.Solve(r.Context(), solver.NewSelector(c), target)
	var inputErr *words.InputError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Error())
		return
	case err != nil:
		log.Warn().Err(err).Str("mode", mode).Msg("solve interrupted")
		writeError(w, http.StatusServiceUnavailable, "solve_interrupted")
		return
	}
	res := solveRes{ID: uuid.NewString(), Mode: mode, Date: date, Summary: sum}

	outcome := metrics.OutcomeFailed
	if sum.Success {
		outcome = metrics.OutcomeSolved
	}
	metrics.RecordAttempt(mode, outcome, sum.Guesses())
	if err := s.opts.History.Record(r.Context(), store.Entry{ID: res.ID, Mode: mode, At: s.now().UTC(), Summary: sum}); err != nil {
		log.Warn().Err(err).Str("id", res.ID).Msg("record attempt")
	}
	_ = json.NewEncoder(w).Encode(res)
}

// explainReq/Res payloads for POST /solve/explain.
type explainStep struct {
	Guess   string `json:"guess"`
	Pattern string `json:"pattern"` // compact form, e.g. "G.Y.G"
}
type explainReq struct {
	History []explainStep `json:"history"`
}
type explainRes struct {
	Remaining  int                     `json:"remaining"`
	Candidates []string                `json:"candidates"` // first maxListed
	Next       solver.Selection        `json:"next"`
	Top        []solver.ScoreBreakdown `json:"top"` // best-scoring candidates
}

const (
	maxListed = 50
	maxScored = 120
	topN      = 5
)

// handleExplain replays a typed-in history and shows how the next guess
// would be chosen.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if len(req.History) > solver.MaxTurns {
		writeError(w, http.StatusBadRequest, "history longer than "+strconv.Itoa(solver.MaxTurns)+" guesses")
		return
	}
	history := make([]solver.GuessResult, 0, len(req.History))
	for i, st := range req.History {
		g, err := words.Validate(st.Guess)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := game.ParsePattern(st.Pattern)
		if err != nil {
			writeError(w, http.StatusBadRequest, "step "+strconv.Itoa(i+1)+": "+err.Error())
			return
		}
		history = append(history, solver.GuessResult{Guess: g, Pattern: p})
	}

	c := s.opts.Corpus.Corpus()
	cands := solver.FilterCandidates(c.Answers, history)
	var next solver.Selection
	if len(history) == 0 {
		next = solver.Selection{Word: solver.Opener}
	} else {
		next = solver.NewSelector(c).Pick(cands, history, nil)
	}

	cons := solver.DeriveConstraints(history)
	scored := cands[:min(len(cands), maxScored)]
	top := make([]solver.ScoreBreakdown, 0, len(scored))
	for _, word := range scored {
		top = append(top, solver.Score(word, cands, cons))
	}
	slices.SortStableFunc(top, func(a, b solver.ScoreBreakdown) int {
		switch {
		case a.Total > b.Total:
			return -1
		case a.Total < b.Total:
			return 1
		}
		return 0
	})

	_ = json.NewEncoder(w).Encode(explainRes{
		Remaining:  len(cands),
		Candidates: cands[:min(len(cands), maxListed)],
		Next:       next,
		Top:        top[:min(len(top), topN)],
	})
}

// ------------------------------ HISTORY ------------------------------------

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be 1-500")
			return
		}
		limit = n
	}
	entries, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("history")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.opts.History.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("history stats")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}
