// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily puzzle.
// Exposes two endpoints under /daily:
//   - GET  /daily        → today's (or ?date=) date key and answer index
//   - POST /daily/solve  → solve that day's puzzle and record the attempt
//
// The answer itself is never listed; it only appears in a solved summary.
// Word selection is deterministic on date + salt.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rishn/Wordler/internal/daily"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDaily)
		r.Post("/solve", s.handleDailySolve)
	})
}

// dailyPick resolves ?date=YYYY-MM-DD (default: today, UTC).
func (s *Server) dailyPick(w http.ResponseWriter, r *http.Request) (daily.Pick, bool) {
	t := s.now()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return daily.Pick{}, false
		}
		t = d
	}
	return daily.Target(s.opts.Corpus.Corpus(), t, s.opts.DailySalt), true
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	pick, ok := s.dailyPick(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(pick)
}

func (s *Server) handleDailySolve(w http.ResponseWriter, r *http.Request) {
	pick, ok := s.dailyPick(w, r)
	if !ok {
		return
	}
	s.solve(w, r, "daily", pick.Answer, pick.Date)
}
