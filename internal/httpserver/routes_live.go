// internal/httpserver/routes_live.go
//
// GET /live (operator) upgrades to a websocket and streams one live attempt.
// Every orchestrator event is written as one JSON text frame; the server
// closes the socket normally after the terminal event. Closing the socket
// from the client cancels the attempt.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const liveWriteWait = 10 * time.Second

func (s *Server) mountLive(r chi.Router) {
	r.With(s.requireOperator()).Get("/live", s.handleLive)
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == s.opts.ClientOrigin
		},
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.opts.Live == nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeError(w, http.StatusServiceUnavailable, "live_disabled")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	att := s.opts.Live.Start(ctx)
	defer func() {
		for range att.Events {
		}
	}()

	hdr := http.Header{}
	hdr.Set("X-Attempt-Id", att.ID)
	ws, err := s.upgrader().Upgrade(w, r, hdr)
	if err != nil {
		log.Warn().Err(err).Str("attempt", att.ID).Msg("live upgrade")
		cancel()
		return
	}
	defer ws.Close()
	log.Info().Str("attempt", att.ID).Str("operator", operatorFrom(r)).Msg("live attempt started")

	// Reader: any read error means the client went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for ev := range att.Events {
		_ = ws.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := ws.WriteJSON(ev); err != nil {
			log.Warn().Err(err).Str("attempt", att.ID).Msg("live write")
			cancel()
			return
		}
	}
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "attempt finished"),
		time.Now().Add(liveWriteWait))
}
