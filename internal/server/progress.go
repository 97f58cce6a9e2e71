package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleProgress streams scrape session events over a websocket. The client
// receives every event published while connected; history is not replayed.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, "progress streaming is not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The API already allows any origin; the websocket follows suit.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events, cancel := s.events.Subscribe()
	defer cancel()

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("Progress subscriber connected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 10*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancelWrite()
			if err != nil {
				s.log.Debug().Err(err).Msg("Progress subscriber dropped")
				return
			}
		}
	}
}
