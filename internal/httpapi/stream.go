package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"fswatcher/internal/util/logger/sl"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleStream upgrades to a websocket and forwards the engine's
// notification stream until the client disconnects. The websocket is
// just one more sink on the shared emitter.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("stream upgrade failed", sl.Err(err))
		return
	}
	defer conn.Close()

	notifications, cancel := s.engine.Subscribe()
	defer cancel()

	// Reader goroutine: the client never sends payloads, but reading
	// is how we learn about the close frame.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		}
	}
}
