package peer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	eventBuffer  = 16
	writeTimeout = 5 * time.Second
)

type eventStream struct {
	source EventSource
	log    *slog.Logger
}

func newEventStream(source EventSource, log *slog.Logger) *eventStream {
	return &eventStream{source: source, log: log.With("component", "peer_events")}
}

// ServeHTTP upgrades to a websocket and writes one JSON message per status
// transition until either side goes away.
func (s *eventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Local UIs run from extension and file origins.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	events, cancel := s.source.Subscribe(eventBuffer)
	defer cancel()

	// Incoming messages are ignored; CloseRead only watches for the close frame.
	ctx := conn.CloseRead(r.Context())
	s.log.Debug("subscriber connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("subscriber gone", "remote", r.RemoteAddr)
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "engine stopped")
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Error("encode event", "error", err)
				continue
			}
			if err := write(ctx, conn, data); err != nil {
				s.log.Debug("write event", "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
