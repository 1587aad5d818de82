package devtools

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reflow-ui/reflow/pkg/reactive"
)

const (
	// clientBuffer is the per-connection event buffer. Clients that fall
	// this far behind start losing events rather than stalling publishers.
	clientBuffer = 64

	writeTimeout = 10 * time.Second
)

// streamMessage is one event on the /ws stream.
type streamMessage struct {
	Engine string         `json:"engine"`
	Event  reactive.Event `json:"event"`
}

// hub fans engine events out to connected WebSocket clients.
type hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[chan streamMessage]struct{}
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[chan streamMessage]struct{}),
	}
}

func (h *hub) publish(msg streamMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// Slow consumer; drop the event for this client.
		}
	}
}

func (h *hub) subscribe() chan streamMessage {
	ch := make(chan streamMessage, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan streamMessage) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Inspection endpoint on a dev port; cross-origin tools are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	ch := s.hub.subscribe()
	defer func() {
		s.hub.unsubscribe(ch)
		conn.Close()
	}()

	// Reader: only to observe close; inbound payloads are ignored.
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
		case msg := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					s.logger.Error("websocket write failed", "error", err)
				}
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
