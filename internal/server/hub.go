package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"github.com/launchdash/dashboard/internal/callbacks"
	"github.com/launchdash/dashboard/pkg/streaming"
)

const (
	sendChSize     = 64
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

// Hub tracks the WebSocket sessions of open dashboard pages and answers
// their update messages with recomputed figures.
type Hub struct {
	callbacks *callbacks.Manager
	upgrader  ws.Upgrader
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
	closed   bool
	wg       sync.WaitGroup
}

// NewHub creates a hub that runs updates through m.
func NewHub(m *callbacks.Manager, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		callbacks: m,
		upgrader: ws.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger:   logger.With("component", "hub"),
		sessions: make(map[string]*session),
	}
}

// ServeHTTP upgrades the request and starts a session.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	s := &session{
		id:     uuid.NewString(),
		conn:   conn,
		sendCh: make(chan []byte, sendChSize),
		done:   make(chan struct{}),
		hub:    h,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.sessions[s.id] = s
	h.wg.Add(2)
	h.mu.Unlock()

	h.logger.Debug("Session opened", "session", s.id, "remote", r.RemoteAddr)

	go s.writeLoop()
	go s.readLoop()

	s.sendEnvelope(streaming.TypeHello, streaming.HelloPayload{SessionID: s.id})
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close closes every session and waits for their goroutines to exit.
// New connections are refused afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	h.wg.Wait()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// handleMessage processes one client message.
func (h *Hub) handleMessage(s *session, raw []byte) {
	var env streaming.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.sendEnvelope(streaming.TypeError, streaming.ErrorPayload{Message: "malformed message"})
		return
	}
	if env.Type != streaming.TypeUpdate {
		s.sendEnvelope(streaming.TypeError, streaming.ErrorPayload{Message: "unsupported message type: " + env.Type})
		return
	}

	var update streaming.UpdatePayload
	if err := json.Unmarshal(env.Payload, &update); err != nil {
		s.sendEnvelope(streaming.TypeError, streaming.ErrorPayload{Message: "malformed update"})
		return
	}

	results, err := h.callbacks.Update(update.Changed, update.Inputs)
	if err != nil {
		h.logger.Error("Update failed", "session", s.id, "error", err)
		s.sendEnvelope(streaming.TypeError, streaming.ErrorPayload{Message: err.Error()})
		return
	}
	for _, r := range results {
		if r.Err != nil {
			s.sendEnvelope(streaming.TypeError, streaming.ErrorPayload{Output: r.Output, Message: r.Err.Error()})
			continue
		}
		s.sendEnvelope(streaming.TypeFigure, streaming.FigurePayload{Output: r.Output, Figure: r.Figure.Options()})
	}
}
