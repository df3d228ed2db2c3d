package server

import (
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/launchdash/dashboard/pkg/streaming"
)

// session is one page connection with a single write goroutine.
type session struct {
	id     string
	conn   *ws.Conn
	sendCh chan []byte
	done   chan struct{} // closed on shutdown
	once   sync.Once
	hub    *Hub
}

// writeLoop drains sendCh and writes messages to the WebSocket.
func (s *session) writeLoop() {
	defer s.hub.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case data := <-s.sendCh:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.hub.logger.Warn("WebSocket SetWriteDeadline error", "session", s.id, "error", err)
				s.close()
				return
			}
			if err := s.conn.WriteMessage(ws.TextMessage, data); err != nil {
				s.hub.logger.Warn("WebSocket write error", "session", s.id, "error", err)
				s.close()
				return
			}
		}
	}
}

// readLoop handles client messages until the connection fails or closes.
func (s *session) readLoop() {
	defer s.hub.wg.Done()
	defer s.close()
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
					s.hub.logger.Warn("WebSocket read error", "session", s.id, "error", err)
				}
			}
			return
		}
		s.hub.handleMessage(s, message)
	}
}

// sendEnvelope queues a message for the write loop. Non-blocking; drops if
// the channel is full.
func (s *session) sendEnvelope(msgType string, payload any) {
	data, err := streaming.Marshal(msgType, payload)
	if err != nil {
		s.hub.logger.Error("Failed to marshal envelope", "type", msgType, "error", err)
		return
	}
	select {
	case <-s.done:
	case s.sendCh <- data:
	default:
		s.hub.logger.Warn("WebSocket send channel full, dropping message", "session", s.id, "type", msgType)
	}
}

// close sends a close frame and unblocks both loops. Safe to call repeatedly.
func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = s.conn.Close()
		s.hub.remove(s.id)
		s.hub.logger.Debug("Session closed", "session", s.id)
	})
}
