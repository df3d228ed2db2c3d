package streaming

import (
	"encoding/json"

	"github.com/launchdash/dashboard/pkg/core"
)

// Message type constants for the dashboard WebSocket protocol.
const (
	TypeHello  = "hello"
	TypeUpdate = "update"
	TypeFigure = "figure"
	TypeError  = "error"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HelloPayload is sent once after the connection is upgraded.
type HelloPayload struct {
	SessionID string `json:"sessionId"`
}

// UpdatePayload is sent by the page whenever an input component changes.
// Changed lists the component IDs whose value changed.
type UpdatePayload struct {
	Changed []string    `json:"changed"`
	Inputs  core.Inputs `json:"inputs"`
}

// FigurePayload carries a recomputed chart for one output component.
type FigurePayload struct {
	Output string         `json:"output"`
	Figure map[string]any `json:"figure"`
}

// ErrorPayload reports a callback failure for one output component.
type ErrorPayload struct {
	Output  string `json:"output,omitempty"`
	Message string `json:"message"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
