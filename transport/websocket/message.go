package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/entity"
)

const (
	actionGameTurn      = "game:turn"
	actionRoundNew      = "round:new"
	actionSessionRename = "session:rename"
	actionSessionState  = "session:state"
	actionError         = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Position *int          `json:"position,omitempty"`
	Names    *entity.Names `json:"names,omitempty"`
}

type ResponsePayload struct {
	Session *entity.SessionView `json:"session,omitempty"`
	Move    *entity.MoveView    `json:"move,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func encodeMessage(action string, payload ResponsePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
