package entity

import "time"

type EventType string

const (
	EventSessionCreated EventType = "session:created"
	EventSessionRenamed EventType = "session:renamed"
	EventSessionDeleted EventType = "session:deleted"
	EventMoveAccepted   EventType = "move:accepted"
	EventRoundFinished  EventType = "round:finished"
	EventRoundStarted   EventType = "round:started"
)

// MoveView is the serializable form of a MoveResult.
type MoveView struct {
	Accepted bool         `json:"accepted"`
	Position int          `json:"position"`
	Mover    *Player      `json:"mover,omitempty"`
	Reason   RejectReason `json:"reason,omitempty"`
	Status   Status       `json:"status"`
}

func (that MoveResult) View() MoveView {
	view := MoveView{
		Accepted: that.Accepted,
		Position: that.Position,
		Reason:   that.Reason,
		Status:   that.Phase.Status,
	}

	if that.Mover.Valid() {
		mover := that.Mover
		view.Mover = &mover
	}

	return view
}

// Event describes a change to a session, fanned out to every publisher.
type Event struct {
	Type    EventType   `json:"type"`
	Session SessionView `json:"session"`
	Move    *MoveView   `json:"move,omitempty"`
	At      time.Time   `json:"at"`
}
