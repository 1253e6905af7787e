package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
)

func (that *Server) processMessage(ctx context.Context, client *Client, data []byte) {
	log := that.logger.With("method", "processMessage", "sessionID", client.sessionID)

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug("failed to unmarshal message", "error", err)
		that.reply(client, actionError, ResponsePayload{Error: "malformed message"})
		return
	}

	handler, ok := that.handlers[msg.Action]
	if !ok {
		that.reply(client, msg.Action, ResponsePayload{Error: "unknown action " + msg.Action})
		return
	}

	var payload Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			that.reply(client, msg.Action, ResponsePayload{Error: "malformed payload"})
			return
		}
	}

	that.reply(client, msg.Action, handler(ctx, client, &payload))
}

func (that *Server) handleGameTurn(ctx context.Context, client *Client, payload *Payload) ResponsePayload {
	if payload.Position == nil {
		return ResponsePayload{Error: "position is required"}
	}

	view, result, err := that.sessions.ApplyMove(ctx, client.sessionID, *payload.Position)
	if err != nil {
		return that.failure("handleGameTurn", err)
	}

	move := result.View()
	resp := ResponsePayload{Session: &view, Move: &move}
	if moveErr := result.Err(); moveErr != nil {
		resp.Error = moveErr.Error()
	}

	return resp
}

func (that *Server) handleRoundNew(ctx context.Context, client *Client, _ *Payload) ResponsePayload {
	view, err := that.sessions.StartNewRound(ctx, client.sessionID)
	if err != nil {
		return that.failure("handleRoundNew", err)
	}

	return ResponsePayload{Session: &view}
}

func (that *Server) handleSessionRename(ctx context.Context, client *Client, payload *Payload) ResponsePayload {
	if payload.Names == nil {
		return ResponsePayload{Error: "names are required"}
	}

	view, err := that.sessions.RenamePlayers(ctx, client.sessionID, *payload.Names)
	if err != nil {
		return that.failure("handleSessionRename", err)
	}

	return ResponsePayload{Session: &view}
}

func (that *Server) handleSessionState(ctx context.Context, client *Client, _ *Payload) ResponsePayload {
	view, err := that.sessions.GetSession(ctx, client.sessionID)
	if err != nil {
		return that.failure("handleSessionState", err)
	}

	return ResponsePayload{Session: &view}
}

func (that *Server) failure(method string, err error) ResponsePayload {
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return ResponsePayload{Error: apperror.ErrSessionNotFound.Error()}
	}

	that.logger.Error("request failed", "method", method, "error", err)

	return ResponsePayload{Error: "internal server error"}
}

func (that *Server) reply(client *Client, action string, payload ResponsePayload) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode response", "action", action, "error", err)
		return
	}

	that.hub.sendTo(client, data)
}
