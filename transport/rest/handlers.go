package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/usecase"
)

const sessionIDVar = "sessionID"

type sessionUseCase interface {
	CreateSession(ctx context.Context, params usecase.CreateSessionParams) (entity.SessionView, error)
	GetSession(ctx context.Context, id string) (entity.SessionView, error)
	ListSessions(ctx context.Context) ([]entity.SessionView, error)
	ApplyMove(ctx context.Context, id string, position int) (entity.SessionView, entity.MoveResult, error)
	StartNewRound(ctx context.Context, id string) (entity.SessionView, error)
	RenamePlayers(ctx context.Context, id string, names entity.Names) (entity.SessionView, error)
	DeleteSession(ctx context.Context, id string) error
}

type createSessionRequest struct {
	Names          entity.Names   `json:"names"`
	StartingPlayer *entity.Player `json:"starting_player,omitempty"`
}

type moveRequest struct {
	Position *int `json:"position"`
}

type renameRequest struct {
	Names entity.Names `json:"names"`
}

type moveResponse struct {
	Move    entity.MoveView    `json:"move"`
	Session entity.SessionView `json:"session"`
	Error   string             `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionHandlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

func newSessionHandlers(logger *slog.Logger, sessions sessionUseCase) *sessionHandlers {
	return &sessionHandlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}
}

func (that *sessionHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !that.decode(w, r, &req) {
		return
	}

	view, err := that.sessions.CreateSession(r.Context(), usecase.CreateSessionParams{
		Names:          req.Names,
		StartingPlayer: req.StartingPlayer,
	})
	if err != nil {
		that.writeError(w, "createSession", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, view)
}

func (that *sessionHandlers) listSessions(w http.ResponseWriter, r *http.Request) {
	views, err := that.sessions.ListSessions(r.Context())
	if err != nil {
		that.writeError(w, "listSessions", err)
		return
	}

	that.writeJSON(w, http.StatusOK, views)
}

func (that *sessionHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := that.sessions.GetSession(r.Context(), mux.Vars(r)[sessionIDVar])
	if err != nil {
		that.writeError(w, "getSession", err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *sessionHandlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), mux.Vars(r)[sessionIDVar]); err != nil {
		that.writeError(w, "deleteSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *sessionHandlers) applyMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !that.decode(w, r, &req) {
		return
	}

	if req.Position == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "position is required"})
		return
	}

	view, result, err := that.sessions.ApplyMove(r.Context(), mux.Vars(r)[sessionIDVar], *req.Position)
	if err != nil {
		that.writeError(w, "applyMove", err)
		return
	}

	resp := moveResponse{
		Move:    result.View(),
		Session: view,
	}

	status := http.StatusOK
	if moveErr := result.Err(); moveErr != nil {
		resp.Error = moveErr.Error()
		status = rejectionStatus(result.Reason)
	}

	that.writeJSON(w, status, resp)
}

func (that *sessionHandlers) startNewRound(w http.ResponseWriter, r *http.Request) {
	view, err := that.sessions.StartNewRound(r.Context(), mux.Vars(r)[sessionIDVar])
	if err != nil {
		that.writeError(w, "startNewRound", err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *sessionHandlers) renamePlayers(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !that.decode(w, r, &req) {
		return
	}

	view, err := that.sessions.RenamePlayers(r.Context(), mux.Vars(r)[sessionIDVar], req.Names)
	if err != nil {
		that.writeError(w, "renamePlayers", err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

// decode reads the JSON body into dst. An empty body leaves dst untouched.
func (that *sessionHandlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}

	return true
}

func (that *sessionHandlers) writeError(w http.ResponseWriter, method string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *sessionHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrSessionIDMissing), errors.Is(err, apperror.ErrUnknownPlayer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func rejectionStatus(reason entity.RejectReason) int {
	if reason == entity.ReasonInvalidPosition {
		return http.StatusUnprocessableEntity
	}
	return http.StatusConflict
}
