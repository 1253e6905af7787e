package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type sessionUseCase interface {
	GetSession(ctx context.Context, id string) (entity.SessionView, error)
	ApplyMove(ctx context.Context, id string, position int) (entity.SessionView, entity.MoveResult, error)
	StartNewRound(ctx context.Context, id string) (entity.SessionView, error)
	RenamePlayers(ctx context.Context, id string, names entity.Names) (entity.SessionView, error)
}

type handlerFunc func(ctx context.Context, client *Client, payload *Payload) ResponsePayload

type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase
	hub      *Hub
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionUseCase, hub *Hub, allowedOrigins []string) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionRoundNew] = server.handleRoundNew
	server.handlers[actionSessionRename] = server.handleSessionRename
	server.handlers[actionSessionState] = server.handleSessionState

	return server
}

// Handler routes /ws/sessions/{sessionID} to the upgrade.
func (that *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/ws/sessions/{sessionID}", that.serveSession).Methods(http.MethodGet)

	return router
}

// Start serves sockets on port until ctx is canceled, then drops every client.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		that.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	}
}

func (that *Server) serveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	log := that.logger.With("method", "serveSession", "sessionID", sessionID)

	view, err := that.sessions.GetSession(r.Context(), sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(that.logger, that.hub, conn, sessionID)
	if !that.hub.register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()

	that.reply(client, actionSessionState, ResponsePayload{Session: &view})

	log.Info("client connected")

	client.readPump(r.Context(), that.processMessage)

	log.Info("client disconnected")
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowedOrigins, "*") {
			return true
		}
		return slices.Contains(allowedOrigins, origin)
	}
}
