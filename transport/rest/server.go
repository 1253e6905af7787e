package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP API over the session use case.
func NewRouter(logger *slog.Logger, sessions sessionUseCase, allowedOrigins []string) http.Handler {
	h := newSessionHandlers(logger, sessions)

	router := mux.NewRouter()
	router.Use(requestLogger(logger))

	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	router.HandleFunc("/sessions", h.createSession).Methods(http.MethodPost)
	router.HandleFunc("/sessions", h.listSessions).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{sessionID}", h.getSession).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{sessionID}", h.deleteSession).Methods(http.MethodDelete)
	router.HandleFunc("/sessions/{sessionID}/moves", h.applyMove).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{sessionID}/rounds", h.startNewRound).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{sessionID}/names", h.renamePlayers).Methods(http.MethodPut)

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)

	return recovery(cors(router))
}

// Start serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	}
}
