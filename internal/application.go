package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/config"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/repository/storage"
	redisTransport "github.com/rocketscienceinc/tictactoe-rounds/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-rounds/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rounds/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startingPlayer, err := entity.ParsePlayer(conf.Game.StartingPlayer)
	if err != nil {
		return fmt.Errorf("invalid game.starting-player: %w", err)
	}

	defaults := usecase.Defaults{
		Names: entity.Names{
			X: conf.Game.PlayerXName,
			O: conf.Game.PlayerOName,
		},
		StartingPlayer: startingPlayer,
	}

	hub := websocket.NewHub(logger)
	publishers := []usecase.Publisher{hub}

	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		publishers = append(publishers, redisTransport.NewPublisher(redisStorage, conf.Redis.Channel))
		log.Info("Publishing session events to redis", "addr", redisAddrString, "channel", conf.Redis.Channel)
	}

	sessionRepo := repository.NewSessionRepository()
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, defaults, publishers...)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, sessionManager, conf.AllowedOrigins)
		httpErrCh <- rest.Start(ctx, conf.HTTPPort, router)
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessionManager, hub, conf.AllowedOrigins)
		wsErrCh <- wsServer.Start(ctx, conf.SocketPort)
	}()

	select {
	case err = <-httpErrCh:
		cancel()
		<-wsErrCh
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case err = <-wsErrCh:
		cancel()
		<-httpErrCh
		if err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
		if err = errors.Join(<-httpErrCh, <-wsErrCh); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	log.Info("Application stopped")

	return nil
}
