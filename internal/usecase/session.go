package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/entity"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Session, error)
}

// Publisher receives every session event.
type Publisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

// Defaults are applied to sessions created without explicit names or
// starting player.
type Defaults struct {
	Names          entity.Names
	StartingPlayer entity.Player
}

type CreateSessionParams struct {
	Names          entity.Names
	StartingPlayer *entity.Player
}

// SessionManager hosts many independent sessions. Calls on one session are
// serialized; different sessions never wait on each other.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	publishers  []Publisher
	defaults    Defaults

	newID func() string
	now   func() time.Time

	locksMutex sync.Mutex
	locks      map[string]*sync.Mutex
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, defaults Defaults, publishers ...Publisher) *SessionManager {
	return &SessionManager{
		logger:      logger.With("component", "session_manager"),
		sessionRepo: sessionRepo,
		publishers:  publishers,
		defaults:    defaults,

		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },

		locks: make(map[string]*sync.Mutex),
	}
}

func (that *SessionManager) CreateSession(ctx context.Context, params CreateSessionParams) (entity.SessionView, error) {
	startingPlayer := that.defaults.StartingPlayer
	if params.StartingPlayer != nil {
		startingPlayer = *params.StartingPlayer
	}

	names := that.defaults.Names.Merge(params.Names)

	session, err := entity.NewSession(that.newID(), names, startingPlayer, that.now())
	if err != nil {
		return entity.SessionView{}, fmt.Errorf("failed to create session: %w", err)
	}

	unlock := that.lock(session.ID)
	defer unlock()

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return entity.SessionView{}, fmt.Errorf("failed to save session: %w", err)
	}

	view := session.View()
	that.publish(ctx, entity.EventSessionCreated, view, nil)

	that.logger.Info("session created", "sessionID", session.ID, "startingPlayer", startingPlayer.String())

	return view, nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (entity.SessionView, error) {
	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return entity.SessionView{}, err
	}

	return session.View(), nil
}

func (that *SessionManager) ListSessions(ctx context.Context) ([]entity.SessionView, error) {
	sessions, err := that.sessionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	views := make([]entity.SessionView, 0, len(sessions))
	for _, session := range sessions {
		unlock := that.lock(session.ID)
		views = append(views, session.View())
		unlock()
	}

	return views, nil
}

// ApplyMove plays position for the active player of the session. The error
// is reserved for unknown sessions and storage failures; a refused move is
// reported through the returned MoveResult.
func (that *SessionManager) ApplyMove(ctx context.Context, id string, position int) (entity.SessionView, entity.MoveResult, error) {
	log := that.logger.With("method", "ApplyMove", "sessionID", id, "position", position)

	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return entity.SessionView{}, entity.MoveResult{}, err
	}

	result := session.Game.ApplyMove(position)
	if !result.Accepted {
		log.Debug("move rejected", "reason", result.Reason.String())
		return session.View(), result, nil
	}

	if result.Phase.IsOver() {
		session.Score.Record(result.Phase)
	}
	session.UpdatedAt = that.now()

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return entity.SessionView{}, entity.MoveResult{}, fmt.Errorf("failed to update session: %w", err)
	}

	view := session.View()
	move := result.View()

	that.publish(ctx, entity.EventMoveAccepted, view, &move)

	if result.Phase.IsOver() {
		that.publish(ctx, entity.EventRoundFinished, view, &move)
		log.Info("round finished", "phase", result.Phase.String(), "round", session.Round)
	}

	return view, result, nil
}

// StartNewRound clears the board of the session for another round.
func (that *SessionManager) StartNewRound(ctx context.Context, id string) (entity.SessionView, error) {
	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return entity.SessionView{}, err
	}

	session.Game.StartNewRound()
	session.Round++
	session.UpdatedAt = that.now()

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return entity.SessionView{}, fmt.Errorf("failed to update session: %w", err)
	}

	view := session.View()
	that.publish(ctx, entity.EventRoundStarted, view, nil)

	return view, nil
}

// RenamePlayers rebinds display names; blank names keep the current ones.
func (that *SessionManager) RenamePlayers(ctx context.Context, id string, names entity.Names) (entity.SessionView, error) {
	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return entity.SessionView{}, err
	}

	session.Names = session.Names.Merge(names)
	session.UpdatedAt = that.now()

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return entity.SessionView{}, fmt.Errorf("failed to update session: %w", err)
	}

	view := session.View()
	that.publish(ctx, entity.EventSessionRenamed, view, nil)

	return view, nil
}

func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return err
	}

	if err = that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.publish(ctx, entity.EventSessionDeleted, session.View(), nil)
	that.forget(id)

	that.logger.Info("session deleted", "sessionID", id)

	return nil
}

// getSession must be called with the session lock held.
func (that *SessionManager) getSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		that.forget(id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// lock takes the mutex of one session and returns its release.
func (that *SessionManager) lock(id string) func() {
	that.locksMutex.Lock()
	mu, ok := that.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		that.locks[id] = mu
	}
	that.locksMutex.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (that *SessionManager) forget(id string) {
	that.locksMutex.Lock()
	delete(that.locks, id)
	that.locksMutex.Unlock()
}

// publish is best effort: a failing publisher is logged and skipped.
func (that *SessionManager) publish(ctx context.Context, eventType entity.EventType, view entity.SessionView, move *entity.MoveView) {
	log := that.logger.With("method", "publish", "sessionID", view.ID, "event", string(eventType))

	event := entity.Event{
		Type:    eventType,
		Session: view,
		Move:    move,
		At:      that.now(),
	}

	for _, p := range that.publishers {
		if err := p.Publish(ctx, event); err != nil {
			log.Error("failed to publish event", "error", err)
		}
	}
}
