package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/entity"
)

// Hub tracks the sockets watching each session and fans session events out
// to them. Every send goes through the hub so a client's channel is never
// written after it was closed.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
	closed  bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "websocket_hub"),
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Publish broadcasts event to every socket watching its session. A deleted
// session drops its watchers.
func (that *Hub) Publish(_ context.Context, event entity.Event) error {
	session := event.Session
	data, err := encodeMessage(string(event.Type), ResponsePayload{
		Session: &session,
		Move:    event.Move,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for client := range that.clients[session.ID] {
		that.sendLocked(client, data)
	}

	if event.Type == entity.EventSessionDeleted {
		for client := range that.clients[session.ID] {
			that.removeLocked(client)
		}
	}

	return nil
}

// Close disconnects every client and refuses new ones.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, clients := range that.clients {
		for client := range clients {
			that.removeLocked(client)
		}
	}
	that.closed = true
}

// Watchers returns the number of sockets attached to a session.
func (that *Hub) Watchers(sessionID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.clients[sessionID])
}

func (that *Hub) register(client *Client) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	clients, ok := that.clients[client.sessionID]
	if !ok {
		clients = make(map[*Client]struct{})
		that.clients[client.sessionID] = clients
	}
	clients[client] = struct{}{}

	return true
}

func (that *Hub) unregister(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(client)
}

func (that *Hub) sendTo(client *Client, data []byte) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sendLocked(client, data)
}

func (that *Hub) sendLocked(client *Client, data []byte) {
	if _, ok := that.clients[client.sessionID][client]; !ok {
		return
	}

	select {
	case client.send <- data:
	default:
		that.logger.Warn("client is too slow, dropping it", "sessionID", client.sessionID)
		that.removeLocked(client)
	}
}

func (that *Hub) removeLocked(client *Client) {
	clients, ok := that.clients[client.sessionID]
	if !ok {
		return
	}

	if _, ok = clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(that.clients, client.sessionID)
	}
}
