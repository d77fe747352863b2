package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/protocol"
)

// Binding is the room and player a connection speaks for
type Binding struct {
	RoomID model.RoomID
	UserID model.UserID
}

// Manager tracks the live connection of every player in every room and
// fans messages out to them. Players without a live connection miss
// broadcasts; nothing is queued for them.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[model.RoomID]map[model.UserID]*Conn
	bindings map[*Conn]Binding
	logger   *slog.Logger
}

// NewManager creates a new connection Manager
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		rooms:    make(map[model.RoomID]map[model.UserID]*Conn),
		bindings: make(map[*Conn]Binding),
		logger:   logger.With(slog.String("component", "realtime")),
	}
}

// Attach binds a connection to a player in a room, replacing any
// connection previously bound to that player
func (m *Manager) Attach(conn *Conn, roomID model.RoomID, userID model.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bindings[conn]; ok {
		m.unbindLocked(conn)
	}

	players, ok := m.rooms[roomID]
	if !ok {
		players = make(map[model.UserID]*Conn)
		m.rooms[roomID] = players
	}
	if prev, ok := players[userID]; ok && prev != conn {
		delete(m.bindings, prev)
		m.logger.Info("connection replaced",
			slog.String("room_id", string(roomID)),
			slog.String("user_id", string(userID)),
			slog.String("previous_conn_id", prev.id),
		)
	}

	players[userID] = conn
	m.bindings[conn] = Binding{RoomID: roomID, UserID: userID}

	m.logger.Info("connection attached",
		slog.String("room_id", string(roomID)),
		slog.String("user_id", string(userID)),
		slog.String("conn_id", conn.id),
		slog.Int("room_connections", len(players)),
	)
}

// Detach removes a connection's binding wherever it is. Room membership
// and scores are not affected.
func (m *Manager) Detach(conn *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bindings[conn]
	if !ok {
		return
	}
	m.unbindLocked(conn)

	m.logger.Info("connection detached",
		slog.String("room_id", string(b.RoomID)),
		slog.String("user_id", string(b.UserID)),
		slog.String("conn_id", conn.id),
		slog.Duration("connection_duration", time.Since(conn.connectedAt)),
	)
}

// unbindLocked must be called with mu held
func (m *Manager) unbindLocked(conn *Conn) {
	b := m.bindings[conn]
	delete(m.bindings, conn)
	if players, ok := m.rooms[b.RoomID]; ok && players[b.UserID] == conn {
		delete(players, b.UserID)
		if len(players) == 0 {
			delete(m.rooms, b.RoomID)
		}
	}
}

// Binding returns the room and player a connection is attached to
func (m *Manager) Binding(conn *Conn) (Binding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bindings[conn]
	return b, ok
}

// ConnectionCount returns the number of live connections in a room
func (m *Manager) ConnectionCount(roomID model.RoomID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[roomID])
}

// Broadcast sends a message to every live connection in a room
func (m *Manager) Broadcast(roomID model.RoomID, msg protocol.Outbound) {
	data, err := protocol.Encode(msg)
	if err != nil {
		m.logger.Error("failed to encode message",
			slog.String("type", string(msg.Type())),
			slog.String("error", err.Error()),
		)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	dropped := 0
	for userID, conn := range m.rooms[roomID] {
		if !conn.enqueue(data) {
			dropped++
			m.logger.Warn("message dropped - connection buffer full or closed",
				slog.String("room_id", string(roomID)),
				slog.String("user_id", string(userID)),
				slog.String("type", string(msg.Type())),
			)
		}
	}
	if dropped > 0 {
		m.logger.Warn("broadcast partial failure",
			slog.String("room_id", string(roomID)),
			slog.Int("sent", len(m.rooms[roomID])-dropped),
			slog.Int("dropped", dropped),
		)
	}
}

// Send delivers a message to a single connection
func (m *Manager) Send(conn *Conn, msg protocol.Outbound) {
	data, err := protocol.Encode(msg)
	if err != nil {
		m.logger.Error("failed to encode message",
			slog.String("type", string(msg.Type())),
			slog.String("error", err.Error()),
		)
		return
	}
	if !conn.enqueue(data) {
		m.logger.Warn("message dropped - connection buffer full or closed",
			slog.String("conn_id", conn.id),
			slog.String("type", string(msg.Type())),
		)
	}
}
