package memory

import (
	"context"
	"sync"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Rooms are copied on the way in and out so callers never share state
// with the store.
type Storage struct {
	mu sync.RWMutex

	rooms         map[model.RoomID]*model.Room
	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	matches       map[model.RoomID][]*model.MatchRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:         make(map[model.RoomID]*model.Room),
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		matches:       make(map[model.RoomID][]*model.MatchRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room.Clone())
	}
	return rooms, nil
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.ID] = &u
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *match
	s.matches[match.RoomID] = append(s.matches[match.RoomID], &m)
	return nil
}

func (s *Storage) ListMatches(ctx context.Context, roomID model.RoomID) ([]*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]*model.MatchRecord, 0, len(s.matches[roomID]))
	for _, m := range s.matches[roomID] {
		c := *m
		matches = append(matches, &c)
	}
	return matches, nil
}
