package storage

import (
	"context"

	"github.com/mcoot/symbolduel/internal/model"
)

// RoomStore persists rooms
type RoomStore interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
}

// UserStore persists registered identities
type UserStore interface {
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// MatchStore persists the history of finished matches
type MatchStore interface {
	SaveMatch(ctx context.Context, match *model.MatchRecord) error
	ListMatches(ctx context.Context, roomID model.RoomID) ([]*model.MatchRecord, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	RoomStore
	UserStore
	MatchStore
}
