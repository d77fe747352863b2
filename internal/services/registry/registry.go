package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mcoot/symbolduel/internal/dependencies/clock"
	"github.com/mcoot/symbolduel/internal/dependencies/random"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/storage"
)

const (
	// RoomIDPrefix starts every generated room id
	RoomIDPrefix = "room-"
	// RoomIDSuffixLength is the number of random characters in generated room ids
	RoomIDSuffixLength = 4
	// RoomIDAlphabet is the characters used in the random suffix
	RoomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	maxIDAttempts = 16
)

// ErrIDGeneration is returned when no free room id could be generated
var ErrIDGeneration = errors.New("could not generate a unique room id")

// RegistryInterface defines room creation, lookup and membership
type RegistryInterface interface {
	Create(ctx context.Context, host model.UserID, requestedID model.RoomID) (*model.Room, error)
	Get(ctx context.Context, id model.RoomID) (*model.Room, error)
	AddPlayer(ctx context.Context, id model.RoomID, userID model.UserID) (*model.Room, error)
	FindByUser(ctx context.Context, userID model.UserID) (*model.Room, error)
	Update(ctx context.Context, id model.RoomID, fn func(room *model.Room) error) (*model.Room, error)
}

// Ensure Registry implements RegistryInterface
var _ RegistryInterface = (*Registry)(nil)

// Registry owns the set of rooms. Every mutation of a room happens inside
// that room's critical section.
type Registry struct {
	storage storage.RoomStore
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu       sync.Mutex
	createMu sync.Mutex
	locks    map[model.RoomID]*sync.Mutex
}

// New creates a new Registry
func New(
	storage storage.RoomStore,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registry")),
		locks:   make(map[model.RoomID]*sync.Mutex),
	}
}

// Create makes a new waiting room with the host as its only player.
// When requestedID is empty a fresh id is generated.
func (r *Registry) Create(ctx context.Context, host model.UserID, requestedID model.RoomID) (*model.Room, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: host user id is required", model.ErrMissingIdentifier)
	}

	// Serialise creation so the existence check and save cannot interleave
	r.createMu.Lock()
	defer r.createMu.Unlock()

	id := requestedID
	if id != "" {
		exists, err := r.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrRoomExists
		}
	} else {
		var err error
		id, err = r.generateID(ctx)
		if err != nil {
			return nil, err
		}
	}

	room := model.NewRoom(id, host, r.clock.Now())
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("host_user_id", string(host)),
	)
	return room, nil
}

// generateID builds ids of the form room-<base36 unix millis>-<random suffix>
func (r *Registry) generateID(ctx context.Context) (model.RoomID, error) {
	stamp := strconv.FormatInt(r.clock.Now().UnixMilli(), 36)
	for range maxIDAttempts {
		id := model.RoomID(RoomIDPrefix + stamp + "-" + r.random.String(RoomIDSuffixLength, RoomIDAlphabet))
		exists, err := r.storage.RoomExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", ErrIDGeneration
}

// Get retrieves a room by id
func (r *Registry) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.GetRoom(ctx, id)
}

// AddPlayer adds a user to a room with a zero score
func (r *Registry) AddPlayer(ctx context.Context, id model.RoomID, userID model.UserID) (*model.Room, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrMissingIdentifier)
	}

	room, err := r.Update(ctx, id, func(room *model.Room) error {
		return room.AddPlayer(userID)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("player joined room",
		slog.String("room_id", string(id)),
		slog.String("user_id", string(userID)),
	)
	return room, nil
}

// FindByUser returns the room a user plays in. If the user belongs to
// several rooms the most recently updated one is returned.
func (r *Registry) FindByUser(ctx context.Context, userID model.UserID) (*model.Room, error) {
	rooms, err := r.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	var found *model.Room
	for _, room := range rooms {
		if !room.HasPlayer(userID) {
			continue
		}
		if found == nil || room.UpdatedAt.After(found.UpdatedAt) {
			found = room
		}
	}
	if found == nil {
		return nil, model.ErrRoomNotFound
	}
	return found, nil
}

// Update loads a room, applies fn and saves the result, all while holding
// the room's lock. If fn returns an error nothing is saved.
func (r *Registry) Update(ctx context.Context, id model.RoomID, fn func(room *model.Room) error) (*model.Room, error) {
	lock := r.roomLock(id)
	lock.Lock()
	defer lock.Unlock()

	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(room); err != nil {
		return nil, err
	}

	room.UpdatedAt = r.clock.Now()
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *Registry) roomLock(id model.RoomID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
