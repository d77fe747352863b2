package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/symbolduel/internal/dependencies/clock"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/storage"
)

// Service issues and resolves user identities
type Service struct {
	storage storage.UserStore
	clock   clock.Clock
	logger  *slog.Logger

	// registerMu keeps the username check and save together
	registerMu sync.Mutex
}

// New creates a new identity Service
func New(storage storage.UserStore, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// Register creates a user with a unique username
func (s *Service) Register(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrMissingIdentifier)
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	_, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	user := &model.User{
		ID:        model.UserID(uuid.NewString()),
		Username:  username,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", string(user.ID)),
		slog.String("username", username),
	)
	return user, nil
}

// Login resolves a user by username
func (s *Service) Login(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrMissingIdentifier)
	}
	return s.storage.GetUserByUsername(ctx, username)
}

// Get resolves a user by id
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}
