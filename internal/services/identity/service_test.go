package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/symbolduel/internal/dependencies/mocks"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/storage/memory"
	"github.com/mcoot/symbolduel/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(memory.New(), s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegister() {
	user, err := s.service.Register(s.ctx, "  alice ")
	s.Require().NoError(err)

	s.Equal("alice", user.Username)
	s.Equal(s.clock.Now(), user.CreatedAt)
	_, err = uuid.Parse(string(user.ID))
	s.NoError(err)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterRequiresUsername() {
	_, err := s.service.Register(s.ctx, "   ")
	s.ErrorIs(err, model.ErrMissingIdentifier)
}

func (s *ServiceSuite) TestLogin() {
	registered, _ := s.service.Register(s.ctx, "alice")

	user, err := s.service.Login(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(registered.ID, user.ID)

	_, err = s.service.Login(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestGet() {
	registered, _ := s.service.Register(s.ctx, "alice")

	user, err := s.service.Get(s.ctx, registered.ID)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)

	_, err = s.service.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}
