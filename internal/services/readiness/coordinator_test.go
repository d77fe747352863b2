package readiness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/testutil"
)

type CoordinatorSuite struct {
	suite.Suite
	coordinator *Coordinator
	room        *model.Room
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.coordinator = New(testutil.NopLogger())
	s.room = model.NewRoom("r1", "alice", time.Now())
	s.Require().NoError(s.room.AddPlayer("bob"))
}

func (s *CoordinatorSuite) TestFirstReadyDoesNotStart() {
	outcome, err := s.coordinator.MarkReady(s.room, "alice")
	s.Require().NoError(err)

	s.False(outcome.StartRound)
	s.False(outcome.Reset)
	s.Equal([]model.UserID{"alice"}, s.room.Ready)
}

func (s *CoordinatorSuite) TestBothReadyStarts() {
	_, _ = s.coordinator.MarkReady(s.room, "alice")

	outcome, err := s.coordinator.MarkReady(s.room, "bob")
	s.Require().NoError(err)
	s.True(outcome.StartRound)
}

func (s *CoordinatorSuite) TestRepeatedReadyIsIdempotent() {
	_, _ = s.coordinator.MarkReady(s.room, "alice")

	outcome, err := s.coordinator.MarkReady(s.room, "alice")
	s.Require().NoError(err)
	s.False(outcome.StartRound)
	s.Len(s.room.Ready, 1)
}

func (s *CoordinatorSuite) TestSinglePlayerRoomNeverStarts() {
	room := model.NewRoom("r2", "alice", time.Now())

	outcome, err := s.coordinator.MarkReady(room, "alice")
	s.Require().NoError(err)
	s.False(outcome.StartRound)
}

func (s *CoordinatorSuite) TestNonMemberRejected() {
	_, err := s.coordinator.MarkReady(s.room, "mallory")
	s.ErrorIs(err, model.ErrNotInRoom)
	s.Empty(s.room.Ready)
}

func (s *CoordinatorSuite) TestReadyDuringRoundDoesNotStart() {
	s.room.BeginRound()
	_, _ = s.coordinator.MarkReady(s.room, "alice")

	outcome, err := s.coordinator.MarkReady(s.room, "bob")
	s.Require().NoError(err)
	s.False(outcome.StartRound)
}

func (s *CoordinatorSuite) TestReadyOnFinishedRoomResets() {
	s.room.Status = model.RoomStatusFinished
	s.room.CurrentRound = 4
	s.room.Players[0].Score = 3
	s.room.Players[1].Score = 1

	outcome, err := s.coordinator.MarkReady(s.room, "bob")
	s.Require().NoError(err)

	s.True(outcome.Reset)
	s.False(outcome.StartRound)
	s.Equal(model.RoomStatusWaiting, s.room.Status)
	s.Equal(0, s.room.CurrentRound)
	s.Equal(map[model.UserID]int{"alice": 0, "bob": 0}, s.room.Scores())
	s.Equal([]model.UserID{"bob"}, s.room.Ready)

	// The second player's signal starts the new match
	outcome, err = s.coordinator.MarkReady(s.room, "alice")
	s.Require().NoError(err)
	s.False(outcome.Reset)
	s.True(outcome.StartRound)
}
