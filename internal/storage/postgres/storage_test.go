package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/testutil"
)

type MatchStoreSuite struct {
	suite.Suite
	store *MatchStore
	ctx   context.Context
}

func TestMatchStoreSuite(t *testing.T) {
	suite.Run(t, new(MatchStoreSuite))
}

func (s *MatchStoreSuite) SetupTest() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	s.ctx = context.Background()

	store, err := Connect(s.ctx, dsn, testutil.NopLogger())
	s.Require().NoError(err)
	s.Require().NoError(store.Migrate(s.ctx))
	s.store = store

	_, err = store.conn.ExecContext(s.ctx, "DELETE FROM matches")
	s.Require().NoError(err)
}

func (s *MatchStoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *MatchStoreSuite) TestSaveAndListMatches() {
	finished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := &model.MatchRecord{
		ID:           "m-1",
		RoomID:       "room-1",
		WinnerUserID: "alice",
		Scores:       map[model.UserID]int{"alice": 3, "bob": 1},
		Rounds:       4,
		FinishedAt:   finished,
	}
	second := &model.MatchRecord{
		ID:           "m-2",
		RoomID:       "room-1",
		WinnerUserID: "bob",
		Scores:       map[model.UserID]int{"alice": 0, "bob": 3},
		Rounds:       3,
		FinishedAt:   finished.Add(time.Minute),
	}

	s.Require().NoError(s.store.SaveMatch(s.ctx, second))
	s.Require().NoError(s.store.SaveMatch(s.ctx, first))

	matches, err := s.store.ListMatches(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal("m-1", matches[0].ID)
	s.Equal(first.Scores, matches[0].Scores)
	s.Equal(model.UserID("bob"), matches[1].WinnerUserID)
	s.True(finished.Equal(matches[0].FinishedAt))
}

func (s *MatchStoreSuite) TestListMatchesEmpty() {
	matches, err := s.store.ListMatches(s.ctx, "room-unknown")
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *MatchStoreSuite) TestSaveMatchDuplicateID() {
	match := &model.MatchRecord{ID: "m-1", RoomID: "room-1", WinnerUserID: "alice", FinishedAt: time.Now()}

	s.Require().NoError(s.store.SaveMatch(s.ctx, match))
	s.Error(s.store.SaveMatch(s.ctx, match))
}
