package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/symbolduel/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := model.NewRoom("room-1", "alice", time.Now())

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(room.ID, retrieved.ID)
	s.Equal(room.Players, retrieved.Players)
	s.Equal(model.RoomStatusWaiting, retrieved.Status)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomIsCopied() {
	room := model.NewRoom("room-1", "alice", time.Now())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	room.Players[0].Score = 5
	retrieved, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(0, retrieved.Players[0].Score)

	retrieved.Status = model.RoomStatusFinished
	again, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, again.Status)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.False(exists)

	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("room-1", "alice", time.Now()))

	exists, err = s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestListRooms() {
	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("room-1", "alice", time.Now()))
	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("room-2", "bob", time.Now()))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 2)
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{ID: "user-1", Username: "alice", CreatedAt: time.Now()}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)

	byName, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), byName.ID)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.storage.GetUserByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Match tests

func (s *StorageSuite) TestSaveAndListMatches() {
	first := &model.MatchRecord{ID: "m-1", RoomID: "room-1", WinnerUserID: "alice", Scores: map[model.UserID]int{"alice": 3, "bob": 1}, Rounds: 4}
	second := &model.MatchRecord{ID: "m-2", RoomID: "room-1", WinnerUserID: "bob", Scores: map[model.UserID]int{"alice": 2, "bob": 3}, Rounds: 5}
	other := &model.MatchRecord{ID: "m-3", RoomID: "room-2", WinnerUserID: "carol"}

	s.Require().NoError(s.storage.SaveMatch(s.ctx, first))
	s.Require().NoError(s.storage.SaveMatch(s.ctx, second))
	s.Require().NoError(s.storage.SaveMatch(s.ctx, other))

	matches, err := s.storage.ListMatches(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal("m-1", matches[0].ID)
	s.Equal("m-2", matches[1].ID)
}

func (s *StorageSuite) TestListMatchesEmpty() {
	matches, err := s.storage.ListMatches(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Empty(matches)
}
