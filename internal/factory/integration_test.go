package factory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/symbolduel/internal/dependencies/mocks"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/protocol"
	"github.com/mcoot/symbolduel/internal/realtime"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) send(conn *realtime.Conn, payload string) {
	s.app.Gateway.Handle(s.ctx, conn, []byte(payload))
}

func (s *IntegrationSuite) expect(conn *realtime.Conn, typ protocol.MessageType) protocol.Outbound {
	select {
	case data := <-conn.Messages():
		msg, err := protocol.Decode(data)
		s.Require().NoError(err)
		s.Require().Equal(typ, msg.Type(), "unexpected message on %s: %s", conn.ID(), data)
		return msg
	case <-time.After(2 * time.Second):
		s.FailNow(fmt.Sprintf("timed out waiting for %s on %s", typ, conn.ID()))
		return nil
	}
}

func (s *IntegrationSuite) expectAll(conns []*realtime.Conn, typ protocol.MessageType) protocol.Outbound {
	var msg protocol.Outbound
	for _, c := range conns {
		msg = s.expect(c, typ)
	}
	return msg
}

func (s *IntegrationSuite) submit(conn *realtime.Conn, round int, user string, seq []model.Symbol, ms int) {
	raw := `[`
	for i, sym := range seq {
		if i > 0 {
			raw += `,`
		}
		raw += `"` + string(sym) + `"`
	}
	raw += `]`
	s.send(conn, fmt.Sprintf(`{"type":"submit_sequence","round":%d,"userId":%q,"sequence":%s,"timeMs":%d}`, round, user, raw, ms))
}

// Test: Complete match flow from room creation to match end
func (s *IntegrationSuite) TestCompleteMatchFlow() {
	// Step 1: Register both players and create a room
	alice, err := s.app.IdentityService.Register(s.ctx, "alice")
	s.Require().NoError(err)
	bob, err := s.app.IdentityService.Register(s.ctx, "bob")
	s.Require().NoError(err)

	room, err := s.app.Registry.Create(s.ctx, alice.ID, "duel-1")
	s.Require().NoError(err)

	// Step 2: Both players connect and join
	aliceConn, bobConn := realtime.NewConn("alice"), realtime.NewConn("bob")
	conns := []*realtime.Conn{aliceConn, bobConn}

	s.send(aliceConn, fmt.Sprintf(`{"type":"join_room","roomId":%q,"userId":%q}`, room.ID, alice.ID))
	s.expect(aliceConn, protocol.TypeRoomState)
	s.send(bobConn, fmt.Sprintf(`{"type":"join_room","roomId":%q,"userId":%q}`, room.ID, bob.ID))
	state := s.expectAll(conns, protocol.TypeRoomState).(protocol.RoomState)
	s.Len(state.Players, 2)

	// Step 3: Both ready up
	s.send(aliceConn, fmt.Sprintf(`{"type":"player_ready","userId":%q}`, alice.ID))
	s.expectAll(conns, protocol.TypePlayerReady)
	s.send(bobConn, fmt.Sprintf(`{"type":"player_ready","userId":%q}`, bob.ID))
	s.expectAll(conns, protocol.TypePlayerReady)
	state = s.expectAll(conns, protocol.TypeRoomState).(protocol.RoomState)
	s.Equal(model.RoomStatusInRound, state.Status)

	// Step 4: Alice wins three rounds in a row on speed
	for round := 1; round <= model.WinThreshold; round++ {
		if round > 1 {
			s.expectAll(conns, protocol.TypeRoomState)
		}
		start := s.expectAll(conns, protocol.TypeRoundStart).(protocol.RoundStart)
		s.Equal(round, start.Round)

		s.app.MockClock.Advance(time.Duration(start.DisplayMs) * time.Millisecond)
		s.expectAll(conns, protocol.TypeEnterSequence)

		s.submit(aliceConn, round, string(alice.ID), start.Sequence, 800)
		s.submit(bobConn, round, string(bob.ID), start.Sequence, 1500)

		result := s.expectAll(conns, protocol.TypeRoundResult).(protocol.RoundResult)
		s.Require().NotNil(result.RoundWinnerUserID)
		s.Equal(alice.ID, *result.RoundWinnerUserID)
		s.Equal(round, result.Scores[alice.ID])
		s.Equal(0, result.Scores[bob.ID])
	}

	// Step 5: Match ends and is recorded
	end := s.expectAll(conns, protocol.TypeMatchEnd).(protocol.MatchEnd)
	s.Equal(alice.ID, end.WinnerUserID)
	s.Equal(map[model.UserID]int{alice.ID: 3, bob.ID: 0}, end.Scores)

	s.Eventually(func() bool {
		matches, err := s.app.Matches.ListMatches(s.ctx, room.ID)
		return err == nil && len(matches) == 1
	}, 2*time.Second, 10*time.Millisecond)

	matches, err := s.app.Matches.ListMatches(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(alice.ID, matches[0].WinnerUserID)
	s.Equal(3, matches[0].Rounds)

	finished, err := s.app.Registry.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFinished, finished.Status)
	s.Equal(3, s.app.MockJudge.CreateCallCount())
}

// Test: A finished match restarts from zero once both players are ready again
func (s *IntegrationSuite) TestRematch() {
	_, err := s.app.Registry.Create(s.ctx, "alice", "duel-2")
	s.Require().NoError(err)
	_, err = s.app.Orchestrator.Join(s.ctx, "duel-2", "bob")
	s.Require().NoError(err)

	_, err = s.app.Registry.Update(s.ctx, "duel-2", func(r *model.Room) error {
		r.Status = model.RoomStatusFinished
		r.Players[0].Score = 3
		r.Players[1].Score = 1
		r.CurrentRound = 4
		return nil
	})
	s.Require().NoError(err)

	aliceConn := realtime.NewConn("alice")
	s.send(aliceConn, `{"type":"join_room","roomId":"duel-2","userId":"alice"}`)
	rejoined := s.expect(aliceConn, protocol.TypeRoomState).(protocol.RoomState)
	s.Equal(model.RoomStatusFinished, rejoined.Status)

	s.send(aliceConn, `{"type":"player_ready","userId":"alice"}`)
	reset := s.expect(aliceConn, protocol.TypeRoomState).(protocol.RoomState)
	s.Equal(model.RoomStatusWaiting, reset.Status)
	for _, p := range reset.Players {
		s.Zero(p.Score)
	}
	s.expect(aliceConn, protocol.TypePlayerReady)

	room, err := s.app.Orchestrator.MarkReady(s.ctx, "duel-2", "bob")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusInRound, room.Status)
	s.Equal(1, room.CurrentRound)

	s.expect(aliceConn, protocol.TypePlayerReady)
	s.expect(aliceConn, protocol.TypeRoomState)
	start := s.expect(aliceConn, protocol.TypeRoundStart).(protocol.RoundStart)
	s.Equal(1, start.Round)
	s.Equal(mocks.DefaultSequence, start.Sequence)
}
