package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/protocol"
	"github.com/mcoot/symbolduel/internal/testutil"
)

func drain(conn *Conn) []protocol.Outbound {
	var msgs []protocol.Outbound
	for {
		select {
		case data := <-conn.Messages():
			msg, err := protocol.Decode(data)
			if err != nil {
				panic(err)
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestManager_BroadcastReachesAttachedConnections(t *testing.T) {
	m := NewManager(testutil.NopLogger())
	alice, bob, other := NewConn("c1"), NewConn("c2"), NewConn("c3")
	m.Attach(alice, "r1", "alice")
	m.Attach(bob, "r1", "bob")
	m.Attach(other, "r2", "carol")

	m.Broadcast("r1", protocol.EnterSequence{Round: 1})

	assert.Equal(t, []protocol.Outbound{protocol.EnterSequence{Round: 1}}, drain(alice))
	assert.Equal(t, []protocol.Outbound{protocol.EnterSequence{Round: 1}}, drain(bob))
	assert.Empty(t, drain(other))
}

func TestManager_AttachReplacesPreviousConnection(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	m := NewManager(logger)
	first, second := NewConn("c1"), NewConn("c2")
	m.Attach(first, "r1", "alice")
	m.Attach(second, "r1", "alice")

	m.Broadcast("r1", protocol.EnterSequence{Round: 2})

	assert.Empty(t, drain(first))
	assert.Len(t, drain(second), 1)
	assert.Equal(t, 1, m.ConnectionCount("r1"))

	_, ok := m.Binding(first)
	assert.False(t, ok)

	assert.Equal(t, []string{"connection attached", "connection replaced", "connection attached"}, logs.Messages())
}

func TestManager_AttachMovesConnectionBetweenRooms(t *testing.T) {
	m := NewManager(testutil.NopLogger())
	conn := NewConn("c1")
	m.Attach(conn, "r1", "alice")
	m.Attach(conn, "r2", "alice")

	assert.Equal(t, 0, m.ConnectionCount("r1"))
	assert.Equal(t, 1, m.ConnectionCount("r2"))

	b, ok := m.Binding(conn)
	require.True(t, ok)
	assert.Equal(t, Binding{RoomID: "r2", UserID: "alice"}, b)
}

func TestManager_Detach(t *testing.T) {
	m := NewManager(testutil.NopLogger())
	alice, bob := NewConn("c1"), NewConn("c2")
	m.Attach(alice, "r1", "alice")
	m.Attach(bob, "r1", "bob")

	m.Detach(alice)
	m.Detach(alice)
	m.Broadcast("r1", protocol.Error{Message: "x"})

	assert.Empty(t, drain(alice))
	assert.Len(t, drain(bob), 1)
	assert.Equal(t, 1, m.ConnectionCount("r1"))
}

func TestManager_DetachOfReplacedConnectionKeepsNewOne(t *testing.T) {
	m := NewManager(testutil.NopLogger())
	first, second := NewConn("c1"), NewConn("c2")
	m.Attach(first, "r1", "alice")
	m.Attach(second, "r1", "alice")

	m.Detach(first)

	assert.Equal(t, 1, m.ConnectionCount("r1"))
}

func TestManager_BroadcastDropsWhenBufferFull(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	m := NewManager(logger)
	slow, fast := NewConn("c1"), NewConn("c2")
	m.Attach(slow, "r1", "alice")
	m.Attach(fast, "r1", "bob")

	for i := 0; i < sendBufferSize+5; i++ {
		m.Broadcast("r1", protocol.EnterSequence{Round: i})
		drain(fast)
	}

	assert.Len(t, drain(slow), sendBufferSize)

	var partial []map[string]any
	for _, e := range logs.Entries() {
		if e["msg"] == "broadcast partial failure" {
			partial = append(partial, e)
		}
	}
	require.Len(t, partial, 5)
	assert.EqualValues(t, 1, partial[0]["dropped"])
	assert.EqualValues(t, 1, partial[0]["sent"])
}

func TestManager_ClosedConnectionIsSkipped(t *testing.T) {
	m := NewManager(testutil.NopLogger())
	conn := NewConn("c1")
	m.Attach(conn, "r1", "alice")
	conn.Close()

	m.Broadcast("r1", protocol.EnterSequence{Round: 1})
	m.Send(conn, protocol.Error{Message: "x"})

	assert.Empty(t, drain(conn))
}

func TestManager_Send(t *testing.T) {
	m := NewManager(testutil.NopLogger())
	conn := NewConn("c1")

	m.Send(conn, protocol.Error{Message: "room not found"})

	assert.Equal(t, []protocol.Outbound{protocol.Error{Message: "room not found"}}, drain(conn))
}

func TestManager_BroadcastToRoomWithoutConnections(t *testing.T) {
	m := NewManager(testutil.NopLogger())

	assert.NotPanics(t, func() {
		m.Broadcast(model.RoomID("empty"), protocol.EnterSequence{Round: 1})
	})
}
