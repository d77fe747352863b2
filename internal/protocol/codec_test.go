package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symbolduel/internal/model"
)

func TestParse_JoinRoom(t *testing.T) {
	msg, err := Parse([]byte(`{"type":"join_room","roomId":"r1","userId":"alice"}`))

	require.NoError(t, err)
	assert.Equal(t, JoinRoom{RoomID: "r1", UserID: "alice"}, msg)
}

func TestParse_SubmitSequence(t *testing.T) {
	msg, err := Parse([]byte(`{"type":"submit_sequence","round":2,"userId":"bob","sequence":["★","●"],"timeMs":812}`))

	require.NoError(t, err)
	assert.Equal(t, SubmitSequence{
		Round:    2,
		UserID:   "bob",
		Sequence: []model.Symbol{"★", "●"},
		TimeMs:   812,
	}, msg)
}

func TestParse_SubmitSequenceEmptyAnswerAllowed(t *testing.T) {
	msg, err := Parse([]byte(`{"type":"submit_sequence","round":1,"userId":"bob","sequence":[],"timeMs":0}`))

	require.NoError(t, err)
	assert.Empty(t, msg.(SubmitSequence).Sequence)
}

func TestParse_PlayerReady(t *testing.T) {
	msg, err := Parse([]byte(`{"type":"player_ready","userId":"alice"}`))

	require.NoError(t, err)
	assert.Equal(t, PlayerReady{UserID: "alice"}, msg)
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"type":`,
		"missing type":      `{"userId":"alice"}`,
		"join missing room": `{"type":"join_room","userId":"alice"}`,
		"join missing user": `{"type":"join_room","roomId":"r1"}`,
		"submit no round":   `{"type":"submit_sequence","userId":"bob","sequence":[],"timeMs":1}`,
		"submit no time":    `{"type":"submit_sequence","round":1,"userId":"bob","sequence":[]}`,
		"submit no seq":     `{"type":"submit_sequence","round":1,"userId":"bob","timeMs":1}`,
		"submit negative":   `{"type":"submit_sequence","round":1,"userId":"bob","sequence":[],"timeMs":-5}`,
		"submit bad seq":    `{"type":"submit_sequence","round":1,"userId":"bob","sequence":[1,2],"timeMs":5}`,
		"ready no user":     `{"type":"player_ready"}`,
		"wrong field type":  `{"type":"player_ready","userId":7}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(payload))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParse_UnknownType(t *testing.T) {
	_, err := Parse([]byte(`{"type":"chat","text":"hi"}`))

	assert.ErrorIs(t, err, ErrUnknownType)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestEncode_AddsTypeDiscriminator(t *testing.T) {
	data, err := Encode(EnterSequence{Round: 3})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"enter_sequence","round":3}`, string(data))
}

func TestEncode_RoomState(t *testing.T) {
	room := model.NewRoom("r1", "alice", time.Now())
	require.NoError(t, room.AddPlayer("bob"))
	room.Players[0].Score = 2

	data, err := Encode(NewRoomState(room))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "room_state",
		"roomId": "r1",
		"players": [{"userId":"alice","score":2},{"userId":"bob","score":0}],
		"status": "waiting"
	}`, string(data))
}

func TestEncode_RoundResultNullWinner(t *testing.T) {
	data, err := Encode(RoundResult{
		Round:           1,
		CorrectSequence: []model.Symbol{"★"},
		Scores:          map[model.UserID]int{"alice": 0},
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "roundWinnerUserId")
	assert.Nil(t, decoded["roundWinnerUserId"])
}

func TestEncodeInbound_RoundTripsThroughParse(t *testing.T) {
	original := SubmitSequence{Round: 1, UserID: "alice", Sequence: []model.Symbol{"♥"}, TimeMs: 10}

	data, err := EncodeInbound(original)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestDecode(t *testing.T) {
	winner := model.UserID("bob")
	data, err := Encode(RoundResult{
		Round:             2,
		CorrectSequence:   []model.Symbol{"★", "●"},
		RoundWinnerUserID: &winner,
		Scores:            map[model.UserID]int{"alice": 0, "bob": 1},
	})
	require.NoError(t, err)

	msg, err := Decode(data)
	require.NoError(t, err)

	result, ok := msg.(RoundResult)
	require.True(t, ok)
	require.NotNil(t, result.RoundWinnerUserID)
	assert.Equal(t, winner, *result.RoundWinnerUserID)
	assert.Equal(t, 1, result.Scores["bob"])
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"join_room","roomId":"r1","userId":"a"}`))

	assert.ErrorIs(t, err, ErrUnknownType)
}
