// Package protocol defines the realtime messages exchanged with clients.
// Every message is a JSON object with a "type" discriminator.
package protocol

import (
	"github.com/mcoot/symbolduel/internal/model"
)

// MessageType discriminates realtime messages
type MessageType string

// Inbound message types
const (
	TypeJoinRoom       MessageType = "join_room"
	TypeSubmitSequence MessageType = "submit_sequence"
	TypePlayerReady    MessageType = "player_ready"
)

// Outbound message types. player_ready is shared with the inbound set.
const (
	TypeRoomState     MessageType = "room_state"
	TypeRoundStart    MessageType = "round_start"
	TypeEnterSequence MessageType = "enter_sequence"
	TypeRoundResult   MessageType = "round_result"
	TypeMatchEnd      MessageType = "match_end"
	TypeError         MessageType = "error"
)

// Inbound is a message sent by a client
type Inbound interface {
	inbound()
	Type() MessageType
}

// JoinRoom asks to join (or re-attach to) a room
type JoinRoom struct {
	RoomID model.RoomID `json:"roomId"`
	UserID model.UserID `json:"userId"`
}

// SubmitSequence carries a player's answer for a round
type SubmitSequence struct {
	Round    int            `json:"round"`
	UserID   model.UserID   `json:"userId"`
	Sequence []model.Symbol `json:"sequence"`
	TimeMs   int            `json:"timeMs"`
}

// PlayerReady signals the player wants the next round or match to begin
type PlayerReady struct {
	UserID model.UserID `json:"userId"`
}

func (JoinRoom) inbound()       {}
func (SubmitSequence) inbound() {}
func (PlayerReady) inbound()    {}

func (JoinRoom) Type() MessageType       { return TypeJoinRoom }
func (SubmitSequence) Type() MessageType { return TypeSubmitSequence }
func (PlayerReady) Type() MessageType    { return TypePlayerReady }

// Outbound is a message sent to clients
type Outbound interface {
	outbound()
	Type() MessageType
}

// PlayerState is one entry of a room_state player list
type PlayerState struct {
	UserID model.UserID `json:"userId"`
	Score  int          `json:"score"`
}

// RoomState is the full public state of a room
type RoomState struct {
	RoomID  model.RoomID     `json:"roomId"`
	Players []PlayerState    `json:"players"`
	Status  model.RoomStatus `json:"status"`
}

// PlayerReadyNotice tells the room a player is ready
type PlayerReadyNotice struct {
	UserID model.UserID `json:"userId"`
}

// RoundStart reveals the sequence to memorise
type RoundStart struct {
	Round     int            `json:"round"`
	Sequence  []model.Symbol `json:"sequence"`
	DisplayMs int            `json:"displayMs"`
}

// EnterSequence tells players to hide the sequence and answer
type EnterSequence struct {
	Round int `json:"round"`
}

// RoundResult announces the outcome of a round
type RoundResult struct {
	Round             int                  `json:"round"`
	CorrectSequence   []model.Symbol       `json:"correctSequence"`
	RoundWinnerUserID *model.UserID        `json:"roundWinnerUserId"`
	Scores            map[model.UserID]int `json:"scores"`
}

// MatchEnd announces the match winner
type MatchEnd struct {
	WinnerUserID model.UserID         `json:"winnerUserId"`
	Scores       map[model.UserID]int `json:"scores"`
}

// Error reports a failure to clients
type Error struct {
	Message string `json:"message"`
}

func (RoomState) outbound()         {}
func (PlayerReadyNotice) outbound() {}
func (RoundStart) outbound()        {}
func (EnterSequence) outbound()     {}
func (RoundResult) outbound()       {}
func (MatchEnd) outbound()          {}
func (Error) outbound()             {}

func (RoomState) Type() MessageType         { return TypeRoomState }
func (PlayerReadyNotice) Type() MessageType { return TypePlayerReady }
func (RoundStart) Type() MessageType        { return TypeRoundStart }
func (EnterSequence) Type() MessageType     { return TypeEnterSequence }
func (RoundResult) Type() MessageType       { return TypeRoundResult }
func (MatchEnd) Type() MessageType          { return TypeMatchEnd }
func (Error) Type() MessageType             { return TypeError }

// NewRoomState builds the room_state message for a room
func NewRoomState(room *model.Room) RoomState {
	players := make([]PlayerState, len(room.Players))
	for i, p := range room.Players {
		players[i] = PlayerState{UserID: p.UserID, Score: p.Score}
	}
	return RoomState{
		RoomID:  room.ID,
		Players: players,
		Status:  room.Status,
	}
}
