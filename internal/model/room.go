package model

import "time"

// Room rules
const (
	MaxPlayers   = 2
	WinThreshold = 3
)

// RoomID uniquely identifies a room
type RoomID string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusInRound  RoomStatus = "in_round"
	RoomStatusFinished RoomStatus = "finished"
)

// RoundPhase is the sub-state of an active round
type RoundPhase string

const (
	// PhaseDisplaying means the sequence is being shown to players
	PhaseDisplaying RoundPhase = "displaying"
	// PhaseCollecting means answers are being accepted
	PhaseCollecting RoundPhase = "collecting"
	// PhaseResolving means all answers are in and the judge is grading them
	PhaseResolving RoundPhase = "resolving"
)

// Player is a member of a room with their cumulative score
type Player struct {
	UserID UserID
	Score  int
}

// Answer is a player's submission for one round
type Answer struct {
	UserID    UserID
	Sequence  []Symbol
	ElapsedMs int
}

// RoundState holds the active round once the judge has produced a sequence.
// A nil RoundState on a room means no sequence is active.
type RoundState struct {
	Phase     RoundPhase
	Sequence  []Symbol
	DisplayMs int
	Answers   []Answer
}

// Room is the central aggregate: two players, their scores and the round in play
type Room struct {
	ID           RoomID
	HostUserID   UserID
	Players      []Player
	Status       RoomStatus
	CurrentRound int
	Round        *RoundState
	Ready        []UserID

	// Epoch changes whenever a round starts or the match resets, so
	// callbacks scheduled for an earlier round can detect they are stale.
	Epoch uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates a waiting room with the host as its only player
func NewRoom(id RoomID, host UserID, now time.Time) *Room {
	return &Room{
		ID:         id,
		HostUserID: host,
		Players:    []Player{{UserID: host}},
		Status:     RoomStatusWaiting,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasPlayer checks if a user is a member of the room
func (r *Room) HasPlayer(userID UserID) bool {
	return r.playerIndex(userID) >= 0
}

func (r *Room) playerIndex(userID UserID) int {
	for i, p := range r.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// IsFull checks if the room has reached its player limit
func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxPlayers
}

// AddPlayer appends a new member with a zero score
func (r *Room) AddPlayer(userID UserID) error {
	if r.HasPlayer(userID) {
		return ErrAlreadyJoined
	}
	if r.IsFull() {
		return ErrRoomFull
	}
	r.Players = append(r.Players, Player{UserID: userID})
	return nil
}

// Scores returns the score of every player keyed by user
func (r *Room) Scores() map[UserID]int {
	scores := make(map[UserID]int, len(r.Players))
	for _, p := range r.Players {
		scores[p.UserID] = p.Score
	}
	return scores
}

// IsReady checks if a user has signalled readiness
func (r *Room) IsReady(userID UserID) bool {
	for _, id := range r.Ready {
		if id == userID {
			return true
		}
	}
	return false
}

// MarkReady adds a member to the ready set; repeated calls are no-ops
func (r *Room) MarkReady(userID UserID) error {
	if !r.HasPlayer(userID) {
		return ErrNotInRoom
	}
	if !r.IsReady(userID) {
		r.Ready = append(r.Ready, userID)
	}
	return nil
}

// AllReady reports whether the room is full and every player is ready
func (r *Room) AllReady() bool {
	if len(r.Players) != MaxPlayers {
		return false
	}
	for _, p := range r.Players {
		if !r.IsReady(p.UserID) {
			return false
		}
	}
	return true
}

// ResetMatch returns a finished room to a fresh waiting state, keeping its players
func (r *Room) ResetMatch() {
	r.Status = RoomStatusWaiting
	r.CurrentRound = 0
	r.Round = nil
	r.Ready = nil
	for i := range r.Players {
		r.Players[i].Score = 0
	}
	r.Epoch++
}

// BeginRound moves the room into a round awaiting its sequence
func (r *Room) BeginRound() {
	r.Status = RoomStatusInRound
	if r.CurrentRound < 1 {
		r.CurrentRound = 1
	}
	r.Round = nil
	r.Ready = nil
	r.Epoch++
}

// AbortRound returns the room to waiting after a round could not be created.
// Ready signals sent while the sequence was pending are discarded; both
// players must signal again.
func (r *Room) AbortRound() {
	r.Status = RoomStatusWaiting
	r.Round = nil
	r.Ready = nil
}

// HasAnswered checks if a user already submitted for the active round
func (r *Room) HasAnswered(userID UserID) bool {
	if r.Round == nil {
		return false
	}
	for _, a := range r.Round.Answers {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// AllAnswered reports whether every player has submitted for the active round
func (r *Room) AllAnswered() bool {
	return r.Round != nil && len(r.Round.Answers) >= len(r.Players)
}

// AwardRound credits the round winner, if any, and finishes the match once
// someone reaches the win threshold. It returns true when the match is over.
func (r *Room) AwardRound(winner UserID) bool {
	if idx := r.playerIndex(winner); idx >= 0 {
		r.Players[idx].Score++
	}
	r.Round = nil
	if _, ok := r.Leader(); ok {
		r.Status = RoomStatusFinished
		return true
	}
	r.CurrentRound++
	return false
}

// Leader returns the player who has reached the win threshold, if any
func (r *Room) Leader() (UserID, bool) {
	for _, p := range r.Players {
		if p.Score >= WinThreshold {
			return p.UserID, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	c.Players = append([]Player(nil), r.Players...)
	c.Ready = append([]UserID(nil), r.Ready...)
	if r.Round != nil {
		round := *r.Round
		round.Sequence = append([]Symbol(nil), r.Round.Sequence...)
		round.Answers = make([]Answer, len(r.Round.Answers))
		for i, a := range r.Round.Answers {
			a.Sequence = append([]Symbol(nil), a.Sequence...)
			round.Answers[i] = a
		}
		c.Round = &round
	}
	return &c
}
