package response

import (
	"time"

	"github.com/mcoot/symbolduel/internal/model"
)

// Player represents a room member in API responses
type Player struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Ready  bool   `json:"ready"`
}

// Room represents a room in API responses
type Room struct {
	RoomID       string   `json:"room_id"`
	HostUserID   string   `json:"host_user_id"`
	Status       string   `json:"status"`
	CurrentRound int      `json:"current_round"`
	Phase        *string  `json:"phase"`
	Players      []Player `json:"players"`
}

// RoomFromModel converts model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	players := make([]Player, len(r.Players))
	for i, p := range r.Players {
		players[i] = Player{
			UserID: string(p.UserID),
			Score:  p.Score,
			Ready:  r.IsReady(p.UserID),
		}
	}

	var phase *string
	if r.Round != nil {
		p := string(r.Round.Phase)
		phase = &p
	}

	return Room{
		RoomID:       string(r.ID),
		HostUserID:   string(r.HostUserID),
		Status:       string(r.Status),
		CurrentRound: r.CurrentRound,
		Phase:        phase,
		Players:      players,
	}
}

// User represents a registered user in API responses
type User struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts model.User
func UserFromModel(u *model.User) User {
	return User{
		UserID:    string(u.ID),
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// Match represents a finished match
type Match struct {
	MatchID      string         `json:"match_id"`
	WinnerUserID string         `json:"winner_user_id"`
	Scores       map[string]int `json:"scores"`
	Rounds       int            `json:"rounds"`
	FinishedAt   time.Time      `json:"finished_at"`
}

// MatchFromModel converts model.MatchRecord
func MatchFromModel(m *model.MatchRecord) Match {
	scores := make(map[string]int, len(m.Scores))
	for uid, score := range m.Scores {
		scores[string(uid)] = score
	}
	return Match{
		MatchID:      m.ID,
		WinnerUserID: string(m.WinnerUserID),
		Scores:       scores,
		Rounds:       m.Rounds,
		FinishedAt:   m.FinishedAt,
	}
}

// MatchHistory lists the finished matches of a room
type MatchHistory struct {
	RoomID  string  `json:"room_id"`
	Matches []Match `json:"matches"`
}

// MatchHistoryFromModel converts a room's match records
func MatchHistoryFromModel(roomID model.RoomID, records []*model.MatchRecord) MatchHistory {
	matches := make([]Match, len(records))
	for i, m := range records {
		matches[i] = MatchFromModel(m)
	}
	return MatchHistory{
		RoomID:  string(roomID),
		Matches: matches,
	}
}

// Health is the response of the health endpoint
type Health struct {
	Status string `json:"status"`
}
