package model

import "time"

// MatchRecord is the history entry written when a match finishes
type MatchRecord struct {
	ID           string
	RoomID       RoomID
	WinnerUserID UserID
	Scores       map[UserID]int
	Rounds       int
	FinishedAt   time.Time
}
