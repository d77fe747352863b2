package model

import "time"

// UserID is the opaque identity of a participant, issued by the identity service
type UserID string

// User is a registered identity
type User struct {
	ID        UserID
	Username  string
	CreatedAt time.Time
}
