package redis

import (
	"fmt"

	"github.com/mcoot/symbolduel/internal/model"
)

// Key prefix for all duel data
const keyPrefix = "duel"

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomIndexKey returns the Redis key for the SET of all room keys
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// matchesKey returns the Redis key for the LIST of finished matches in a room
func matchesKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:matches:%s", keyPrefix, roomID)
}
