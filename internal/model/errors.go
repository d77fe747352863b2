package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomExists    = errors.New("room id already in use")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyJoined = errors.New("user is already in room")
	ErrNotInRoom     = errors.New("user is not in room")

	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already taken")

	// Validation errors
	ErrMissingIdentifier = errors.New("missing identifier")

	// Collaborator errors
	ErrJudgeUnavailable = errors.New("sequence judge unavailable")
)
