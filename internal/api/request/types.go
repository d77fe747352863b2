package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	HostUserID string `json:"host_user_id"`
	RoomID     string `json:"room_id,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	UserID string `json:"user_id"`
}

// ReadyRequest is the request body for signalling readiness
type ReadyRequest struct {
	UserID string `json:"user_id"`
}

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string `json:"username"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
}

// The game endpoints speak the sequence judge wire format, which is camelCase.

// CreateRoundRequest is the request body for drawing a round's sequence.
// Difficulty overrides the level derived from the round number.
type CreateRoundRequest struct {
	Round      int  `json:"round"`
	Difficulty *int `json:"difficulty,omitempty"`
}

// Answer is one submission in a ValidateRequest
type Answer struct {
	UserID   string   `json:"userId"`
	Sequence []string `json:"sequence"`
	TimeMs   int      `json:"timeMs"`
}

// ValidateRequest is the request body for grading a round
type ValidateRequest struct {
	Round    int      `json:"round"`
	Sequence []string `json:"sequence"`
	Answers  []Answer `json:"answers"`
}
