package readiness

import (
	"log/slog"

	"github.com/mcoot/symbolduel/internal/model"
)

// Outcome reports what marking a player ready did to the room
type Outcome struct {
	// Reset is true when a finished match was reset to waiting
	Reset bool
	// StartRound is true when every player is now ready and a round should begin
	StartRound bool
}

// Coordinator applies the ready/restart protocol to rooms
type Coordinator struct {
	logger *slog.Logger
}

// New creates a new Coordinator
func New(logger *slog.Logger) *Coordinator {
	return &Coordinator{
		logger: logger.With(slog.String("component", "readiness")),
	}
}

// MarkReady records that a player is ready. A ready signal on a finished
// room first resets the match. The caller must hold the room's lock and is
// responsible for starting the round when the outcome asks for it.
func (c *Coordinator) MarkReady(room *model.Room, userID model.UserID) (Outcome, error) {
	var outcome Outcome

	if !room.HasPlayer(userID) {
		return outcome, model.ErrNotInRoom
	}

	if room.Status == model.RoomStatusFinished {
		room.ResetMatch()
		outcome.Reset = true
		c.logger.Info("match reset",
			slog.String("room_id", string(room.ID)),
			slog.String("user_id", string(userID)),
		)
	}

	if err := room.MarkReady(userID); err != nil {
		return Outcome{}, err
	}

	outcome.StartRound = room.Status == model.RoomStatusWaiting && room.AllReady()
	return outcome, nil
}
