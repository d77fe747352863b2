package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/symbolduel/internal/dependencies/judge"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/protocol"
	"github.com/mcoot/symbolduel/internal/services/readiness"
)

const (
	msgRoundStartFailed    = "could not start round: sequence judge unavailable"
	msgRoundValidateFailed = "could not score round: sequence judge unavailable"
)

// Join adds a user to a room and announces the new room state
func (o *Orchestrator) Join(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Room, error) {
	var room *model.Room
	err := o.call(ctx, roomID, func(actx context.Context) error {
		r, err := o.registry.AddPlayer(actx, roomID, userID)
		if err != nil {
			return err
		}
		room = r
		o.notifier.Broadcast(roomID, protocol.NewRoomState(r))
		return nil
	})
	return room, err
}

// MarkReady records a player's ready signal, resetting a finished match and
// starting the first round once both players are ready
func (o *Orchestrator) MarkReady(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Room, error) {
	var room *model.Room
	err := o.call(ctx, roomID, func(actx context.Context) error {
		var outcome readiness.Outcome
		r, err := o.registry.Update(actx, roomID, func(r *model.Room) error {
			var err error
			outcome, err = o.readiness.MarkReady(r, userID)
			return err
		})
		if err != nil {
			return err
		}
		room = r

		if outcome.Reset {
			o.notifier.Broadcast(roomID, protocol.NewRoomState(r))
		}
		o.notifier.Broadcast(roomID, protocol.PlayerReadyNotice{UserID: userID})

		if outcome.StartRound {
			if started := o.startRound(actx, roomID); started != nil {
				room = started
			}
		}
		return nil
	})
	return room, err
}

// Submit records a player's answer for the round being collected. Answers
// for any other round, or repeated answers, are ignored.
func (o *Orchestrator) Submit(ctx context.Context, roomID model.RoomID, sub protocol.SubmitSequence) error {
	return o.call(ctx, roomID, func(actx context.Context) error {
		resolve := false
		room, err := o.registry.Update(actx, roomID, func(r *model.Room) error {
			if !r.HasPlayer(sub.UserID) {
				return model.ErrNotInRoom
			}
			if r.Status != model.RoomStatusInRound || r.Round == nil ||
				r.Round.Phase != model.PhaseCollecting || sub.Round != r.CurrentRound {
				return errDiscarded
			}
			if r.HasAnswered(sub.UserID) {
				return errDiscarded
			}

			r.Round.Answers = append(r.Round.Answers, model.Answer{
				UserID:    sub.UserID,
				Sequence:  sub.Sequence,
				ElapsedMs: sub.TimeMs,
			})
			if r.AllAnswered() {
				r.Round.Phase = model.PhaseResolving
				resolve = true
			}
			return nil
		})
		if errors.Is(err, errDiscarded) {
			o.roomLogger(roomID).Debug("answer discarded",
				slog.String("user_id", string(sub.UserID)),
				slog.Int("round", sub.Round),
			)
			return nil
		}
		if err != nil {
			return err
		}

		if resolve {
			o.resolveRound(room)
		}
		return nil
	})
}

// startRound moves the room into a new round and asks the judge for its
// sequence. Runs on the room's actor.
func (o *Orchestrator) startRound(ctx context.Context, roomID model.RoomID) *model.Room {
	logger := o.roomLogger(roomID)

	room, err := o.registry.Update(ctx, roomID, func(r *model.Room) error {
		r.BeginRound()
		return nil
	})
	if err != nil {
		logger.Error("failed to start round", slog.String("error", err.Error()))
		return nil
	}

	logger.Info("round started", slog.Int("round", room.CurrentRound))
	o.notifier.Broadcast(roomID, protocol.NewRoomState(room))

	epoch, round := room.Epoch, room.CurrentRound
	o.goJudge(func(jctx context.Context) {
		created, err := o.judge.CreateRound(jctx, round)
		o.post(roomID, func(actx context.Context) {
			o.roundCreated(actx, roomID, epoch, created, err)
		})
	})
	return room
}

// awaitingSequence reports whether the room is still in the round that
// requested a sequence
func awaitingSequence(r *model.Room, epoch uint64) bool {
	return r.Epoch == epoch && r.Status == model.RoomStatusInRound && r.Round == nil
}

func (o *Orchestrator) roundCreated(ctx context.Context, roomID model.RoomID, epoch uint64, created *judge.Round, judgeErr error) {
	logger := o.roomLogger(roomID)

	if judgeErr != nil {
		room, err := o.registry.Update(ctx, roomID, func(r *model.Room) error {
			if !awaitingSequence(r, epoch) {
				return errStale
			}
			r.AbortRound()
			return nil
		})
		if err != nil {
			o.logUpdateFailure(logger, "round creation failure", err)
			return
		}

		logger.Warn("round creation failed",
			slog.Int("round", room.CurrentRound),
			slog.String("error", judgeErr.Error()),
		)
		o.notifier.Broadcast(roomID, protocol.Error{Message: msgRoundStartFailed})
		o.notifier.Broadcast(roomID, protocol.NewRoomState(room))
		return
	}

	room, err := o.registry.Update(ctx, roomID, func(r *model.Room) error {
		if !awaitingSequence(r, epoch) {
			return errStale
		}
		r.CurrentRound = created.Round
		r.Round = &model.RoundState{
			Phase:     model.PhaseDisplaying,
			Sequence:  created.Sequence,
			DisplayMs: created.DisplayMs,
		}
		return nil
	})
	if err != nil {
		o.logUpdateFailure(logger, "round creation", err)
		return
	}

	// Arm the timer before announcing so the display window starts no later
	// than clients see the sequence
	o.clock.AfterFunc(time.Duration(created.DisplayMs)*time.Millisecond, func() {
		o.post(roomID, func(actx context.Context) {
			o.displayElapsed(actx, roomID, epoch)
		})
	})

	logger.Info("sequence displayed",
		slog.Int("round", room.CurrentRound),
		slog.Int("length", len(created.Sequence)),
		slog.Int("display_ms", created.DisplayMs),
	)
	o.notifier.Broadcast(roomID, protocol.RoundStart{
		Round:     room.CurrentRound,
		Sequence:  room.Round.Sequence,
		DisplayMs: room.Round.DisplayMs,
	})
}

func (o *Orchestrator) displayElapsed(ctx context.Context, roomID model.RoomID, epoch uint64) {
	room, err := o.registry.Update(ctx, roomID, func(r *model.Room) error {
		if r.Epoch != epoch || r.Round == nil || r.Round.Phase != model.PhaseDisplaying {
			return errStale
		}
		r.Round.Phase = model.PhaseCollecting
		return nil
	})
	if err != nil {
		o.logUpdateFailure(o.roomLogger(roomID), "display timer", err)
		return
	}

	o.notifier.Broadcast(roomID, protocol.EnterSequence{Round: room.CurrentRound})
}

// resolveRound sends the collected answers to the judge. Runs on the room's actor.
func (o *Orchestrator) resolveRound(room *model.Room) {
	roomID, epoch, round := room.ID, room.Epoch, room.CurrentRound
	sequence := room.Round.Sequence
	answers := judge.SubmissionsFromAnswers(room.Round.Answers)

	o.goJudge(func(jctx context.Context) {
		verdict, err := o.judge.Validate(jctx, round, sequence, answers)
		o.post(roomID, func(actx context.Context) {
			o.roundJudged(actx, roomID, epoch, verdict, err)
		})
	})
}

func (o *Orchestrator) roundJudged(ctx context.Context, roomID model.RoomID, epoch uint64, verdict *judge.Verdict, judgeErr error) {
	logger := o.roomLogger(roomID)

	if judgeErr != nil {
		room, err := o.registry.Get(ctx, roomID)
		if err != nil || room.Epoch != epoch || room.Round == nil || room.Round.Phase != model.PhaseResolving {
			return
		}
		// The room stays in its resolving round; there is no retry.
		logger.Error("round validation failed",
			slog.Int("round", room.CurrentRound),
			slog.String("error", judgeErr.Error()),
		)
		o.notifier.Broadcast(roomID, protocol.Error{Message: msgRoundValidateFailed})
		return
	}

	winner, hasWinner := verdict.Winner()
	var (
		resolvedRound int
		correct       []model.Symbol
		finished      bool
	)
	room, err := o.registry.Update(ctx, roomID, func(r *model.Room) error {
		if r.Epoch != epoch || r.Round == nil || r.Round.Phase != model.PhaseResolving {
			return errStale
		}
		if hasWinner && !r.HasPlayer(winner) {
			hasWinner = false
		}
		resolvedRound = r.CurrentRound
		correct = verdict.CorrectSequence
		if len(correct) == 0 {
			correct = r.Round.Sequence
		}
		if hasWinner {
			finished = r.AwardRound(winner)
		} else {
			finished = r.AwardRound("")
		}
		return nil
	})
	if err != nil {
		o.logUpdateFailure(logger, "round validation", err)
		return
	}

	result := protocol.RoundResult{
		Round:           resolvedRound,
		CorrectSequence: correct,
		Scores:          room.Scores(),
	}
	if hasWinner {
		result.RoundWinnerUserID = &winner
	}
	logger.Info("round resolved",
		slog.Int("round", resolvedRound),
		slog.String("winner_user_id", string(winner)),
	)
	o.notifier.Broadcast(roomID, result)

	if finished {
		leader, _ := room.Leader()
		logger.Info("match finished",
			slog.String("winner_user_id", string(leader)),
			slog.Int("rounds", resolvedRound),
		)
		o.notifier.Broadcast(roomID, protocol.MatchEnd{
			WinnerUserID: leader,
			Scores:       room.Scores(),
		})
		o.recordMatch(room, leader, resolvedRound)
		return
	}

	o.startRound(ctx, roomID)
}

// recordMatch writes the finished match to history in the background
func (o *Orchestrator) recordMatch(room *model.Room, winner model.UserID, rounds int) {
	if o.matches == nil {
		return
	}
	record := &model.MatchRecord{
		ID:           uuid.NewString(),
		RoomID:       room.ID,
		WinnerUserID: winner,
		Scores:       room.Scores(),
		Rounds:       rounds,
		FinishedAt:   o.clock.Now(),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(o.ctx), o.cfg.JudgeTimeout)
		defer cancel()
		if err := o.matches.SaveMatch(ctx, record); err != nil {
			o.roomLogger(room.ID).Error("failed to record match",
				slog.String("match_id", record.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (o *Orchestrator) logUpdateFailure(logger *slog.Logger, event string, err error) {
	if errors.Is(err, errStale) {
		logger.Debug("ignoring stale event", slog.String("event", event))
		return
	}
	logger.Error("failed to update room",
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
