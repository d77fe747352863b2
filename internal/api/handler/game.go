package handler

import (
	"net/http"

	"github.com/mcoot/symbolduel/internal/api/apierr"
	"github.com/mcoot/symbolduel/internal/api/request"
	"github.com/mcoot/symbolduel/internal/api/response"
	"github.com/mcoot/symbolduel/internal/dependencies/judge"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/services/sequence"
)

// GameHandler serves the sequence judge over HTTP
type GameHandler struct {
	sequence *sequence.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(sequence *sequence.Service) *GameHandler {
	return &GameHandler{sequence: sequence}
}

// CreateRound handles POST /api/v1/games/create-round
func (h *GameHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoundRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Round < 1 {
		apierr.WriteError(w, apierr.NewInvalidRequestError("round must be at least 1"))
		return
	}

	if req.Difficulty != nil {
		response.JSON(w, http.StatusOK, h.sequence.Generate(req.Round, *req.Difficulty))
		return
	}

	round, err := h.sequence.CreateRound(r.Context(), req.Round)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, round)
}

// Validate handles POST /api/v1/games/validate
func (h *GameHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Sequence) == 0 {
		apierr.WriteError(w, apierr.NewInvalidRequestError("sequence is required"))
		return
	}

	answers := make([]judge.Submission, 0, len(req.Answers))
	for _, a := range req.Answers {
		if a.UserID == "" {
			apierr.WriteError(w, model.ErrMissingIdentifier)
			return
		}
		answers = append(answers, judge.Submission{
			UserID:   model.UserID(a.UserID),
			Sequence: toSymbols(a.Sequence),
			TimeMs:   a.TimeMs,
		})
	}

	verdict, err := h.sequence.Validate(r.Context(), req.Round, toSymbols(req.Sequence), answers)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, verdict)
}

func toSymbols(values []string) []model.Symbol {
	symbols := make([]model.Symbol, len(values))
	for i, v := range values {
		symbols[i] = model.Symbol(v)
	}
	return symbols
}
