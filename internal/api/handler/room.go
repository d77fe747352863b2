package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/symbolduel/internal/api/apierr"
	"github.com/mcoot/symbolduel/internal/api/request"
	"github.com/mcoot/symbolduel/internal/api/response"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/services/orchestrator"
	"github.com/mcoot/symbolduel/internal/services/registry"
	"github.com/mcoot/symbolduel/internal/storage"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	registry   registry.RegistryInterface
	controller orchestrator.ControllerInterface
	matches    storage.MatchStore
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry registry.RegistryInterface, controller orchestrator.ControllerInterface, matches storage.MatchStore) *RoomHandler {
	return &RoomHandler{
		registry:   registry,
		controller: controller,
		matches:    matches,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	room, err := h.registry.Create(r.Context(), model.UserID(req.HostUserID), model.RoomID(req.RoomID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(room))
}

// Get handles GET /api/v1/rooms/{room_id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	room, err := h.registry.Get(r.Context(), roomID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Join handles POST /api/v1/rooms/{room_id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	var req request.JoinRoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, model.ErrMissingIdentifier)
		return
	}

	room, err := h.controller.Join(r.Context(), roomID, model.UserID(req.UserID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Ready handles POST /api/v1/rooms/{room_id}/ready
func (h *RoomHandler) Ready(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	var req request.ReadyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, model.ErrMissingIdentifier)
		return
	}

	room, err := h.controller.MarkReady(r.Context(), roomID, model.UserID(req.UserID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Matches handles GET /api/v1/rooms/{room_id}/matches
func (h *RoomHandler) Matches(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	if _, err := h.registry.Get(r.Context(), roomID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	records, err := h.matches.ListMatches(r.Context(), roomID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchHistoryFromModel(roomID, records))
}
