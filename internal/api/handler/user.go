package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/symbolduel/internal/api/apierr"
	"github.com/mcoot/symbolduel/internal/api/request"
	"github.com/mcoot/symbolduel/internal/api/response"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/services/identity"
)

// UserHandler handles user registration and lookup
type UserHandler struct {
	identity *identity.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(identity *identity.Service) *UserHandler {
	return &UserHandler{identity: identity}
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return
	}

	user, err := h.identity.Register(r.Context(), req.Username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.UserFromModel(user))
}

// Login handles POST /api/v1/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.identity.Login(r.Context(), req.Username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Get handles GET /api/v1/users/{user_id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := model.UserID(mux.Vars(r)["user_id"])

	user, err := h.identity.Get(r.Context(), userID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
