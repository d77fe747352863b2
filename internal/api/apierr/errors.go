package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/symbolduel/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeMissingIdentifier = "MISSING_IDENTIFIER"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeDuplicateRoomID   = "DUPLICATE_ROOM_ID"
	CodeRoomFull          = "ROOM_FULL"
	CodeAlreadyJoined     = "ALREADY_JOINED"
	CodeNotInRoom         = "NOT_IN_ROOM"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeUsernameExists    = "USERNAME_EXISTS"
	CodeJudgeUnavailable  = "JUDGE_UNAVAILABLE"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomExists):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateRoomID, "Room id is already in use"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrAlreadyJoined):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyJoined, "Already a member of this room"}}
	case errors.Is(err, model.ErrMissingIdentifier):
		return &httpError{http.StatusBadRequest, APIError{CodeMissingIdentifier, "A required identifier is missing"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusForbidden, APIError{CodeNotInRoom, "Not a member of this room"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, model.ErrJudgeUnavailable):
		return &httpError{http.StatusBadGateway, APIError{CodeJudgeUnavailable, "Sequence judge unavailable"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
