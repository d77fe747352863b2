package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/symbolduel/internal/api/apierr"
)

// maxBodyBytes caps request bodies; the largest legitimate one is a
// validate request carrying two short answers
const maxBodyBytes = 64 << 10

// decodeJSON reads the request body into dst. On failure it writes an
// INVALID_REQUEST response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return false
	}
	return true
}
