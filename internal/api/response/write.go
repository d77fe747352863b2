package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response. Room state moves on between requests, so
// responses are marked uncacheable.
func JSON(w http.ResponseWriter, status int, data any) {
	header := w.Header()
	header.Set("Content-Type", "application/json")
	header.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}
