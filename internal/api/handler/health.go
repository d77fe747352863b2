package handler

import (
	"net/http"

	"github.com/mcoot/symbolduel/internal/api/response"
)

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
