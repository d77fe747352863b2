package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/symbolduel/internal/api/apierr"
	"github.com/mcoot/symbolduel/internal/middleware"
)

const instrumentationName = "github.com/mcoot/symbolduel/internal/api"

// Recovery creates panic recovery middleware for the API.
// Panics become INTERNAL_ERROR JSON responses.
func Recovery(logger *slog.Logger) mux.MiddlewareFunc {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Stack returns the middleware every API route runs behind, outermost first.
// Recovery sits inside the logger so recovered panics are logged as 500s.
func Stack(logger *slog.Logger) []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		middleware.Tracing(instrumentationName),
		middleware.Logging(logger),
		Recovery(logger),
	}
}

// Wrap applies the stack to a single handler outside a subrouter
func Wrap(logger *slog.Logger, h http.Handler) http.Handler {
	stack := Stack(logger)
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
