package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/symbolduel/internal/api/handler"
	"github.com/mcoot/symbolduel/internal/api/middleware"
	"github.com/mcoot/symbolduel/internal/services/identity"
	"github.com/mcoot/symbolduel/internal/services/orchestrator"
	"github.com/mcoot/symbolduel/internal/services/registry"
	"github.com/mcoot/symbolduel/internal/services/sequence"
	"github.com/mcoot/symbolduel/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Registry        registry.RegistryInterface
	Controller      orchestrator.ControllerInterface
	Matches         storage.MatchStore
	IdentityService *identity.Service
	SequenceService *sequence.Service
	// Gateway serves the realtime websocket endpoint
	Gateway http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.Controller, cfg.Matches)
	userHandler := handler.NewUserHandler(cfg.IdentityService)
	gameHandler := handler.NewGameHandler(cfg.SequenceService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Stack(cfg.Logger)...)

	// Room routes
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/join", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}/ready", roomHandler.Ready).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}/matches", roomHandler.Matches).Methods(http.MethodGet)

	// User routes
	api.HandleFunc("/users", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/{user_id}", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)

	// Sequence judge routes
	api.HandleFunc("/games/create-round", gameHandler.CreateRound).Methods(http.MethodPost)
	api.HandleFunc("/games/validate", gameHandler.Validate).Methods(http.MethodPost)

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	if cfg.Gateway != nil {
		r.Handle("/ws", middleware.Wrap(cfg.Logger, cfg.Gateway)).Methods(http.MethodGet)
	}

	return r
}
