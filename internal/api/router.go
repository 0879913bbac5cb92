package api

import (
	"net/http"

	"github.com/NLlemain/ride-comparing/internal/api/handlers"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(sessions *handlers.SessionHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /ws", sessions.Serve)

	return loggingMiddleware(logger, mux)
}
