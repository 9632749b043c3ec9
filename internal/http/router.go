package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ragbench/internal/handlers"
	"ragbench/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Assistant service.Assistant
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))

	r.NotFound(jsonError(http.StatusNotFound, "Endpoint not found"))
	r.MethodNotAllowed(jsonError(http.StatusMethodNotAllowed, "Method not allowed"))

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Assistant))
		r.Method(http.MethodGet, "/system_prompt", handlers.NewSystemPromptHandler(deps.Assistant))
		r.Method(http.MethodPost, "/query", handlers.NewQueryHandler(deps.Assistant))
		r.Method(http.MethodPost, "/evaluate", handlers.NewEvaluateHandler(deps.Assistant))
		r.Method(http.MethodPost, "/evaluate_casefile", handlers.NewCaseFileHandler(deps.Assistant))
		r.Method(http.MethodPost, "/reask", handlers.NewReAskHandler(deps.Assistant))
		r.Method(http.MethodPost, "/compare", handlers.NewCompareHandler(deps.Assistant))
	})

	return r
}

func jsonError(statusCode int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(handlers.ErrorResponse{Error: message})
	}
}
