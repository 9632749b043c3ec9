package handlers

import (
	"context"
	"net/http"
	"time"

	"ragbench/internal/contextutil"
	"ragbench/internal/service"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	assistant          service.Assistant
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(assistant service.Assistant) *HealthHandler {
	return &HealthHandler{
		assistant:          assistant,
		healthCheckTimeout: 5 * time.Second,
	}
}

// ServeHTTP handles GET /api/health. The service is always reported healthy;
// rag_assistant says whether queries can be answered.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	writeJSON(ctx, w, http.StatusOK, h.assistant.Health(checkCtx))
}

// SystemPromptHandler serves the built-in system prompt.
type SystemPromptHandler struct {
	assistant service.Assistant
}

// NewSystemPromptHandler creates a new SystemPromptHandler.
func NewSystemPromptHandler(assistant service.Assistant) *SystemPromptHandler {
	return &SystemPromptHandler{assistant: assistant}
}

// SystemPromptResponse carries the built-in system prompt.
type SystemPromptResponse struct {
	SystemPrompt string `json:"system_prompt"`
}

// ServeHTTP handles GET /api/system_prompt.
func (h *SystemPromptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(ctx, w, http.StatusOK, SystemPromptResponse{SystemPrompt: h.assistant.SystemPrompt()})
}
