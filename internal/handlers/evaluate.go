package handlers

import (
	"net/http"

	"ragbench/internal/contextutil"
	"ragbench/internal/evaluation"
	"ragbench/internal/service"
)

// EvaluateHandler handles HTTP requests for standalone evaluations.
type EvaluateHandler struct {
	assistant service.Assistant
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(assistant service.Assistant) *EvaluateHandler {
	return &EvaluateHandler{assistant: assistant}
}

// EvaluateResponse wraps a diagnostician report.
type EvaluateResponse struct {
	Diagnostic evaluation.Report `json:"diagnostic"`
}

// ServeHTTP handles POST /api/evaluate. The body carries user_query, system_prompt,
// model_response and sources; blank fields are reported in missing_fields with a 400.
func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var in evaluation.Input
	if !bindJSON(w, r, &in) {
		return
	}

	report, err := h.assistant.Evaluate(ctx, in)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to evaluate")
		return
	}

	writeJSON(ctx, w, http.StatusOK, EvaluateResponse{Diagnostic: report})
}

// CaseFileHandler handles HTTP requests that grade an exported interaction.
type CaseFileHandler struct {
	assistant service.Assistant
}

// NewCaseFileHandler creates a new CaseFileHandler.
func NewCaseFileHandler(assistant service.Assistant) *CaseFileHandler {
	return &CaseFileHandler{assistant: assistant}
}

// ServeHTTP handles POST /api/evaluate_casefile. An empty system_prompt grades
// against the built-in prompt.
func (h *CaseFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var cf evaluation.CaseFile
	if !bindJSON(w, r, &cf) {
		return
	}

	resp, err := h.assistant.EvaluateCaseFile(ctx, cf)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to evaluate case file")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
