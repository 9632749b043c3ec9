package handlers

import (
	"net/http"

	"ragbench/internal/contextutil"
	"ragbench/internal/service"
)

// ReAskHandler handles HTTP requests that repeat one query several times.
type ReAskHandler struct {
	assistant service.Assistant
}

// NewReAskHandler creates a new ReAskHandler.
func NewReAskHandler(assistant service.Assistant) *ReAskHandler {
	return &ReAskHandler{assistant: assistant}
}

// ReAskRequest represents the HTTP request payload for repeated runs.
type ReAskRequest struct {
	Query        string   `json:"query" validate:"required"`
	Model        string   `json:"model,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  *float32 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP         *float32 `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxTokens    *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	// Runs defaults to 1.
	Runs *int `json:"n_runs,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// ServeHTTP handles POST /api/reask.
func (h *ReAskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ReAskRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.assistant.ReAsk(ctx, service.ReAskRequest{
		Query:  req.Query,
		Params: batchParams(req.Model, req.SystemPrompt, req.Temperature, req.TopP, req.MaxTokens, req.Runs),
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to re-ask query")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// CompareHandler handles HTTP requests that run one query under two parameter sets.
type CompareHandler struct {
	assistant service.Assistant
}

// NewCompareHandler creates a new CompareHandler.
func NewCompareHandler(assistant service.Assistant) *CompareHandler {
	return &CompareHandler{assistant: assistant}
}

// CompareRequest represents the HTTP request payload for a two-batch comparison.
// Suffix 1 and 2 select the batch.
type CompareRequest struct {
	Query string `json:"query" validate:"required"`

	Model1        string   `json:"model1,omitempty"`
	SystemPrompt1 string   `json:"system_prompt1,omitempty"`
	Temperature1  *float32 `json:"temperature1,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP1         *float32 `json:"top_p1,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxTokens1    *int     `json:"max_tokens1,omitempty" validate:"omitempty,gt=0"`
	Runs1         *int     `json:"n_runs1,omitempty" validate:"omitempty,gte=1,lte=10"`

	Model2        string   `json:"model2,omitempty"`
	SystemPrompt2 string   `json:"system_prompt2,omitempty"`
	Temperature2  *float32 `json:"temperature2,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP2         *float32 `json:"top_p2,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxTokens2    *int     `json:"max_tokens2,omitempty" validate:"omitempty,gt=0"`
	Runs2         *int     `json:"n_runs2,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// ServeHTTP handles POST /api/compare.
func (h *CompareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CompareRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.assistant.Compare(ctx, service.CompareRequest{
		Query:  req.Query,
		Batch1: batchParams(req.Model1, req.SystemPrompt1, req.Temperature1, req.TopP1, req.MaxTokens1, req.Runs1),
		Batch2: batchParams(req.Model2, req.SystemPrompt2, req.Temperature2, req.TopP2, req.MaxTokens2, req.Runs2),
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to compare batches")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func batchParams(model, systemPrompt string, temperature, topP *float32, maxTokens, runs *int) service.BatchParams {
	n := 1
	if runs != nil {
		n = *runs
	}
	return service.BatchParams{
		Model:        model,
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		Runs:         n,
	}
}
