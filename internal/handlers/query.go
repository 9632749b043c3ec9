package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ragbench/internal/contextutil"
	"ragbench/internal/rag"
	"ragbench/internal/service"
)

// QueryHandler handles HTTP requests for RAG queries.
type QueryHandler struct {
	assistant service.Assistant
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(assistant service.Assistant) *QueryHandler {
	return &QueryHandler{assistant: assistant}
}

// QueryRequest represents the HTTP request payload for RAG queries.
type QueryRequest struct {
	Query string `json:"query" validate:"required"`
	// Model is a logical model name; routed models (o3, o4-mini, gpt-4o) use their own deployment.
	Model       string   `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP        *float32 `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxTokens   *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	// SystemPrompt replaces the default system prompt.
	SystemPrompt   string `json:"system_prompt,omitempty"`
	AppendedPrompt string `json:"appended_prompt,omitempty"`
}

func (r QueryRequest) toService() service.QueryRequest {
	return service.QueryRequest{
		Query:          r.Query,
		Model:          r.Model,
		Temperature:    r.Temperature,
		TopP:           r.TopP,
		MaxTokens:      r.MaxTokens,
		SystemPrompt:   r.SystemPrompt,
		AppendedPrompt: r.AppendedPrompt,
	}
}

// StreamResultEvent is the payload of the trailing "result" SSE event.
type StreamResultEvent struct {
	Answer     string            `json:"answer"`
	Sources    []rag.CitedSource `json:"sources"`
	Evaluation *rag.Evaluation   `json:"evaluation"`
	Error      string            `json:"error,omitempty"`
}

// ServeHTTP handles HTTP requests for RAG queries.
//
// POST /api/query answers with cited sources and an evaluation. With
// ?stream=true the answer is delivered as Server-Sent Events: one "data:" event per
// fragment, then an "event: result" carrying StreamResultEvent, then "data: [DONE]".
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreamingQuery(w, ctx, req)
		return
	}

	resp, err := h.assistant.Query(ctx, req.toService())
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process query")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// handleStreamingQuery streams an answer using Server-Sent Events.
func (h *QueryHandler) handleStreamingQuery(w http.ResponseWriter, ctx context.Context, req QueryRequest) {
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	fragments, results, err := h.assistant.Stream(ctx, req.toService())
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to stream query")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Keep draining after a write failure so the producer can finish.
	var writeErr error
	for fragment := range fragments {
		if writeErr != nil {
			continue
		}
		if writeErr = writeSSE(w, "", fragment); writeErr != nil {
			logger.WarnContext(ctx, "client stopped reading stream", "error", writeErr)
			continue
		}
		flusher.Flush()
	}

	result, ok := <-results
	if writeErr != nil {
		return
	}
	if !ok {
		logger.ErrorContext(ctx, "stream ended without a result")
		return
	}

	event := StreamResultEvent{
		Answer:     result.Answer,
		Sources:    result.Sources,
		Evaluation: result.Evaluation,
	}
	if result.Err != nil {
		logger.ErrorContext(ctx, "error streaming query", "error", result.Err)
		event.Error = result.Err.Error()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode stream result", "error", err)
		return
	}
	_ = writeSSE(w, "result", string(payload))
	_ = writeSSE(w, "", "[DONE]")
	flusher.Flush()
}

// writeSSE writes one event. Multi-line data is split into one "data:" line per line.
func writeSSE(w io.Writer, event, data string) error {
	var b strings.Builder
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
