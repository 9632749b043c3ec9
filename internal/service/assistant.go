package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks ragbench/internal/rag Engine
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_evaluator.go -package=mocks ragbench/internal/service Evaluator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_assistant.go -package=mocks ragbench/internal/service Assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"ragbench/internal/contextutil"
	"ragbench/internal/evaluation"
	"ragbench/internal/rag"
	"ragbench/internal/search"
)

// Evaluator is the diagnostician as seen by the service layer.
type Evaluator interface {
	Evaluate(ctx context.Context, in evaluation.Input) (evaluation.Report, error)
	EvaluateCaseFile(ctx context.Context, caseFile string) (evaluation.Report, error)
}

// QueryRequest is one question with optional per-call parameters.
type QueryRequest struct {
	Query string
	// Model selects a logical model; empty uses the configured chat deployment.
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
	// SystemPrompt replaces the default system prompt for this call when set.
	SystemPrompt string
	// AppendedPrompt is appended to the resolved system prompt.
	AppendedPrompt string
}

// CaseFileReport is a rubric evaluation together with the case file it graded.
type CaseFileReport struct {
	CaseFile string            `json:"casefile"`
	Report   evaluation.Report `json:"diagnostic"`
}

// HealthStatus describes assistant availability. RetrievalMissing lists absent search
// or embedding settings; queries still run without retrieved context.
type HealthStatus struct {
	Status           string    `json:"status"`
	Assistant        string    `json:"rag_assistant"`
	Search           string    `json:"search,omitempty"`
	Missing          []string  `json:"missing,omitempty"`
	RetrievalMissing []string  `json:"retrieval_missing,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Assistant exposes the RAG operations to the HTTP layer.
type Assistant interface {
	// Query answers a question with cited sources and an evaluation.
	Query(ctx context.Context, req QueryRequest) (rag.QueryResponse, error)
	// Stream answers a question incrementally.
	Stream(ctx context.Context, req QueryRequest) (<-chan string, <-chan rag.StreamResult, error)
	// Evaluate runs the diagnostician over caller-supplied inputs.
	Evaluate(ctx context.Context, in evaluation.Input) (evaluation.Report, error)
	// EvaluateCaseFile renders a case file and grades it against the rubric.
	EvaluateCaseFile(ctx context.Context, cf evaluation.CaseFile) (CaseFileReport, error)
	// ReAsk runs the same query several times with one parameter set.
	ReAsk(ctx context.Context, req ReAskRequest) (ReAskResponse, error)
	// Compare runs the same query under two parameter batches.
	Compare(ctx context.Context, req CompareRequest) (CompareResponse, error)
	// SystemPrompt returns the built-in system prompt.
	SystemPrompt() string
	// Health reports availability and, when possible, search reachability.
	Health(ctx context.Context) HealthStatus
}

// Options wires an Assistant.
type Options struct {
	Engine    rag.Engine
	Evaluator Evaluator
	// Pinger checks the search backend; optional.
	Pinger search.Pinger
	// Settings are the instance settings every request starts from.
	Settings rag.Settings
	// Missing lists absent chat configuration. A non-empty list makes the assistant unavailable.
	Missing []string
	// RetrievalMissing lists absent search or embedding configuration. It is only reported.
	RetrievalMissing []string
}

type assistant struct {
	engine    rag.Engine
	evaluator Evaluator
	pinger    search.Pinger
	settings  rag.Settings
	missing   []string

	retrievalMissing []string
}

// NewAssistant creates a new Assistant.
func NewAssistant(opts Options) Assistant {
	return &assistant{
		engine:    opts.Engine,
		evaluator: opts.Evaluator,
		pinger:    opts.Pinger,
		settings:  opts.Settings,
		missing:   append([]string(nil), opts.Missing...),

		retrievalMissing: append([]string(nil), opts.RetrievalMissing...),
	}
}

func (a *assistant) available() bool {
	return len(a.missing) == 0 && a.engine != nil
}

// buildRequest layers req over the instance settings.
func (a *assistant) buildRequest(req QueryRequest) rag.QueryRequest {
	settings := a.settings
	if req.SystemPrompt != "" {
		settings.SystemPrompt = req.SystemPrompt
		settings.SystemPromptMode = rag.PromptModeOverride
	}
	return rag.QueryRequest{
		Query:    req.Query,
		Settings: settings,
		Overrides: rag.CallOverrides{
			Model:       req.Model,
			Temperature: req.Temperature,
			TopP:        req.TopP,
			MaxTokens:   req.MaxTokens,
		},
		AppendedPrompt: req.AppendedPrompt,
	}
}

func (a *assistant) checkQuery(ctx context.Context, req QueryRequest) error {
	logger := contextutil.LoggerFromContext(ctx)
	if strings.TrimSpace(req.Query) == "" {
		logger.WarnContext(ctx, "empty query")
		return &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if !a.available() {
		logger.WarnContext(ctx, "assistant unavailable", "missing", a.missing)
		return ErrUnavailable
	}
	return nil
}

// Query answers a question.
func (a *assistant) Query(ctx context.Context, req QueryRequest) (rag.QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := a.checkQuery(ctx, req); err != nil {
		return rag.QueryResponse{}, err
	}

	resp, err := a.engine.Ask(ctx, a.buildRequest(req))
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer query", "error", err)
		return rag.QueryResponse{}, externalError(err, "failed to answer query")
	}

	logger.InfoContext(ctx, "query processed successfully", "query_length", len(req.Query), "answer_length", len(resp.Answer), "sources", len(resp.Sources))
	return resp, nil
}

// Stream answers a question incrementally.
func (a *assistant) Stream(ctx context.Context, req QueryRequest) (<-chan string, <-chan rag.StreamResult, error) {
	if err := a.checkQuery(ctx, req); err != nil {
		return nil, nil, err
	}
	fragments, results := a.engine.Stream(ctx, a.buildRequest(req))
	return fragments, results, nil
}

// Evaluate runs the diagnostician over caller-supplied inputs.
func (a *assistant) Evaluate(ctx context.Context, in evaluation.Input) (evaluation.Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if a.evaluator == nil || len(a.missing) > 0 {
		return evaluation.Report{}, ErrUnavailable
	}

	report, err := a.evaluator.Evaluate(ctx, in)
	if err != nil {
		var missing *evaluation.MissingFieldsError
		if errors.As(err, &missing) {
			return evaluation.Report{}, err
		}
		logger.ErrorContext(ctx, "evaluation failed", "error", err)
		return evaluation.Report{}, externalError(err, "failed to evaluate")
	}
	return report, nil
}

// EvaluateCaseFile renders cf and grades it.
func (a *assistant) EvaluateCaseFile(ctx context.Context, cf evaluation.CaseFile) (CaseFileReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(cf.Query) == "" {
		return CaseFileReport{}, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if a.evaluator == nil || len(a.missing) > 0 {
		return CaseFileReport{}, ErrUnavailable
	}
	if cf.SystemPrompt == "" {
		cf.SystemPrompt = rag.DefaultSystemPrompt
	}

	caseFile := evaluation.BuildCaseFile(cf)
	report, err := a.evaluator.EvaluateCaseFile(ctx, caseFile)
	if err != nil {
		logger.ErrorContext(ctx, "case file evaluation failed", "error", err)
		return CaseFileReport{}, externalError(err, "failed to evaluate case file")
	}
	return CaseFileReport{CaseFile: caseFile, Report: report}, nil
}

// SystemPrompt returns the built-in system prompt.
func (a *assistant) SystemPrompt() string {
	return rag.DefaultSystemPrompt
}

// Health reports availability.
func (a *assistant) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Assistant: "available",
		Timestamp: time.Now().UTC(),
	}
	if !a.available() {
		status.Assistant = "unavailable"
		status.Missing = a.missing
		return status
	}
	if len(a.retrievalMissing) > 0 {
		status.Search = "unconfigured"
		status.RetrievalMissing = a.retrievalMissing
		return status
	}
	if a.pinger != nil {
		if err := a.pinger.Ping(ctx); err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "search backend unreachable", "error", err)
			status.Search = "unreachable"
		} else {
			status.Search = "ok"
		}
	}
	return status
}
