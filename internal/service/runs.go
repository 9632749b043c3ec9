package service

import (
	"context"
	"fmt"

	"ragbench/internal/contextutil"
	"ragbench/internal/rag"
)

// MaxRuns caps the number of runs in one batch.
const MaxRuns = 10

// BatchParams is one parameter set for repeated runs.
type BatchParams struct {
	Model        string   `json:"model,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  *float32 `json:"temperature,omitempty"`
	TopP         *float32 `json:"top_p,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	Runs         int      `json:"n_runs"`
}

// ReAskRequest repeats one query under one parameter set.
type ReAskRequest struct {
	Query  string
	Params BatchParams
}

// RunResult is the outcome of one run. Error is set instead of the answer fields
// when the run failed.
type RunResult struct {
	Run        int               `json:"run"`
	Answer     string            `json:"answer,omitempty"`
	Sources    []rag.CitedSource `json:"sources,omitempty"`
	Evaluation *rag.Evaluation   `json:"evaluation,omitempty"`
	Context    string            `json:"context,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ReAskResponse collects every run of a ReAskRequest.
type ReAskResponse struct {
	Query      string      `json:"query"`
	Parameters BatchParams `json:"parameters"`
	Results    []RunResult `json:"results"`
}

// CompareRequest runs one query under two parameter batches.
type CompareRequest struct {
	Query  string
	Batch1 BatchParams
	Batch2 BatchParams
}

// BatchResult is the outcome of one batch.
type BatchResult struct {
	Parameters BatchParams `json:"parameters"`
	Results    []RunResult `json:"results"`
}

// CompareResponse holds both batches.
type CompareResponse struct {
	Query  string      `json:"query"`
	Batch1 BatchResult `json:"batch_1"`
	Batch2 BatchResult `json:"batch_2"`
}

// ReAsk runs req.Query req.Params.Runs times, sequentially. A failed run is recorded
// in its result and does not stop the batch.
func (a *assistant) ReAsk(ctx context.Context, req ReAskRequest) (ReAskResponse, error) {
	if err := a.checkBatch(ctx, req.Query, req.Params, "n_runs"); err != nil {
		return ReAskResponse{}, err
	}

	return ReAskResponse{
		Query:      req.Query,
		Parameters: req.Params,
		Results:    a.runBatch(ctx, "reask", req.Query, req.Params),
	}, nil
}

// Compare runs both batches of req, batch 1 first.
func (a *assistant) Compare(ctx context.Context, req CompareRequest) (CompareResponse, error) {
	if err := a.checkBatch(ctx, req.Query, req.Batch1, "n_runs1"); err != nil {
		return CompareResponse{}, err
	}
	if err := a.checkBatch(ctx, req.Query, req.Batch2, "n_runs2"); err != nil {
		return CompareResponse{}, err
	}

	return CompareResponse{
		Query: req.Query,
		Batch1: BatchResult{
			Parameters: req.Batch1,
			Results:    a.runBatch(ctx, "compare_batch_1", req.Query, req.Batch1),
		},
		Batch2: BatchResult{
			Parameters: req.Batch2,
			Results:    a.runBatch(ctx, "compare_batch_2", req.Query, req.Batch2),
		},
	}, nil
}

func (a *assistant) checkBatch(ctx context.Context, query string, params BatchParams, runsField string) error {
	if params.Runs < 1 || params.Runs > MaxRuns {
		return &ValidationError{Field: runsField, Message: fmt.Sprintf("must be between 1 and %d", MaxRuns)}
	}
	return a.checkQuery(ctx, QueryRequest{Query: query})
}

func (a *assistant) runBatch(ctx context.Context, label, query string, params BatchParams) []RunResult {
	logger := contextutil.LoggerFromContext(ctx).With("batch", label)

	req := a.buildRequest(QueryRequest{
		Query:        query,
		Model:        params.Model,
		Temperature:  params.Temperature,
		TopP:         params.TopP,
		MaxTokens:    params.MaxTokens,
		SystemPrompt: params.SystemPrompt,
	})

	results := make([]RunResult, 0, params.Runs)
	for i := 1; i <= params.Runs; i++ {
		if err := ctx.Err(); err != nil {
			results = append(results, RunResult{Run: i, Error: WrapError(err, "run skipped").Error()})
			continue
		}

		resp, err := a.engine.Ask(ctx, req)
		if err != nil {
			logger.ErrorContext(ctx, "run failed", "run", i, "error", err)
			results = append(results, RunResult{Run: i, Error: err.Error()})
			continue
		}

		logger.InfoContext(ctx, "run completed", "run", i, "answer_length", len(resp.Answer), "sources", len(resp.Sources))
		results = append(results, RunResult{
			Run:        i,
			Answer:     resp.Answer,
			Sources:    resp.Sources,
			Evaluation: resp.Evaluation,
			Context:    resp.Context,
		})
	}
	return results
}
