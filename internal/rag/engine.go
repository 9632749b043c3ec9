package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_completer.go -package=mocks ragbench/internal/rag ChatCompleter
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_evaluator.go -package=mocks ragbench/internal/rag Evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ragbench/internal/contextutil"
	"ragbench/internal/evaluation"
	"ragbench/internal/llm"
)

// ChatCompleter talks to the chat completion endpoint.
type ChatCompleter interface {
	Complete(ctx context.Context, creds llm.Credentials, messages []llm.Message, params llm.GenerationParams) (llm.Completion, error)
	Stream(ctx context.Context, creds llm.Credentials, messages []llm.Message, params llm.GenerationParams, callback func(chunk string) error) error
}

// Evaluator runs the secondary diagnostic pass.
type Evaluator interface {
	Evaluate(ctx context.Context, in evaluation.Input) (evaluation.Report, error)
}

// Router resolves per-model credentials. Empty route fields inherit from base.
type Router interface {
	Resolve(model string, base llm.Credentials) llm.Credentials
}

// Engine answers questions from retrieved, cited sources.
type Engine interface {
	// Ask runs the full pipeline and returns the renumbered answer.
	Ask(ctx context.Context, req QueryRequest) (QueryResponse, error)
	// Stream delivers answer fragments in generation order, then exactly one StreamResult
	// after the fragment channel has been closed.
	Stream(ctx context.Context, req QueryRequest) (<-chan string, <-chan StreamResult)
}

type ragEngine struct {
	retriever *Retriever
	completer ChatCompleter
	router    Router
	evaluator Evaluator
	creds     llm.Credentials
}

// NewEngine creates a RAG engine. creds are the instance defaults; router and
// evaluator may be nil.
func NewEngine(retriever *Retriever, completer ChatCompleter, router Router, evaluator Evaluator, creds llm.Credentials) Engine {
	return &ragEngine{
		retriever: retriever,
		completer: completer,
		router:    router,
		evaluator: evaluator,
		creds:     creds,
	}
}

// prepared is everything resolved before the completion call.
type prepared struct {
	contextText  string
	sources      []Source
	systemPrompt string
	messages     []llm.Message
	params       llm.GenerationParams
	creds        llm.Credentials
}

func (e *ragEngine) prepare(ctx context.Context, req QueryRequest) prepared {
	logger := contextutil.LoggerFromContext(ctx)

	retrieved := e.retriever.Retrieve(ctx, req.Query, req.Settings.SearchIndex)
	if retrieved.Kind != KindOK {
		logger.WarnContext(ctx, "retrieval degraded to empty context", "kind", retrieved.Kind.String())
	}

	contextText, sources := AssembleContext(retrieved.Value)
	for _, src := range sources {
		logger.DebugContext(ctx, "source", "id", src.ID, "title", src.Title, "content", src.Content)
	}

	systemPrompt := ResolveSystemPrompt(req.Settings, req.AppendedPrompt)
	userContent := BuildUserContent(req.Query, contextText, req.Settings.CustomPrompt)
	params := ResolveParams(req.Settings, req.Overrides)
	creds := e.resolveCredentials(params.Model)

	logger.InfoContext(ctx, "prompt resolved",
		"model", params.Model,
		"deployment", creds.Deployment,
		"sources", len(sources),
		"system_prompt_length", len(systemPrompt),
		"user_content_length", len(userContent),
		"temperature", params.Temperature,
		"top_p", params.TopP,
		"max_tokens", params.MaxTokens,
	)
	logger.DebugContext(ctx, "prompt messages", "system_prompt", systemPrompt, "user_content", userContent)

	return prepared{
		contextText:  contextText,
		sources:      sources,
		systemPrompt: systemPrompt,
		messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: userContent},
		},
		params: params,
		creds:  creds,
	}
}

// resolveCredentials selects the deployment for model and applies its route.
func (e *ragEngine) resolveCredentials(model string) llm.Credentials {
	base := e.creds
	if model != "" {
		base.Deployment = model
	}
	if e.router == nil {
		return base
	}
	return e.router.Resolve(model, base)
}

func (e *ragEngine) complete(ctx context.Context, p prepared) Result[llm.Completion] {
	completion, err := e.completer.Complete(ctx, p.creds, p.messages, p.params)
	if err != nil {
		return HardFailure[llm.Completion](fmt.Errorf("failed to get completion: %w", err))
	}
	return OK(completion)
}

// Ask answers req.Query using RAG.
func (e *ragEngine) Ask(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "RAG query started", "query_length", len(req.Query))

	p := e.prepare(ctx, req)

	completion, err := e.complete(ctx, p).Unwrap()
	if err != nil {
		logger.ErrorContext(ctx, "completion failed", "error", err)
		return QueryResponse{}, err
	}

	answer, cited := FilterAndRenumber(completion.Text, p.sources)
	logger.InfoContext(ctx, "RAG query completed",
		"answer_length", len(answer),
		"sources_offered", len(p.sources),
		"sources_cited", len(cited),
	)

	return QueryResponse{
		Answer:       answer,
		Sources:      cited,
		Evaluation:   e.evaluate(ctx, req.Query, p.systemPrompt, answer, p.contextText),
		Context:      p.contextText,
		SystemPrompt: p.systemPrompt,
		Params:       p.params,
		Usage:        completion.Usage,
	}, nil
}

// Stream answers req.Query incrementally.
func (e *ragEngine) Stream(ctx context.Context, req QueryRequest) (<-chan string, <-chan StreamResult) {
	fragments := make(chan string)
	results := make(chan StreamResult, 1)

	go func() {
		defer close(results)
		logger := contextutil.LoggerFromContext(ctx)
		logger.InfoContext(ctx, "RAG stream started", "query_length", len(req.Query))

		p := e.prepare(ctx, req)

		var collected strings.Builder
		err := e.completer.Stream(ctx, p.creds, p.messages, p.params, func(chunk string) error {
			collected.WriteString(chunk)
			select {
			case fragments <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		close(fragments)

		if err != nil {
			logger.ErrorContext(ctx, "stream failed", "error", err)
			results <- StreamResult{
				Answer:  collected.String(),
				Sources: []CitedSource{},
				Err:     fmt.Errorf("failed to stream completion: %w", err),
			}
			return
		}

		answer, cited := FilterAndRenumber(collected.String(), p.sources)
		logger.InfoContext(ctx, "RAG stream completed", "answer_length", len(answer), "sources_cited", len(cited))

		results <- StreamResult{
			Answer:     answer,
			Sources:    cited,
			Evaluation: e.evaluate(ctx, req.Query, p.systemPrompt, answer, p.contextText),
		}
	}()

	return fragments, results
}

// evaluate runs the diagnostic pass. Failures are reported in the result and never
// fail the request; nothing is evaluated without context.
func (e *ragEngine) evaluate(ctx context.Context, query, systemPrompt, answer, contextText string) *Evaluation {
	if e.evaluator == nil || strings.TrimSpace(contextText) == "" {
		return nil
	}
	logger := contextutil.LoggerFromContext(ctx)

	report, err := e.evaluator.Evaluate(ctx, evaluation.Input{
		UserQuery:     query,
		SystemPrompt:  systemPrompt,
		ModelResponse: answer,
		Sources:       evaluation.TextSources(contextText),
	})
	if err != nil {
		logger.WarnContext(ctx, "evaluation failed", "error", err)
		var missing *evaluation.MissingFieldsError
		if errors.As(err, &missing) {
			return &Evaluation{Error: "Input Error", MissingFields: missing.Fields}
		}
		return &Evaluation{Error: err.Error()}
	}
	return &Evaluation{Report: report.Markdown, HTML: report.HTML}
}
