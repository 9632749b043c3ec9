package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ragbench/internal/config"
	"ragbench/internal/evaluation"
	"ragbench/internal/http"
	"ragbench/internal/llm"
	"ragbench/internal/rag"
	"ragbench/internal/search"
	"ragbench/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(newLogger(cfg))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	missing := cfg.Missing()
	if len(missing) > 0 {
		slog.Warn("RAG assistant unavailable, configuration incomplete", "missing", missing)
	}
	retrievalMissing := cfg.RetrievalMissing()
	if len(retrievalMissing) > 0 {
		slog.Warn("Retrieval unconfigured, answers will have no context", "missing", retrievalMissing)
	}

	searcher, pinger, closeSearch, err := newSearcher(cfg)
	if err != nil {
		log.Fatalf("Failed to create search client: %v", err)
	}
	defer closeSearch()
	slog.Info("Search backend configured", "backend", cfg.SearchBackend)

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingCredentials())
	completer := llm.NewClient()

	evalCreds := cfg.EvaluationCredentials()
	evaluator := evaluation.NewEvaluator(completer, evalCreds)
	slog.Info("Evaluator configured", "deployment", evaluator.Deployment())

	engine := rag.NewEngine(
		rag.NewRetriever(embedder, searcher),
		completer,
		cfg.Routes,
		evaluator,
		cfg.ChatCredentials(),
	)
	slog.Info("RAG engine initialized", "chat_deployment", cfg.ChatDeployment, "embedding_deployment", embedder.Deployment(), "routes", cfg.Routes.Models())

	assistant := service.NewAssistant(service.Options{
		Engine:    engine,
		Evaluator: evaluator,
		Pinger:    pinger,
		Settings: rag.Settings{
			CustomPrompt:     cfg.CustomPrompt,
			SystemPrompt:     cfg.SystemPrompt,
			SystemPromptMode: rag.PromptMode(cfg.SystemPromptMode),
		},
		Missing:          missing,
		RetrievalMissing: retrievalMissing,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.NewRouter(&http.Deps{Assistant: assistant}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// newSearcher builds the configured search backend. The returned func releases it.
func newSearcher(cfg *config.Config) (search.Searcher, search.Pinger, func(), error) {
	switch cfg.SearchBackend {
	case config.SearchBackendQdrant:
		qs, err := search.NewQdrantSearch(cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			return nil, nil, nil, err
		}
		return qs, qs, func() { _ = qs.Close() }, nil
	default:
		as := search.NewAzureSearch(search.AzureConfig{
			Endpoint:    cfg.SearchEndpoint,
			APIKey:      cfg.SearchKey,
			Index:       cfg.SearchIndex,
			VectorField: cfg.VectorField,
			APIVersion:  cfg.SearchAPIVersion,
		})
		return as, as, func() {}, nil
	}
}
