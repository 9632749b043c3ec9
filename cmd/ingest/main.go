package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ragbench/internal/config"
	"ragbench/internal/ingest"
	"ragbench/internal/llm"
	"ragbench/internal/search"
)

func main() {
	dir := flag.String("dir", ".", "directory of markdown files to ingest")
	batchSize := flag.Int("batch", ingest.DefaultBatchSize, "chunks embedded per request")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	if cfg.OpenAIEndpoint == "" || cfg.OpenAIKey == "" || cfg.EmbeddingDeployment == "" {
		log.Fatal("OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and EMBEDDING_DEPLOYMENT are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := search.NewQdrantSearch(cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingCredentials())
	pipeline := ingest.NewPipeline(embedder, store, ingest.Options{
		BatchSize:  *batchSize,
		VectorSize: cfg.QdrantVectorSize,
	})

	slog.Info("Starting ingest", "dir", *dir, "collection", cfg.QdrantCollection, "embedding_deployment", embedder.Deployment())
	stats, err := pipeline.IngestDir(ctx, *dir)
	if err != nil {
		log.Fatalf("Ingest failed after %d files: %v", stats.Files, err)
	}
	slog.Info("Ingest finished", "files", stats.Files, "chunks", stats.Chunks, "skipped", stats.Skipped)
}
