// Package ingest loads markdown documents into the Qdrant search backend.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ragbench/internal/contextutil"
	"ragbench/internal/search"
)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 16

// pointNamespace scopes the deterministic point ids, so re-ingesting a file overwrites its chunks.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ragbench/ingest"))

// Embedder generates one vector per input text, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Store receives embedded chunks.
type Store interface {
	EnsureCollection(ctx context.Context, vectorSize int) error
	// DeleteDocument removes every stored chunk of relPath.
	DeleteDocument(ctx context.Context, relPath string) error
	Upsert(ctx context.Context, points []search.Point) error
}

// Options configures a Pipeline.
type Options struct {
	// BatchSize defaults to DefaultBatchSize.
	BatchSize int
	// VectorSize is the expected embedding size. Zero accepts whatever the embedder returns.
	VectorSize int
}

// Stats summarizes one ingest run.
type Stats struct {
	Files   int `json:"files"`
	Chunks  int `json:"chunks"`
	Skipped int `json:"skipped"`
}

// Pipeline chunks, embeds and stores markdown files. It is not safe for concurrent use.
type Pipeline struct {
	chunker    *Chunker
	embedder   Embedder
	store      Store
	batchSize  int
	vectorSize int
	ensured    bool
}

// NewPipeline creates a new Pipeline.
func NewPipeline(embedder Embedder, store Store, opts Options) *Pipeline {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		chunker:    NewChunker(),
		embedder:   embedder,
		store:      store,
		batchSize:  batchSize,
		vectorSize: opts.VectorSize,
	}
}

// IngestDir ingests every .md and .markdown file under root. Unreadable files are
// skipped; embedding or storage failures stop the run.
func (p *Pipeline) IngestDir(ctx context.Context, root string) (Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var stats Stats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.WarnContext(ctx, "skipping unreadable path", "path", path, "error", walkErr)
			stats.Skipped++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable file", "path", path, "error", err)
			stats.Skipped++
			return nil
		}

		n, err := p.IngestDocument(ctx, filepath.ToSlash(relPath), content)
		if err != nil {
			return err
		}
		stats.Files++
		stats.Chunks += n
		return nil
	})
	if err != nil {
		return stats, err
	}

	logger.InfoContext(ctx, "ingest completed", "files", stats.Files, "chunks", stats.Chunks, "skipped", stats.Skipped)
	return stats, nil
}

// IngestDocument chunks one document and replaces its stored chunks. It returns the
// number of chunks stored.
func (p *Pipeline) IngestDocument(ctx context.Context, relPath string, content []byte) (int, error) {
	logger := contextutil.LoggerFromContext(ctx).With("rel_path", relPath)

	title, chunks := p.chunker.Chunk(content, relPath)

	// Chunks left over from a longer previous version would otherwise survive.
	if err := p.store.DeleteDocument(ctx, relPath); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", relPath, err)
	}
	if len(chunks) == 0 {
		logger.DebugContext(ctx, "document produced no chunks")
		return 0, nil
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = embeddingText(title, c)
		}
		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed %s: %w", relPath, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("failed to embed %s: expected %d vectors, got %d", relPath, len(batch), len(vectors))
		}
		if err := p.ensureCollection(ctx, len(vectors[0])); err != nil {
			return 0, err
		}

		points := make([]search.Point, len(batch))
		for i, c := range batch {
			points[i] = search.Point{
				ID:      PointID(relPath, c.Index),
				Vector:  vectors[i],
				Title:   title,
				Content: c.Text,
				RelPath: relPath,
			}
		}
		if err := p.store.Upsert(ctx, points); err != nil {
			return 0, fmt.Errorf("failed to store %s: %w", relPath, err)
		}
	}

	logger.InfoContext(ctx, "document ingested", "title", title, "chunks", len(chunks))
	return len(chunks), nil
}

// ErrVectorSizeMismatch is returned when the embedder disagrees with the configured vector size.
var ErrVectorSizeMismatch = errors.New("embedding vector size mismatch")

func (p *Pipeline) ensureCollection(ctx context.Context, got int) error {
	if p.vectorSize != 0 && got != p.vectorSize {
		return fmt.Errorf("%w: expected %d, got %d", ErrVectorSizeMismatch, p.vectorSize, got)
	}
	if p.ensured {
		return nil
	}
	if err := p.store.EnsureCollection(ctx, got); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	p.vectorSize = got
	p.ensured = true
	return nil
}

// PointID derives a stable point id for the chunk at index of relPath.
func PointID(relPath string, index int) string {
	return uuid.NewSHA1(pointNamespace, []byte(relPath+"#"+strconv.Itoa(index))).String()
}

// embeddingText prefixes the chunk with its document title and heading path.
func embeddingText(title string, c Chunk) string {
	parts := []string{title}
	if c.HeadingPath != "" {
		parts = append(parts, c.HeadingPath)
	}
	parts = append(parts, c.Text)
	return strings.Join(parts, "\n\n")
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
