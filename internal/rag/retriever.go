package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks ragbench/internal/rag Embedder

import (
	"context"
	"errors"
	"strings"

	"ragbench/internal/contextutil"
	"ragbench/internal/search"
)

const (
	// DefaultNeighbors is the number of nearest neighbours requested from the vector side.
	DefaultNeighbors = 10
	// DefaultTop caps the number of candidates returned by one search.
	DefaultTop = 10
	// UntitledSource is the title given to hits without one.
	UntitledSource = "Untitled"
)

var (
	errBlankQuery = errors.New("query is blank")
	errNoVector   = errors.New("no embedding returned")
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever embeds a query and runs one hybrid search. It never returns a hard failure.
type Retriever struct {
	embedder Embedder
	searcher search.Searcher
	k        int
	top      int
}

// NewRetriever creates a retriever with the default neighbour count and result cap.
func NewRetriever(embedder Embedder, searcher search.Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		k:        DefaultNeighbors,
		top:      DefaultTop,
	}
}

// Embed returns the query vector. Blank text is a soft failure without a remote call;
// remote errors are logged and absorbed.
func (r *Retriever) Embed(ctx context.Context, text string) Result[[]float32] {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return SoftFailure[[]float32](errBlankQuery)
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		logger.ErrorContext(ctx, "embedding failed", "error", err)
		return SoftFailure[[]float32](err)
	}
	if len(vector) == 0 {
		logger.WarnContext(ctx, "embedding returned no vector")
		return SoftFailure[[]float32](errNoVector)
	}
	return OK(vector)
}

// Retrieve returns up to DefaultTop candidates in the backend's order. Any failure
// yields a soft failure, which callers treat as "no knowledge available".
// index overrides the backend's default index when non-empty.
func (r *Retriever) Retrieve(ctx context.Context, query, index string) Result[[]Candidate] {
	logger := contextutil.LoggerFromContext(ctx)

	embedded := r.Embed(ctx, query)
	if embedded.Kind != KindOK {
		logger.InfoContext(ctx, "skipping search", "reason", embedded.Err)
		return SoftFailure[[]Candidate](embedded.Err)
	}

	docs, err := r.searcher.Search(ctx, search.Query{
		Text:   query,
		Vector: embedded.Value,
		K:      r.k,
		Top:    r.top,
		Index:  index,
	})
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		return SoftFailure[[]Candidate](err)
	}

	candidates := make([]Candidate, 0, len(docs))
	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = UntitledSource
		}
		candidates = append(candidates, Candidate{
			Content:   doc.Content,
			Title:     title,
			Relevance: doc.Score,
		})
	}

	logger.InfoContext(ctx, "retrieval completed", "candidates", len(candidates))
	return OK(candidates)
}
