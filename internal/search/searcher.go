package search

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks ragbench/internal/search Searcher

import "context"

// Payload field names shared by every backend and by the ingest pipeline.
const (
	FieldChunk   = "chunk"
	FieldTitle   = "title"
	FieldRelPath = "rel_path"
)

// Query describes one hybrid (vector + keyword) search.
type Query struct {
	// Text is the free-text keyword query.
	Text string
	// Vector is the dense query embedding. Azure falls back to keyword-only search when it is empty;
	// Qdrant requires it.
	Vector []float32
	// K is the number of nearest neighbours requested from the vector side.
	K int
	// Top caps the number of documents returned.
	Top int
	// Index overrides the backend's default index or collection when non-empty.
	Index string
}

// Document is one ranked search hit.
type Document struct {
	Title   string
	Content string
	Score   float64
}

// Searcher runs a hybrid search and returns documents in the backend's rank order.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Document, error)
}

// Pinger is implemented by backends that can report whether their index is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
