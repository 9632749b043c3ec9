package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/qdrant/go-client/qdrant"

	"ragbench/internal/contextutil"
)

// minKeywordLength drops short tokens from the keyword side of a hybrid query.
const minKeywordLength = 3

// Point is a chunk to be stored in Qdrant.
type Point struct {
	ID      string
	Vector  []float32
	Title   string
	Content string
	RelPath string
}

// QdrantSearch implements Searcher over a Qdrant collection. The keyword side of a hybrid
// query is a full-text match on the chunk payload; both sides are fused with RRF.
type QdrantSearch struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantSearch creates a new Qdrant-backed searcher.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333");
// the gRPC port is derived from the HTTP port.
func NewQdrantSearch(urlStr, collection string) (*QdrantSearch, error) {
	host, port, err := grpcAddress(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantSearch{
		client:     client,
		collection: collection,
	}, nil
}

// grpcAddress derives the Qdrant gRPC host and port from its HTTP URL.
func grpcAddress(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}
	return host, port, nil
}

// Search runs a fused dense + keyword query.
func (s *QdrantSearch) Search(ctx context.Context, q Query) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if q.Top <= 0 {
		return nil, fmt.Errorf("top must be greater than 0")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("qdrant search requires a query vector")
	}

	collection := s.collection
	if q.Index != "" {
		collection = q.Index
	}

	k := q.K
	if k <= 0 {
		k = q.Top
	}
	prefetchLimit := uint64(k)
	limit := uint64(q.Top)

	prefetch := []*qdrant.PrefetchQuery{
		{
			Query: qdrant.NewQuery(q.Vector...),
			Limit: &prefetchLimit,
		},
	}
	if filter := keywordFilter(q.Text); filter != nil {
		prefetch = append(prefetch, &qdrant.PrefetchQuery{
			Query:  qdrant.NewQuery(q.Vector...),
			Filter: filter,
			Limit:  &prefetchLimit,
		})
	}

	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Prefetch:       prefetch,
		Query:          qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	docs := make([]Document, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		docs = append(docs, documentFromPayload(point.Payload, point.Score))
	}

	logger.InfoContext(ctx, "search completed", "backend", "qdrant", "collection", collection, "top", q.Top, "results", len(docs))
	return docs, nil
}

// Upsert inserts or updates chunks in the collection.
func (s *QdrantSearch) Upsert(ctx context.Context, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				FieldChunk:   point.Content,
				FieldTitle:   point.Title,
				FieldRelPath: point.RelPath,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", s.collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", s.collection, "count", len(points))
	return nil
}

// DeleteDocument removes every point whose rel_path payload equals relPath. A missing
// collection holds nothing to delete.
func (s *QdrantSearch) DeleteDocument(ctx context.Context, relPath string) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(relPathFilter(relPath)),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete document points", "collection", s.collection, "rel_path", relPath, "error", err)
		return fmt.Errorf("failed to delete points for %s: %w", relPath, err)
	}

	logger.DebugContext(ctx, "deleted document points", "collection", s.collection, "rel_path", relPath)
	return nil
}

func relPathFilter(relPath string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(FieldRelPath, relPath)},
	}
}

// Ping checks that the collection exists.
func (s *QdrantSearch) Ping(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("collection %q does not exist", s.collection)
	}
	return nil
}

// EnsureCollection creates the collection and its full-text chunk index when missing,
// and validates the vector size when it already exists.
func (s *QdrantSearch) EnsureCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", s.collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      FieldChunk,
			FieldType:      qdrant.FieldType_FieldTypeText.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create text index: %w", err)
		}
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil || params.Size == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}
	if int(params.Size) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.Size)
	}

	logger.InfoContext(ctx, "collection validated", "collection", s.collection, "vector_size", vectorSize)
	return nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantSearch) Close() error {
	return s.client.Close()
}

// keywordFilter builds a should-match full-text filter from the query terms,
// or nil when the query has no usable terms.
func keywordFilter(text string) *qdrant.Filter {
	terms := keywordTerms(text)
	if len(terms) == 0 {
		return nil
	}
	should := make([]*qdrant.Condition, 0, len(terms))
	for _, term := range terms {
		should = append(should, qdrant.NewMatchText(FieldChunk, term))
	}
	return &qdrant.Filter{Should: should}
}

// keywordTerms lowercases text, splits it on non-alphanumerics and keeps distinct
// terms of at least minKeywordLength runes, in order of first appearance.
func keywordTerms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minKeywordLength {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// documentFromPayload maps a scored Qdrant point payload to a Document.
func documentFromPayload(payload map[string]*qdrant.Value, score float32) Document {
	meta := convertPayloadToMap(payload)
	content, _ := meta[FieldChunk].(string)
	title, _ := meta[FieldTitle].(string)
	return Document{
		Title:   title,
		Content: content,
		Score:   float64(score),
	}
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
