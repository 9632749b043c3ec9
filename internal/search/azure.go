package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ragbench/internal/contextutil"
)

// DefaultAzureAPIVersion is the Azure AI Search REST API version that supports vector queries.
const DefaultAzureAPIVersion = "2023-11-01"

// AzureConfig configures an Azure AI Search client.
type AzureConfig struct {
	// Endpoint is either the bare service name ("my-search") or a full URL.
	Endpoint    string
	APIKey      string
	Index       string
	VectorField string
	APIVersion  string
}

// AzureSearch implements Searcher against the Azure AI Search REST API.
type AzureSearch struct {
	baseURL     string
	apiKey      string
	index       string
	vectorField string
	apiVersion  string
	client      *http.Client
}

// NewAzureSearch creates a new Azure AI Search client.
func NewAzureSearch(cfg AzureConfig) *AzureSearch {
	return NewAzureSearchWithHTTPClient(cfg, http.DefaultClient)
}

// NewAzureSearchWithHTTPClient creates an Azure AI Search client that sends requests through httpClient.
func NewAzureSearchWithHTTPClient(cfg AzureConfig, httpClient *http.Client) *AzureSearch {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	return &AzureSearch{
		baseURL:     ServiceURL(cfg.Endpoint),
		apiKey:      cfg.APIKey,
		index:       cfg.Index,
		vectorField: cfg.VectorField,
		apiVersion:  apiVersion,
		client:      httpClient,
	}
}

// ServiceURL expands a bare Azure AI Search service name into its URL.
// Values that already carry a scheme are returned without a trailing slash.
func ServiceURL(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimRight(endpoint, "/")
	}
	return fmt.Sprintf("https://%s.search.windows.net", endpoint)
}

type azureVectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
}

type azureSearchRequest struct {
	Search        string             `json:"search"`
	Select        string             `json:"select"`
	Top           int                `json:"top"`
	VectorQueries []azureVectorQuery `json:"vectorQueries,omitempty"`
}

type azureSearchResponse struct {
	Value []struct {
		Score float64 `json:"@search.score"`
		Chunk string  `json:"chunk"`
		Title string  `json:"title"`
	} `json:"value"`
}

// Search runs one combined keyword + vector query.
func (s *AzureSearch) Search(ctx context.Context, q Query) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	index := s.index
	if q.Index != "" {
		index = q.Index
	}
	if index == "" {
		return nil, fmt.Errorf("search index is not configured")
	}

	payload := azureSearchRequest{
		Search: q.Text,
		Select: FieldChunk + "," + FieldTitle,
		Top:    q.Top,
	}
	if len(q.Vector) > 0 {
		payload.VectorQueries = []azureVectorQuery{{
			Kind:   "vector",
			Vector: q.Vector,
			K:      q.K,
			Fields: s.vectorField,
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", s.baseURL, url.PathEscape(index), url.QueryEscape(s.apiVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var searchResp azureSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	docs := make([]Document, 0, len(searchResp.Value))
	for _, v := range searchResp.Value {
		docs = append(docs, Document{
			Title:   v.Title,
			Content: v.Chunk,
			Score:   v.Score,
		})
	}

	logger.InfoContext(ctx, "search completed", "backend", "azure", "index", index, "top", q.Top, "results", len(docs))
	return docs, nil
}

// Ping checks that the configured index answers a document count request.
func (s *AzureSearch) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/indexes/%s/docs/$count?api-version=%s", s.baseURL, url.PathEscape(s.index), url.QueryEscape(s.apiVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status %d", resp.StatusCode)
	}
	return nil
}
