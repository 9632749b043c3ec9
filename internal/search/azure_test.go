package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServiceURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{name: "bare service name", endpoint: "my-search", want: "https://my-search.search.windows.net"},
		{name: "full url", endpoint: "https://my-search.search.windows.net", want: "https://my-search.search.windows.net"},
		{name: "trailing slash", endpoint: "http://localhost:8080/", want: "http://localhost:8080"},
		{name: "surrounding whitespace", endpoint: "  docs ", want: "https://docs.search.windows.net"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ServiceURL(tt.endpoint); got != tt.want {
				t.Errorf("ServiceURL(%q) = %q, want %q", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestAzureSearch_Search(t *testing.T) {
	var gotBody azureSearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/indexes/docs-index/docs/search" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("api-version"); got != DefaultAzureAPIVersion {
			t.Errorf("api-version = %q, want %q", got, DefaultAzureAPIVersion)
		}
		if got := r.Header.Get("api-key"); got != "secret" {
			t.Errorf("api-key = %q, want %q", got, "secret")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":[
			{"@search.score":2.5,"chunk":"Refunds take 5 days.","title":"Policy"},
			{"@search.score":1.0,"chunk":"","title":"Empty"}
		]}`))
	}))
	defer server.Close()

	s := NewAzureSearchWithHTTPClient(AzureConfig{
		Endpoint:    server.URL,
		APIKey:      "secret",
		Index:       "default-index",
		VectorField: "contentVector",
	}, server.Client())

	docs, err := s.Search(context.Background(), Query{
		Text:   "refund",
		Vector: []float32{0.1, 0.2},
		K:      10,
		Top:    10,
		Index:  "docs-index",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0].Title != "Policy" || docs[0].Content != "Refunds take 5 days." || docs[0].Score != 2.5 {
		t.Errorf("Unexpected first document: %+v", docs[0])
	}
	if docs[1].Content != "" {
		t.Errorf("Expected empty content to be passed through, got %q", docs[1].Content)
	}

	if gotBody.Search != "refund" || gotBody.Top != 10 || gotBody.Select != "chunk,title" {
		t.Errorf("Unexpected request body: %+v", gotBody)
	}
	if len(gotBody.VectorQueries) != 1 {
		t.Fatalf("Expected 1 vector query, got %d", len(gotBody.VectorQueries))
	}
	vq := gotBody.VectorQueries[0]
	if vq.Kind != "vector" || vq.K != 10 || vq.Fields != "contentVector" || len(vq.Vector) != 2 {
		t.Errorf("Unexpected vector query: %+v", vq)
	}
}

func TestAzureSearch_Search_KeywordOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["vectorQueries"]; ok {
			t.Error("Expected no vectorQueries without a vector")
		}
		if r.URL.Path != "/indexes/default-index/docs/search" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	defer server.Close()

	s := NewAzureSearchWithHTTPClient(AzureConfig{Endpoint: server.URL, Index: "default-index"}, server.Client())
	docs, err := s.Search(context.Background(), Query{Text: "refund", Top: 5})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected no documents, got %d", len(docs))
	}
}

func TestAzureSearch_Search_Errors(t *testing.T) {
	tests := []struct {
		name    string
		index   string
		handler http.HandlerFunc
	}{
		{
			name:  "missing index",
			index: "",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("Expected no request without an index")
			},
		},
		{
			name:  "bad status",
			index: "idx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "forbidden", http.StatusForbidden)
			},
		},
		{
			name:  "invalid json",
			index: "idx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			s := NewAzureSearchWithHTTPClient(AzureConfig{Endpoint: server.URL, Index: tt.index}, server.Client())
			if _, err := s.Search(context.Background(), Query{Text: "q", Top: 1}); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestAzureSearch_Ping(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/indexes/idx/docs/$count" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte("42"))
	}))
	defer server.Close()

	s := NewAzureSearchWithHTTPClient(AzureConfig{Endpoint: server.URL, Index: "idx"}, server.Client())
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	status = http.StatusNotFound
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Expected Ping() to fail on 404")
	}
}
