package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient generates embeddings through an Azure OpenAI embedding deployment.
type EmbeddingsClient struct {
	creds  Credentials
	client *openai.Client
}

// NewEmbeddingsClient creates a new embeddings client for the deployment named in creds.
func NewEmbeddingsClient(creds Credentials) *EmbeddingsClient {
	return NewEmbeddingsClientWithHTTPClient(creds, http.DefaultClient)
}

// NewEmbeddingsClientWithHTTPClient creates an embeddings client that sends requests through httpClient.
func NewEmbeddingsClientWithHTTPClient(creds Credentials, httpClient *http.Client) *EmbeddingsClient {
	return &EmbeddingsClient{
		creds:  creds,
		client: newOpenAIClient(creds, httpClient),
	}
}

// Deployment returns the embedding deployment name.
func (c *EmbeddingsClient) Deployment() string {
	return c.creds.Deployment
}

// Embed returns the embedding vector for a single text.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates embeddings for the given texts, one vector per input in input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = strings.TrimSpace(t)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.creds.Deployment),
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// The API reports each vector's input position; results are placed by it.
	result := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		if result[data.Index] != nil {
			return nil, fmt.Errorf("duplicate embedding index %d", data.Index)
		}
		if len(data.Embedding) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", data.Index)
		}
		result[data.Index] = data.Embedding
	}

	return result, nil
}
