package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ragbench/internal/contextutil"
)

// DefaultAPIVersion is used when neither the instance nor the routing table names one.
const DefaultAPIVersion = "2023-05-15"

// reasoningPrefixes name deployments that reject sampling parameters and max_tokens.
var reasoningPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

// Client is a chat completions client for Azure OpenAI deployments.
// It holds no per-request state; every call builds a go-openai client from the
// credentials it is given, so one Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new chat completions client.
func NewClient() *Client {
	return &Client{
		httpClient: http.DefaultClient,
	}
}

// NewClientWithHTTPClient creates a chat completions client that sends requests through httpClient.
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
	}
}

// Complete sends one blocking chat completion request and returns the generated text.
// Transport and API errors are returned to the caller unchanged in kind.
func (c *Client) Complete(ctx context.Context, creds Credentials, messages []Message, params GenerationParams) (Completion, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req := buildChatRequest(creds.Deployment, messages, params)
	logger.InfoContext(ctx, "sending chat completion request",
		"deployment", creds.Deployment,
		"messages", len(messages),
		"temperature", params.Temperature,
		"top_p", params.TopP,
		"max_tokens", params.MaxTokens,
		"presence_penalty", params.PresencePenalty,
		"frequency_penalty", params.FrequencyPenalty,
	)

	resp, err := newOpenAIClient(creds, c.httpClient).CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("no choices returned")
	}

	completion := Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	logger.InfoContext(ctx, "received chat completion",
		"deployment", creds.Deployment,
		"answer_length", len(completion.Text),
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
	)
	return completion, nil
}

// Stream sends a streaming chat completion request and calls callback for every
// non-empty content fragment, in generation order.
func (c *Client) Stream(ctx context.Context, creds Credentials, messages []Message, params GenerationParams, callback func(chunk string) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	req := buildChatRequest(creds.Deployment, messages, params)
	req.Stream = true
	logger.InfoContext(ctx, "sending streaming chat completion request", "deployment", creds.Deployment, "messages", len(messages))

	stream, err := newOpenAIClient(creds, c.httpClient).CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create chat completion stream: %w", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if chunk := resp.Choices[0].Delta.Content; chunk != "" {
			if err := callback(chunk); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}
	}
}

// newOpenAIClient builds a go-openai client addressing an Azure deployment.
func newOpenAIClient(creds Credentials, httpClient *http.Client) *openai.Client {
	cfg := openai.DefaultAzureConfig(creds.APIKey, creds.Endpoint)
	if creds.APIVersion != "" {
		cfg.APIVersion = creds.APIVersion
	} else {
		cfg.APIVersion = DefaultAPIVersion
	}
	// Deployment names are used verbatim in the request path.
	cfg.AzureModelMapperFunc = func(model string) string { return model }
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(cfg)
}

// buildChatRequest converts messages and parameters into a go-openai request.
func buildChatRequest(deployment string, messages []Message, params GenerationParams) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:    deployment,
		Messages: msgs,
	}

	if isReasoningModel(params.Model, deployment) {
		req.MaxCompletionTokens = params.MaxTokens
		return req
	}

	req.MaxTokens = params.MaxTokens
	req.Temperature = params.Temperature
	// go-openai omits a zero temperature, which the API reads as 1.0.
	if req.Temperature == 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}
	req.TopP = params.TopP
	req.PresencePenalty = params.PresencePenalty
	req.FrequencyPenalty = params.FrequencyPenalty
	return req
}

// isReasoningModel reports whether any of names (the logical model id or the routed
// deployment) belongs to a reasoning model family. Routed deployments may carry
// arbitrary names, so the logical id alone is enough.
func isReasoningModel(names ...string) bool {
	for _, name := range names {
		for _, prefix := range reasoningPrefixes {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}
	return false
}
