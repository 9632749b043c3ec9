package rag

import "ragbench/internal/llm"

// Candidate is one chunk returned by the hybrid retriever, in backend rank order.
type Candidate struct {
	Content   string
	Title     string
	Relevance float64
}

// Source is a numbered, prompt-visible chunk. IDs are 1-based and contiguous
// in retrieval rank order.
type Source struct {
	ID      int
	Title   string
	Content string
}

// CitedSource is a source the answer actually referenced, carrying its renumbered id.
type CitedSource struct {
	// ID is the renumbered citation id ("1", "2", ...).
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// PromptMode controls how a system prompt override combines with the default prompt.
type PromptMode string

const (
	// PromptModeAppend prepends the override to the default prompt. It is the default mode.
	PromptModeAppend PromptMode = "Append"
	// PromptModeOverride replaces the default prompt entirely.
	PromptModeOverride PromptMode = "Override"
)

// Settings are the per-assistant options layered over the built-in defaults.
// Nil pointers and empty strings mean "not set".
type Settings struct {
	// Model is the logical model identifier used when a call does not pick one.
	Model            string
	Temperature      *float32
	TopP             *float32
	MaxTokens        *int
	PresencePenalty  *float32
	FrequencyPenalty *float32

	// CustomPrompt is prepended to the user query.
	CustomPrompt string
	// SystemPrompt overrides or extends the default system prompt according to SystemPromptMode.
	SystemPrompt     string
	SystemPromptMode PromptMode

	// SearchIndex overrides the search backend's default index.
	SearchIndex string
}

// CallOverrides are explicit per-call arguments. They win over Settings.
type CallOverrides struct {
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
}

// QueryRequest is one question to answer.
type QueryRequest struct {
	Query     string
	Settings  Settings
	Overrides CallOverrides
	// AppendedPrompt is appended to the resolved system prompt regardless of mode.
	AppendedPrompt string
}

// Evaluation is the outcome of the secondary diagnostic pass.
type Evaluation struct {
	Report        string   `json:"report,omitempty"`
	HTML          string   `json:"html,omitempty"`
	Error         string   `json:"error,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// QueryResponse is the answer to a QueryRequest.
type QueryResponse struct {
	Answer  string        `json:"answer"`
	Sources []CitedSource `json:"sources"`
	// Evaluation is nil when no context was retrieved or no evaluator is configured.
	Evaluation *Evaluation `json:"evaluation"`
	// Context is the tagged source block sent to the model.
	Context      string               `json:"context"`
	SystemPrompt string               `json:"system_prompt"`
	Params       llm.GenerationParams `json:"parameters"`
	Usage        llm.Usage            `json:"usage"`
}

// StreamResult is delivered once on the result channel after the fragment channel closes.
type StreamResult struct {
	Answer     string        `json:"answer"`
	Sources    []CitedSource `json:"sources"`
	Evaluation *Evaluation   `json:"evaluation"`
	Err        error         `json:"-"`
}
