package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerationParams holds the sampling parameters for one completion request.
type GenerationParams struct {
	// Model is the logical model identifier the caller selected (e.g. "gpt-4o").
	// The deployment actually addressed comes from Credentials.
	Model string `json:"model,omitempty"`

	Temperature      float32 `json:"temperature"`
	TopP             float32 `json:"top_p"`
	MaxTokens        int     `json:"max_tokens"`
	PresencePenalty  float32 `json:"presence_penalty"`
	FrequencyPenalty float32 `json:"frequency_penalty"`
}

// Credentials selects the endpoint, key, API version and deployment a request is sent to.
type Credentials struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Completion is the result of a non-streaming chat completion.
type Completion struct {
	Text  string
	Usage Usage
}
