package rag

import (
	"fmt"
	"strings"

	"ragbench/internal/llm"
)

// Generation defaults applied before settings and call overrides.
const (
	DefaultTemperature      float32 = 0.3
	DefaultTopP             float32 = 1.0
	DefaultMaxTokens                = 1000
	DefaultPresencePenalty  float32 = 0.6
	DefaultFrequencyPenalty float32 = 0.6
)

// DefaultSystemPrompt is the built-in citation instruction. The {{CONTEXT}} and
// {{QUERY}} placeholders are left as-is; context and query travel in the user message.
const DefaultSystemPrompt = `### Task:

Respond to the user query using the provided context, incorporating inline citations in the format [id] **only when the <source> tag includes an explicit id attribute** (e.g., <source id="1">).

### Guidelines:

- If you don't know the answer, clearly state that.
- If uncertain, ask the user for clarification.
- Respond in the same language as the user's query.
- If the context is unreadable or of poor quality, inform the user and provide the best possible answer.
- If the answer isn't present in the context but you possess the knowledge, explain this to the user and provide the answer using your own understanding.
- **Only include inline citations using [id] (e.g., [1], [2]) when the <source> tag includes an id attribute.**
- Do not cite if the <source> tag does not contain an id attribute.
- Do not use XML tags in your response.
- Ensure citations are concise and directly related to the information provided.

### Example of Citation:

If the user asks about a specific topic and the information is found in a source with a provided id attribute, the response should include the citation like in the following example:

* "According to the study, the proposed method increases efficiency by 20% [1]."

### Output:

Provide a clear and direct response to the user's query, including inline citations in the format [id] only when the <source> tag with id attribute is present in the context.

<context>

{{CONTEXT}}
</context>

<user_query>

{{QUERY}}
</user_query>`

// ResolveSystemPrompt builds the system prompt from the default, the configured
// override and the per-call appended suffix. The result is trimmed.
func ResolveSystemPrompt(settings Settings, appended string) string {
	prompt := DefaultSystemPrompt
	if settings.SystemPrompt != "" {
		if settings.SystemPromptMode == PromptModeOverride {
			prompt = settings.SystemPrompt
		} else {
			prompt = settings.SystemPrompt + "\n\n" + DefaultSystemPrompt
		}
	}
	if appended != "" {
		prompt += "\n" + appended
	}
	return strings.TrimSpace(prompt)
}

// BuildUserContent wraps the retrieved context and the query in tagged blocks.
// A configured custom prompt is prepended to the query.
func BuildUserContent(query, contextText, customPrompt string) string {
	if customPrompt != "" {
		query = customPrompt + "\n\n" + query
	}
	return fmt.Sprintf("<context>\n%s\n</context>\n<user_query>\n%s\n</user_query>", contextText, query)
}

// ResolveParams layers settings over the defaults and call overrides over settings.
func ResolveParams(settings Settings, overrides CallOverrides) llm.GenerationParams {
	params := llm.GenerationParams{
		Model:            settings.Model,
		Temperature:      DefaultTemperature,
		TopP:             DefaultTopP,
		MaxTokens:        DefaultMaxTokens,
		PresencePenalty:  DefaultPresencePenalty,
		FrequencyPenalty: DefaultFrequencyPenalty,
	}

	if settings.Temperature != nil {
		params.Temperature = *settings.Temperature
	}
	if settings.TopP != nil {
		params.TopP = *settings.TopP
	}
	if settings.MaxTokens != nil {
		params.MaxTokens = *settings.MaxTokens
	}
	if settings.PresencePenalty != nil {
		params.PresencePenalty = *settings.PresencePenalty
	}
	if settings.FrequencyPenalty != nil {
		params.FrequencyPenalty = *settings.FrequencyPenalty
	}

	if overrides.Model != "" {
		params.Model = overrides.Model
	}
	if overrides.Temperature != nil {
		params.Temperature = *overrides.Temperature
	}
	if overrides.TopP != nil {
		params.TopP = *overrides.TopP
	}
	if overrides.MaxTokens != nil {
		params.MaxTokens = *overrides.MaxTokens
	}
	return params
}
