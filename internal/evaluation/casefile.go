package evaluation

import (
	"fmt"
	"strings"
	"time"

	"ragbench/internal/llm"
)

// CaseFile is one exported interaction, rendered as markdown for rubric grading.
type CaseFile struct {
	Timestamp      time.Time            `json:"timestamp"`
	Model          string               `json:"model"`
	Params         llm.GenerationParams `json:"parameters"`
	Query          string               `json:"query"`
	SystemPrompt   string               `json:"system_prompt"`
	AppendedPrompt string               `json:"appended_prompt"`
	Response       string               `json:"response"`
	Sources        []SourceItem         `json:"sources"`
}

// BuildCaseFile renders cf with every section heading present, even when empty.
func BuildCaseFile(cf CaseFile) string {
	ts := cf.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	params := fmt.Sprintf("temperature=%g, top_p=%g, max_tokens=%d, presence_penalty=%g, frequency_penalty=%g",
		cf.Params.Temperature, cf.Params.TopP, cf.Params.MaxTokens, cf.Params.PresencePenalty, cf.Params.FrequencyPenalty)

	var b strings.Builder
	b.WriteString("## Session Information\n")
	fmt.Fprintf(&b, "- Timestamp: %s\n", ts.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Model: %s\n", cf.Model)
	fmt.Fprintf(&b, "- Parameters: %s\n\n", params)

	section(&b, "Query", cf.Query)
	section(&b, "System Prompt", cf.SystemPrompt)
	section(&b, "Appended Prompt", cf.AppendedPrompt)
	section(&b, "Model Parameters", params)
	section(&b, "Response", cf.Response)

	b.WriteString("## Sources\n")
	for i, src := range cf.Sources {
		title := src.Title
		if title == "" {
			title = fmt.Sprintf("Source %d", i+1)
		}
		fmt.Fprintf(&b, "\n### Source %d: %s\n%s\n", i+1, title, src.Content)
	}
	return b.String()
}

func section(b *strings.Builder, heading, body string) {
	fmt.Fprintf(b, "## %s\n%s\n\n", heading, strings.TrimSpace(body))
}
