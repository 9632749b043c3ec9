package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Required field names, in reporting order.
const (
	FieldUserQuery     = "user_query"
	FieldSystemPrompt  = "system_prompt"
	FieldModelResponse = "model_response"
	FieldSources       = "sources"
)

// Input is everything the diagnostician needs to judge one interaction.
type Input struct {
	UserQuery     string  `json:"user_query"`
	SystemPrompt  string  `json:"system_prompt"`
	ModelResponse string  `json:"model_response"`
	Sources       Sources `json:"sources"`
}

// SourceItem is one titled source in list form.
type SourceItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Sources is either the raw context text or a list of titled sources.
// In JSON it is a string or an array of objects (or strings).
type Sources struct {
	Text  string
	Items []SourceItem
}

// TextSources wraps raw context text.
func TextSources(text string) Sources {
	return Sources{Text: text}
}

// ListSources wraps a list of titled sources.
func ListSources(items ...SourceItem) Sources {
	return Sources{Items: items}
}

// IsBlank reports whether there is nothing to evaluate against.
func (s Sources) IsBlank() bool {
	if len(s.Items) > 0 {
		return false
	}
	return strings.TrimSpace(s.Text) == ""
}

// Render formats the sources as markdown for the diagnostician prompt.
// List items render as "**title**: content", one per line.
func (s Sources) Render() string {
	if len(s.Items) == 0 {
		return strings.TrimSpace(s.Text)
	}
	lines := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Title == "" {
			lines = append(lines, item.Content)
			continue
		}
		lines = append(lines, fmt.Sprintf("**%s**: %s", item.Title, item.Content))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// MarshalJSON encodes list sources as an array and text sources as a string.
func (s Sources) MarshalJSON() ([]byte, error) {
	if len(s.Items) > 0 {
		return json.Marshal(s.Items)
	}
	return json.Marshal(s.Text)
}

// UnmarshalJSON accepts null, a string, or an array of objects or strings.
func (s *Sources) UnmarshalJSON(data []byte) error {
	*s = Sources{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &s.Text)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]SourceItem, 0, len(raw))
		for i, r := range raw {
			r = bytes.TrimSpace(r)
			if len(r) > 0 && r[0] == '"' {
				var text string
				if err := json.Unmarshal(r, &text); err != nil {
					return fmt.Errorf("sources[%d]: %w", i, err)
				}
				items = append(items, SourceItem{Content: text})
				continue
			}
			var item SourceItem
			if err := json.Unmarshal(r, &item); err != nil {
				return fmt.Errorf("sources[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		s.Items = items
		return nil
	default:
		return fmt.Errorf("sources must be a string or a list")
	}
}

// MissingFieldsError lists required inputs that were blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Validate checks that all four fields are non-blank after trimming.
func (in Input) Validate() error {
	var missing []string
	if strings.TrimSpace(in.UserQuery) == "" {
		missing = append(missing, FieldUserQuery)
	}
	if strings.TrimSpace(in.SystemPrompt) == "" {
		missing = append(missing, FieldSystemPrompt)
	}
	if strings.TrimSpace(in.ModelResponse) == "" {
		missing = append(missing, FieldModelResponse)
	}
	if in.Sources.IsBlank() {
		missing = append(missing, FieldSources)
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
