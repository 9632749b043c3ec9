package rag

import (
	"fmt"
	"strings"
)

// MaxSources is the number of leading candidates considered for the prompt context.
const MaxSources = 5

// AssembleContext tags the first MaxSources candidates as numbered sources.
// Candidates with blank content are skipped without leaving a gap in the ids.
func AssembleContext(candidates []Candidate) (string, []Source) {
	if len(candidates) > MaxSources {
		candidates = candidates[:MaxSources]
	}

	blocks := make([]string, 0, len(candidates))
	sources := make([]Source, 0, len(candidates))
	for _, c := range candidates {
		content := strings.TrimSpace(c.Content)
		if content == "" {
			continue
		}
		id := len(sources) + 1
		blocks = append(blocks, fmt.Sprintf(`<source id="%d">%s</source>`, id, content))
		sources = append(sources, Source{ID: id, Title: c.Title, Content: content})
	}
	return strings.Join(blocks, "\n\n"), sources
}
