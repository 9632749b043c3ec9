package rag

import (
	"regexp"
	"strconv"
	"strings"
)

// citationMarker matches a bracket-delimited integer such as [3].
var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

// FilterAndRenumber keeps the sources the answer cites and renumbers them 1..k in
// original id order, rewriting every marker in the answer in a single pass.
// Markers that name no source are left untouched.
func FilterAndRenumber(answer string, sources []Source) (string, []CitedSource) {
	present := make(map[string]struct{})
	for _, m := range citationMarker.FindAllStringSubmatch(answer, -1) {
		present[m[1]] = struct{}{}
	}

	renumber := make(map[string]string, len(present))
	cited := make([]CitedSource, 0, len(present))
	for _, src := range sources {
		oldID := strconv.Itoa(src.ID)
		if _, ok := present[oldID]; !ok {
			continue
		}
		if _, dup := renumber[oldID]; dup {
			continue
		}
		newID := strconv.Itoa(len(cited) + 1)
		renumber[oldID] = newID
		cited = append(cited, CitedSource{
			ID:      newID,
			Title:   src.Title,
			Content: src.Content,
		})
	}

	if len(renumber) == 0 {
		return answer, cited
	}

	rewritten := citationMarker.ReplaceAllStringFunc(answer, func(marker string) string {
		id := strings.TrimSuffix(strings.TrimPrefix(marker, "["), "]")
		if newID, ok := renumber[id]; ok {
			return "[" + newID + "]"
		}
		return marker
	})
	return rewritten, cited
}
