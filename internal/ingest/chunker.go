package ingest

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Chunk sizes are measured in runes.
const (
	minChunkRunes = 50
	maxChunkRunes = 1200
)

// Chunk is one retrievable section of a markdown document.
type Chunk struct {
	// Index is the position within the document, starting at 0.
	Index int
	// HeadingPath is the enclosing heading hierarchy, e.g. "# Refunds > ## Exceptions".
	// It is empty for text before the first heading.
	HeadingPath string
	// Text is the markdown source of the section body.
	Text string
}

// Chunker splits markdown documents into heading sections.
type Chunker struct {
	md goldmark.Markdown
}

// NewChunker creates a Chunker that understands GitHub Flavored Markdown.
func NewChunker() *Chunker {
	return &Chunker{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

type heading struct {
	level int
	text  string
}

// Chunk returns the document title and its chunks. Each heading starts a section;
// sections below minChunkRunes are merged forward and sections above
// maxChunkRunes are split at paragraph, line, sentence or word boundaries.
func (c *Chunker) Chunk(source []byte, filename string) (string, []Chunk) {
	if len(strings.TrimSpace(string(source))) == 0 {
		return titleFromFilename(filename), []Chunk{}
	}

	doc := c.md.Parser().Parse(text.NewReader(source))
	title := documentTitle(doc, source, filename)

	var (
		sections []Chunk
		stack    []heading
		body     []string
		path     string
	)
	flush := func() {
		if joined := strings.TrimSpace(strings.Join(body, "\n\n")); joined != "" {
			sections = append(sections, Chunk{HeadingPath: path, Text: joined})
		}
		body = body[:0]
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()
			for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, heading{level: h.Level, text: inlineText(h, source)})
			path = headingPath(stack)
			continue
		}
		if src := blockSource(n, source); src != "" {
			body = append(body, src)
		}
	}
	flush()

	chunks := applySizeLimits(sections)
	for i := range chunks {
		chunks[i].Index = i
	}
	return title, chunks
}

// documentTitle picks the first level-1 heading, then the first heading of any
// level, then the file name.
func documentTitle(doc ast.Node, source []byte, filename string) string {
	var first string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		t := inlineText(h, source)
		if h.Level == 1 && t != "" {
			return t
		}
		if first == "" {
			first = t
		}
	}
	if first != "" {
		return first
	}
	return titleFromFilename(filename)
}

// titleFromFilename turns "refund-policy.md" into "Refund Policy".
func titleFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func headingPath(stack []heading) string {
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = strings.Repeat("#", h.level) + " " + h.text
	}
	return strings.Join(parts, " > ")
}

// inlineText concatenates the text leaves under n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// blockSource returns the markdown source spanned by a top-level block, widened to
// whole lines so list markers and table pipes are kept.
func blockSource(n ast.Node, source []byte) string {
	if fenced, ok := n.(*ast.FencedCodeBlock); ok {
		return fencedSource(fenced, source)
	}

	start, stop := -1, -1
	widen := func(s, e int) {
		if start < 0 || s < start {
			start = s
		}
		if e > stop {
			stop = e
		}
	}
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			widen(t.Segment.Start, t.Segment.Stop)
			return ast.WalkContinue, nil
		}
		if node.Type() == ast.TypeBlock {
			if lines := node.Lines(); lines != nil && lines.Len() > 0 {
				widen(lines.At(0).Start, lines.At(lines.Len()-1).Stop)
			}
		}
		return ast.WalkContinue, nil
	})
	if start < 0 {
		return ""
	}

	for start > 0 && source[start-1] != '\n' {
		start--
	}
	for stop < len(source) && stop > 0 && source[stop-1] != '\n' {
		stop++
	}
	return strings.TrimSpace(string(source[start:stop]))
}

func fencedSource(n *ast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	b.WriteString("```")
	b.Write(n.Language(source))
	b.WriteByte('\n')
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}

// applySizeLimits merges undersized sections into their successor and splits
// oversized ones.
func applySizeLimits(sections []Chunk) []Chunk {
	result := make([]Chunk, 0, len(sections))
	for i := 0; i < len(sections); i++ {
		current := sections[i]
		for utf8.RuneCountInString(current.Text) < minChunkRunes && i+1 < len(sections) {
			next := sections[i+1]
			merged := current.Text + "\n\n" + next.Text
			if utf8.RuneCountInString(merged) > maxChunkRunes {
				break
			}
			current.Text = merged
			i++
		}
		result = append(result, splitText(current)...)
	}
	return result
}

// boundaries are tried in order when splitting oversized text.
var boundaries = []string{"\n\n", "\n", ". ", " "}

// splitText cuts c into pieces of at most maxChunkRunes runes.
func splitText(c Chunk) []Chunk {
	runes := []rune(c.Text)
	if len(runes) <= maxChunkRunes {
		return []Chunk{c}
	}

	var pieces []Chunk
	for len(runes) > 0 {
		cut := len(runes)
		if cut > maxChunkRunes {
			cut = splitPoint(runes[:maxChunkRunes])
		}
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			pieces = append(pieces, Chunk{HeadingPath: c.HeadingPath, Text: piece})
		}
		runes = runes[cut:]
	}
	return pieces
}

// splitPoint returns a rune offset just past the last boundary in window, or
// len(window) when none is found in its second half.
func splitPoint(window []rune) int {
	s := string(window)
	for _, sep := range boundaries {
		idx := strings.LastIndex(s, sep)
		if idx <= 0 {
			continue
		}
		point := utf8.RuneCountInString(s[:idx]) + utf8.RuneCountInString(sep)
		if point > len(window)/2 {
			return point
		}
	}
	return len(window)
}
