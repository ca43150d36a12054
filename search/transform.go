package search

import (
	"encoding/json"
	"regexp"
	"strings"

	"social-content/models"
	"social-content/parser"
)

var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*(\S(?:.*?\S)?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(\S(?:.*?\S)?)\*`), "$1"},
	{regexp.MustCompile(`\+\+(\S(?:.*?\S)?)\+\+`), "$1"},
	{regexp.MustCompile(`(^|\W)__(\S(?:.*?\S)?)__($|\W)`), "$1$2$3"},
	{regexp.MustCompile(`(^|\W)_(\S(?:.*?\S)?)_($|\W)`), "$1$2$3"},
	{regexp.MustCompile(`~~(.*?)~~`), "$1"},
	{regexp.MustCompile(`~(.*?)~`), "$1"},
}

// prepare rewrites the content field for relevance: markdown emphasis is
// stripped from posts and article editor JSON is flattened to text.
func prepare(doc Document) Document {
	switch doc.Type {
	case models.ContentTypePost:
		doc.Content = StripMarkdown(doc.Content)
	case models.ContentTypeArticle:
		doc.Content = FlattenEditorContent(doc.Content)
	}
	return doc
}

// StripMarkdown removes emphasis markers. Whitespace-only input becomes "".
func StripMarkdown(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	for _, r := range markdownRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// FlattenEditorContent turns rich-editor JSON (a list of nodes with nested
// children and text leaves) into one line per top-level node. Content that is
// not editor JSON is treated as HTML.
func FlattenEditorContent(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var nodes []any
	if err := json.Unmarshal([]byte(s), &nodes); err != nil {
		return parser.TextFromHTML(s)
	}
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		var b strings.Builder
		nodeText(n, &b)
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func nodeText(n any, b *strings.Builder) {
	m, ok := n.(map[string]any)
	if !ok {
		return
	}
	if text, ok := m["text"].(string); ok {
		b.WriteString(text)
		return
	}
	children, _ := m["children"].([]any)
	for _, c := range children {
		nodeText(c, b)
	}
}
