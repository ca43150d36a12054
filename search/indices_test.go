package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"social-content/search"
)

func TestIndicesNames(t *testing.T) {
	ix := search.NewIndices("prod")

	assert.Equal(t, "prod_posts", ix.WriteAlias())
	assert.Equal(t, "prod_posts_all", ix.ReadAlias())
	assert.Equal(t, "prod_posts_lang_pipeline", ix.Pipeline())
	assert.Equal(t, "prod_posts_ko", ix.ForLang("ko"))
	assert.Equal(t, "prod_posts", ix.ForLang(""))
}

func TestLanguageOf(t *testing.T) {
	ix := search.NewIndices("dev")

	tests := []struct {
		index string
		want  string
	}{
		{"dev_posts_en", "en"},
		{"dev_posts_vi_20240101", "vi"},
		{"dev_posts_zh", "zh"},
		{"dev_posts", ""},
		{"dev_posts_", ""},
		{"dev_posts_all", ""},
		{"dev_posts_20240101", ""},
		{"prod_posts_en", ""},
		{"dev_comments_en", ""},
	}
	for _, tt := range tests {
		t.Run(tt.index, func(t *testing.T) {
			assert.Equal(t, tt.want, ix.LanguageOf(tt.index))
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"   ", ""},
		{"plain text", "plain text"},
		{"**bold** and *italic*", "bold and italic"},
		{"++underline++", "underline"},
		{"__strong__ words", "strong words"},
		{"snake_case_name stays", "snake_case_name stays"},
		{"~~gone~~ and ~sub~", "gone and sub"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, search.StripMarkdown(tt.in))
		})
	}
}

func TestFlattenEditorContent(t *testing.T) {
	editor := `[
		{"type":"h1","children":[{"text":"Title"}]},
		{"type":"p","children":[{"text":"first "},{"type":"a","children":[{"text":"link"}]}]}
	]`
	assert.Equal(t, "Title\nfirst link", search.FlattenEditorContent(editor))

	assert.Empty(t, search.FlattenEditorContent(""))
	assert.Contains(t, search.FlattenEditorContent("<p>from html</p>"), "from html")
}
