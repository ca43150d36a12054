package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-content/models"
)

func boolClause(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	query, ok := body["query"].(map[string]any)
	require.True(t, ok)
	b, ok := query["bool"].(map[string]any)
	require.True(t, ok)
	return b
}

func TestBuildSearchBodyDefaults(t *testing.T) {
	body, err := buildSearchBody(Query{})
	require.NoError(t, err)

	assert.Equal(t, defaultPageSize, body["size"])
	assert.Equal(t, []any{
		map[string]any{"publishedAt": "desc"},
		map[string]any{"id": "asc"},
	}, body["sort"])
	assert.NotContains(t, body, "search_after")
	assert.NotContains(t, body, "highlight")

	b := boolClause(t, body)
	assert.Empty(t, b["filter"])
	assert.Empty(t, b["should"])
	assert.Equal(t, 0, b["minimum_should_match"])
}

func TestBuildSearchBodyFilters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	body, err := buildSearchBody(Query{
		Keyword:      "golang",
		Actors:       []string{"u1"},
		GroupIDs:     []string{"g1", "g2"},
		ContentTypes: []models.ContentType{models.ContentTypePost},
		StartTime:    &start,
		TagNames:     []string{"go"},
		ExcludeByIDs: []string{"x"},
		Size:         3,
	})
	require.NoError(t, err)

	b := boolClause(t, body)
	filter := b["filter"].([]any)
	assert.Contains(t, filter, terms("createdBy", []string{"u1"}))
	assert.Contains(t, filter, terms("groupIds", []string{"g1", "g2"}))
	assert.Contains(t, filter, terms("tags.name", []string{"go"}))
	assert.Contains(t, filter, map[string]any{
		"range": map[string]any{"publishedAt": map[string]any{"gte": "2024-01-01T00:00:00Z"}},
	})
	assert.Equal(t, []any{terms("id", []string{"x"})}, b["must_not"])
	assert.Equal(t, 1, b["minimum_should_match"])
	assert.Len(t, b["should"], 1)

	assert.Equal(t, 3, body["size"])
	assert.Equal(t, []any{
		map[string]any{"_score": "desc"},
		map[string]any{"publishedAt": "desc"},
		map[string]any{"id": "asc"},
	}, body["sort"])

	hl := body["highlight"].(map[string]any)
	assert.Equal(t, []string{"=="}, hl["pre_tags"])
	assert.Len(t, hl["fields"], 3)
	assert.Contains(t, hl["fields"], "content")
}

func TestHighlightOf(t *testing.T) {
	assert.Nil(t, highlightOf(nil))
	assert.Nil(t, highlightOf(map[string][]string{"title": {}}))
	assert.Equal(t, &Highlight{Title: "==Go== tips", Content: "about ==Go=="}, highlightOf(map[string][]string{
		"title":   {"==Go== tips"},
		"content": {"about ==Go==", "second"},
	}))
}

func TestCursorRoundTrip(t *testing.T) {
	assert.Empty(t, EncodeCursor(nil))

	cursor := EncodeCursor([]any{float64(1714557600000), "abc"})
	body, err := buildSearchBody(Query{Cursor: cursor})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1714557600000), "abc"}, body["search_after"])

	_, err = DecodeCursor("bm90IGpzb24")
	assert.Error(t, err)
}

func TestBuildCommunityCountBody(t *testing.T) {
	body := buildCommunityCountBody(CommunityCountQuery{RootGroupIDs: []string{"a", "b"}})

	assert.Equal(t, 0, body["size"])
	aggs := body["aggs"].(map[string]any)["communities"].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, "communityIds", aggs["field"])
	assert.Equal(t, 2, aggs["size"])
}
