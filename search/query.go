package search

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"social-content/models"
)

const defaultPageSize = 20

var ErrInvalidCursor = errors.New("invalid cursor")

// Query is a content search. Empty filters are ignored.
type Query struct {
	Keyword       string
	GroupIDs      []string
	ContentTypes  []models.ContentType
	StartTime     *time.Time
	EndTime       *time.Time
	TagIDs        []string
	TagNames      []string
	ExcludeByIDs  []string
	Actors        []string
	ItemIDs       []string
	Topics        []string
	IsLimitSeries bool
	Size          int
	Cursor        string
}

type SearchResult struct {
	Total  int
	Hits   []Hit
	Cursor string
}

// Hit is a matched document plus the keyword highlights of its text fields.
type Hit struct {
	Document
	Highlight *Highlight `json:"highlight,omitempty"`
}

type Highlight struct {
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
	Content string `json:"content,omitempty"`
}

const highlightTag = "=="

var textFields = []string{"title", "summary", "content"}

func highlightOf(fields map[string][]string) *Highlight {
	first := func(name string) string {
		if v := fields[name]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	h := Highlight{Title: first("title"), Summary: first("summary"), Content: first("content")}
	if h == (Highlight{}) {
		return nil
	}
	return &h
}

// CommunityCountQuery counts published contents per community.
type CommunityCountQuery struct {
	RootGroupIDs []string
	StartTime    *time.Time
	EndTime      *time.Time
}

type CommunityCount struct {
	CommunityID string `json:"communityId"`
	Count       int    `json:"count"`
}

// buildSearchBody renders q as an Elasticsearch request body.
func buildSearchBody(q Query) (map[string]any, error) {
	filter := []any{}
	if len(q.Actors) > 0 {
		filter = append(filter, terms("createdBy", q.Actors))
	}
	if len(q.ContentTypes) > 0 {
		should := make([]any, 0, len(q.ContentTypes))
		for _, t := range q.ContentTypes {
			should = append(should, map[string]any{"term": map[string]any{"type": string(t)}})
		}
		filter = append(filter, map[string]any{"bool": map[string]any{"should": should}})
	}
	if len(q.GroupIDs) > 0 {
		filter = append(filter, terms("groupIds", q.GroupIDs))
	}
	if r := publishedRange(q.StartTime, q.EndTime); r != nil {
		filter = append(filter, r)
	}
	if len(q.ItemIDs) > 0 {
		filter = append(filter, terms("items.id", q.ItemIDs))
	}
	if len(q.TagIDs) > 0 {
		filter = append(filter, terms("tags.id", q.TagIDs))
	}
	if len(q.TagNames) > 0 {
		filter = append(filter, terms("tags.name", q.TagNames))
	}
	if len(q.Topics) > 0 {
		filter = append(filter, terms("categories", q.Topics))
	}
	if q.IsLimitSeries {
		filter = append(filter, map[string]any{
			"script": map[string]any{
				"script": map[string]any{
					"source": fmt.Sprintf("doc['seriesIds'].length < %d", models.LimitAttachedSeries),
				},
			},
		})
	}

	mustNot := []any{}
	if len(q.ExcludeByIDs) > 0 {
		mustNot = append(mustNot, terms("id", q.ExcludeByIDs))
	}

	should := []any{}
	minimumShouldMatch := 0
	if q.Keyword != "" {
		should = append(should, map[string]any{
			"multi_match": map[string]any{
				"query":  q.Keyword,
				"fields": textFields,
			},
		})
		minimumShouldMatch = 1
	}

	// id closes ties so search_after pages never skip or repeat a hit.
	sort := []any{map[string]any{"publishedAt": "desc"}, map[string]any{"id": "asc"}}
	if q.Keyword != "" {
		sort = append([]any{map[string]any{"_score": "desc"}}, sort...)
	}

	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter":               filter,
				"must_not":             mustNot,
				"should":               should,
				"minimum_should_match": minimumShouldMatch,
			},
		},
		"sort": sort,
		"size": size,
	}
	if q.Keyword != "" {
		body["highlight"] = highlightClause()
	}
	if q.Cursor != "" {
		after, err := DecodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		body["search_after"] = after
	}
	return body, nil
}

// highlightClause asks for whole-field highlights, marked with ==.
func highlightClause() map[string]any {
	fields := map[string]any{}
	for _, f := range textFields {
		fields[f] = map[string]any{"number_of_fragments": 0}
	}
	return map[string]any{
		"pre_tags":  []string{highlightTag},
		"post_tags": []string{highlightTag},
		"fields":    fields,
	}
}

func buildCommunityCountBody(q CommunityCountQuery) map[string]any {
	filter := []any{terms("communityIds", q.RootGroupIDs)}
	if r := publishedRange(q.StartTime, q.EndTime); r != nil {
		filter = append(filter, r)
	}
	return map[string]any{
		"size":  0,
		"query": map[string]any{"bool": map[string]any{"filter": filter}},
		"aggs": map[string]any{
			"communities": map[string]any{
				"terms": map[string]any{
					"field": "communityIds",
					"size":  max(len(q.RootGroupIDs), 1),
				},
			},
		},
	}
}

func terms(field string, values []string) map[string]any {
	return map[string]any{"terms": map[string]any{field: values}}
}

func publishedRange(start, end *time.Time) map[string]any {
	if start == nil && end == nil {
		return nil
	}
	r := map[string]any{}
	if start != nil {
		r["gte"] = start.UTC().Format(time.RFC3339)
	}
	if end != nil {
		r["lte"] = end.UTC().Format(time.RFC3339)
	}
	return map[string]any{"range": map[string]any{"publishedAt": r}}
}

// EncodeCursor makes an opaque cursor from the sort values of the last hit.
func EncodeCursor(sort []any) string {
	if len(sort) == 0 {
		return ""
	}
	b, err := json.Marshal(sort)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

func DecodeCursor(cursor string) ([]any, error) {
	b, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var sort []any
	if err := json.Unmarshal(b, &sort); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return sort, nil
}
