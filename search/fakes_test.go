package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"social-content/logger"
	"social-content/models"
	"social-content/search"
)

const (
	namespace = "dev"
	postID    = "7d3f9a55-4f0c-4c5e-9a3b-0d5c2c0b8a11"
	post2ID   = "5c4b3a29-1807-4f6e-8d5c-4b3a29180766"
	post3ID   = "2a9f8e7d-6c5b-4a39-8281-7f6e5d4c3b77"
	seriesID  = "8f7e6d5c-4b3a-4291-8f0e-9d8c7b6a5f99"
	ownerID   = "0c6b1d8e-2b52-4f4a-8d8e-5b7d2f1e9c33"
	groupA    = "4e2a1c9b-6d3f-4b7a-9e1c-2f8d5a6b7c44"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// detectLang is the fake ingest pipeline's language detector.
func detectLang(content string) string {
	switch {
	case strings.Contains(content, "bonjour"):
		return "fr"
	case strings.Contains(content, "hallo"):
		return "de"
	default:
		return "en"
	}
}

// fakeEngine keeps one map per concrete index. Writes through the write
// alias with the pipeline land in <ns>_posts_<lang>.
type fakeEngine struct {
	mu      sync.Mutex
	ix      search.Indices
	indices map[string]map[string]map[string]any

	failBulkIDs  map[string]bool
	indexErr     error
	updateErrs   int
	updateCalls  int
	bulkCalls    int
	deleteCalls  []string
	searchBodies []map[string]any
	aggregations map[string]json.RawMessage
	highlights   map[string]map[string][]string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		ix:          search.NewIndices(namespace),
		indices:     map[string]map[string]map[string]any{},
		failBulkIDs: map[string]bool{},
	}
}

func toMap(v any) map[string]any {
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

func (e *fakeEngine) route(index string, doc map[string]any, pipeline string) string {
	if index == e.ix.WriteAlias() && pipeline == e.ix.Pipeline() {
		content, _ := doc["content"].(string)
		lang := detectLang(content)
		doc["lang"] = lang
		return e.ix.ForLang(lang)
	}
	return index
}

func (e *fakeEngine) put(index, id string, doc map[string]any) string {
	if e.indices[index] == nil {
		e.indices[index] = map[string]map[string]any{}
	}
	_, exists := e.indices[index][id]
	e.indices[index][id] = doc
	if exists {
		return "updated"
	}
	return "created"
}

func (e *fakeEngine) Bulk(_ context.Context, req search.BulkRequest) (search.BulkResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bulkCalls++

	var res search.BulkResponse
	for _, item := range req.Items {
		if e.failBulkIDs[item.ID] {
			res.Errors = true
			res.Items = append(res.Items, search.BulkItemResult{
				Action: item.Action,
				ID:     item.ID,
				Status: 400,
				Error:  `{"type":"mapper_parsing_exception"}`,
			})
			continue
		}
		switch item.Action {
		case search.BulkIndex:
			doc := toMap(item.Doc)
			index := e.route(item.Index, doc, req.Pipeline)
			result := e.put(index, item.ID, doc)
			res.Items = append(res.Items, search.BulkItemResult{Action: item.Action, ID: item.ID, Index: index, Result: result, Status: 201})
		case search.BulkUpdate:
			existing, ok := e.indices[item.Index][item.ID]
			if !ok {
				res.Errors = true
				res.Items = append(res.Items, search.BulkItemResult{Action: item.Action, ID: item.ID, Status: 404, Error: "document_missing_exception"})
				continue
			}
			for k, v := range toMap(item.Doc) {
				existing[k] = v
			}
			res.Items = append(res.Items, search.BulkItemResult{Action: item.Action, ID: item.ID, Index: item.Index, Result: "updated", Status: 200})
		}
	}
	return res, nil
}

func (e *fakeEngine) Index(_ context.Context, index, id string, doc any, pipeline string) (search.IndexResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.indexErr != nil {
		return search.IndexResult{}, e.indexErr
	}
	m := toMap(doc)
	concrete := e.route(index, m, pipeline)
	return search.IndexResult{Index: concrete, Result: e.put(concrete, id, m)}, nil
}

func (e *fakeEngine) Update(_ context.Context, index, id string, fields map[string]any, _ bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updateCalls++
	if e.updateErrs > 0 {
		e.updateErrs--
		return errors.New("es unavailable")
	}
	existing, ok := e.indices[index][id]
	if !ok {
		return errors.New("document_missing_exception")
	}
	for k, v := range toMap(fields) {
		existing[k] = v
	}
	return nil
}

func (e *fakeEngine) Delete(_ context.Context, index, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleteCalls = append(e.deleteCalls, index+"/"+id)
	delete(e.indices[index], id)
	return nil
}

// DeleteByQuery understands the two query shapes the service sends:
// terms on id, and a bool that keeps one index.
func (e *fakeEngine) DeleteByQuery(_ context.Context, index string, query map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index != e.ix.ReadAlias() {
		return errors.New("delete by query outside the read alias")
	}
	q := toMap(query)

	if t, ok := q["terms"].(map[string]any); ok {
		ids, _ := t["id"].([]any)
		for _, id := range ids {
			for _, docs := range e.indices {
				delete(docs, id.(string))
			}
		}
		return nil
	}

	b := q["bool"].(map[string]any)
	id := b["filter"].([]any)[0].(map[string]any)["term"].(map[string]any)["id"].(string)
	keep := b["must_not"].([]any)[0].(map[string]any)["term"].(map[string]any)["_index"].(string)
	for name, docs := range e.indices {
		if name != keep {
			delete(docs, id)
		}
	}
	return nil
}

// Search returns every document, ordered by id.
func (e *fakeEngine) Search(_ context.Context, index string, body map[string]any) (search.SearchResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index != e.ix.ReadAlias() {
		return search.SearchResponse{}, errors.New("search outside the read alias")
	}
	e.searchBodies = append(e.searchBodies, body)

	var hits []search.SearchHit
	for name, docs := range e.indices {
		for id, doc := range docs {
			src, _ := json.Marshal(doc)
			hits = append(hits, search.SearchHit{ID: id, Index: name, Source: src, Sort: []any{id}, Highlight: e.highlights[id]})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID < hits[j].ID })
	return search.SearchResponse{Total: len(hits), Hits: hits, Aggregations: e.aggregations}, nil
}

// copiesOf lists the indices holding id.
func (e *fakeEngine) copiesOf(id string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for name, docs := range e.indices {
		if _, ok := docs[id]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

type fakeStore struct {
	mu       sync.Mutex
	contents map[string]models.ContentState
	langs    map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{contents: map[string]models.ContentState{}, langs: map[string]string{}}
}

func (s *fakeStore) FindByIDs(_ context.Context, ids []string) ([]*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Content
	for _, id := range ids {
		state, ok := s.contents[id]
		if !ok {
			continue
		}
		state.Lang = s.langs[id]
		c, err := models.LoadContent(state)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) UpdateFields(_ context.Context, ids []string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if lang, ok := fields["lang"].(string); ok {
			s.langs[id] = lang
		}
	}
	return nil
}

func (s *fakeStore) lang(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.langs[id]
}

type fakeDeadLetters struct {
	mu      sync.Mutex
	records []models.FailedProcessLog
}

func (d *fakeDeadLetters) Append(_ context.Context, rec models.FailedProcessLog) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = append(d.records, rec)
	return nil
}

type harness struct {
	engine *fakeEngine
	store  *fakeStore
	dlq    *fakeDeadLetters
	svc    *search.Service
}

func newHarness() *harness {
	h := &harness{
		engine: newFakeEngine(),
		store:  newFakeStore(),
		dlq:    &fakeDeadLetters{},
	}
	lg := logger.Nop()
	h.svc = search.NewService(h.engine, h.store, h.dlq, search.ServiceConfig{
		Indices:    search.NewIndices(namespace),
		MaxRetries: 3,
	}, lg, logger.NewReporter(lg))
	return h
}

func postDoc(id, content string) search.Document {
	return search.Document{
		ID:           id,
		Type:         models.ContentTypePost,
		CreatedBy:    ownerID,
		Content:      content,
		GroupIDs:     []string{groupA},
		CommunityIDs: []string{groupA},
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
		PublishedAt:  &fixedNow,
	}
}
