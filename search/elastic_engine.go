package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"social-content/config"
)

// NewElasticClient 는 설정값으로 Elasticsearch 클라이언트를 만든다.
func NewElasticClient(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
}

// ElasticEngine implements Engine on the Elasticsearch REST API.
type ElasticEngine struct {
	es *elasticsearch.Client
}

func NewElasticEngine(es *elasticsearch.Client) *ElasticEngine {
	return &ElasticEngine{es: es}
}

type bulkItemResponse struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Result string          `json:"result"`
	Status int             `json:"status"`
	Error  json.RawMessage `json:"error,omitempty"`
}

func (e *ElasticEngine) Bulk(ctx context.Context, req BulkRequest) (BulkResponse, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, item := range req.Items {
		meta := map[string]any{
			string(item.Action): map[string]any{"_index": item.Index, "_id": item.ID},
		}
		if err := enc.Encode(meta); err != nil {
			return BulkResponse{}, err
		}
		body := item.Doc
		if item.Action == BulkUpdate {
			body = map[string]any{"doc": item.Doc}
		}
		if err := enc.Encode(body); err != nil {
			return BulkResponse{}, fmt.Errorf("encode %s: %w", item.ID, err)
		}
	}

	r := esapi.BulkRequest{
		Body:     &buf,
		Pipeline: req.Pipeline,
		Refresh:  refreshParam(req.Refresh),
	}
	res, err := r.Do(ctx, e.es)
	if err != nil {
		return BulkResponse{}, fmt.Errorf("%w: bulk: %v", ErrEngine, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return BulkResponse{}, responseError("bulk", res)
	}

	var raw struct {
		Errors bool                              `json:"errors"`
		Items  []map[BulkAction]bulkItemResponse `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return BulkResponse{}, fmt.Errorf("decode bulk response: %w", err)
	}

	out := BulkResponse{Errors: raw.Errors, Items: make([]BulkItemResult, 0, len(raw.Items))}
	for _, entry := range raw.Items {
		for action, it := range entry {
			result := BulkItemResult{
				Action: action,
				ID:     it.ID,
				Index:  it.Index,
				Result: it.Result,
				Status: it.Status,
			}
			if len(it.Error) > 0 && string(it.Error) != "null" {
				result.Error = string(it.Error)
			}
			out.Items = append(out.Items, result)
		}
	}
	return out, nil
}

func (e *ElasticEngine) Index(ctx context.Context, index, id string, doc any, pipeline string) (IndexResult, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return IndexResult{}, err
	}
	r := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Pipeline:   pipeline,
	}
	res, err := r.Do(ctx, e.es)
	if err != nil {
		return IndexResult{}, fmt.Errorf("%w: index: %v", ErrEngine, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return IndexResult{}, responseError("index", res)
	}

	var raw struct {
		Index  string `json:"_index"`
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return IndexResult{}, fmt.Errorf("decode index response: %w", err)
	}
	return IndexResult{Index: raw.Index, Result: raw.Result}, nil
}

func (e *ElasticEngine) Update(ctx context.Context, index, id string, fields map[string]any, refresh bool) error {
	body, err := json.Marshal(map[string]any{"doc": fields})
	if err != nil {
		return err
	}
	r := esapi.UpdateRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    refreshParam(refresh),
	}
	res, err := r.Do(ctx, e.es)
	if err != nil {
		return fmt.Errorf("%w: update: %v", ErrEngine, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("update", res)
	}
	return nil
}

func (e *ElasticEngine) Delete(ctx context.Context, index, id string) error {
	r := esapi.DeleteRequest{Index: index, DocumentID: id}
	res, err := r.Do(ctx, e.es)
	if err != nil {
		return fmt.Errorf("%w: delete: %v", ErrEngine, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete", res)
	}
	return nil
}

func (e *ElasticEngine) DeleteByQuery(ctx context.Context, index string, query map[string]any) error {
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return err
	}
	refresh := true
	r := esapi.DeleteByQueryRequest{
		Index:     []string{index},
		Body:      bytes.NewReader(body),
		Conflicts: "proceed",
		Refresh:   &refresh,
	}
	res, err := r.Do(ctx, e.es)
	if err != nil {
		return fmt.Errorf("%w: delete by query: %v", ErrEngine, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("delete by query", res)
	}
	return nil
}

func (e *ElasticEngine) Search(ctx context.Context, index string, body map[string]any) (SearchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return SearchResponse{}, err
	}
	r := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(payload),
	}
	res, err := r.Do(ctx, e.es)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("%w: search: %v", ErrEngine, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return SearchResponse{}, responseError("search", res)
	}

	var raw struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID        string              `json:"_id"`
				Index     string              `json:"_index"`
				Source    json.RawMessage     `json:"_source"`
				Sort      []any               `json:"sort"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations map[string]json.RawMessage `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return SearchResponse{}, fmt.Errorf("decode search response: %w", err)
	}

	out := SearchResponse{Total: raw.Hits.Total.Value, Aggregations: raw.Aggregations}
	for _, h := range raw.Hits.Hits {
		out.Hits = append(out.Hits, SearchHit{
			ID:        h.ID,
			Index:     h.Index,
			Source:    h.Source,
			Sort:      h.Sort,
			Highlight: h.Highlight,
		})
	}
	return out, nil
}

func refreshParam(refresh bool) string {
	if refresh {
		return "true"
	}
	return ""
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%w: %s: status %d: %s", ErrEngine, op, res.StatusCode, bytes.TrimSpace(body))
}
