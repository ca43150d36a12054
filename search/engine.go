package search

import (
	"context"
	"encoding/json"
	"errors"

	"social-content/models"
)

// ErrEngine wraps failures reported by the search engine.
var ErrEngine = errors.New("search engine error")

type BulkAction string

const (
	BulkIndex  BulkAction = "index"
	BulkUpdate BulkAction = "update"
)

// BulkItem is one action of a bulk request. For BulkUpdate, Doc is the
// partial document.
type BulkItem struct {
	Action BulkAction
	Index  string
	ID     string
	Doc    any
}

type BulkRequest struct {
	Items    []BulkItem
	Pipeline string
	Refresh  bool
}

// BulkItemResult carries the concrete index the engine wrote to and its
// verdict ("created", "updated", ...). Error is set for failed items.
type BulkItemResult struct {
	Action BulkAction
	ID     string
	Index  string
	Result string
	Status int
	Error  string
}

type BulkResponse struct {
	Errors bool
	Items  []BulkItemResult
}

type IndexResult struct {
	Index  string
	Result string
}

type SearchHit struct {
	ID        string
	Index     string
	Source    json.RawMessage
	Sort      []any
	Highlight map[string][]string
}

type SearchResponse struct {
	Total        int
	Hits         []SearchHit
	Aggregations map[string]json.RawMessage
}

// Engine is the document search engine. Delete of a missing document is not
// an error.
type Engine interface {
	Bulk(ctx context.Context, req BulkRequest) (BulkResponse, error)
	Index(ctx context.Context, index, id string, doc any, pipeline string) (IndexResult, error)
	Update(ctx context.Context, index, id string, fields map[string]any, refresh bool) error
	Delete(ctx context.Context, index, id string) error
	DeleteByQuery(ctx context.Context, index string, query map[string]any) error
	Search(ctx context.Context, index string, body map[string]any) (SearchResponse, error)
}

// ContentStore is the primary store as seen by the synchronizer.
type ContentStore interface {
	FindByIDs(ctx context.Context, ids []string) ([]*models.Content, error)
	UpdateFields(ctx context.Context, ids []string, fields map[string]any) error
}

// DeadLetterStore keeps failed writes for manual replay. Append only.
type DeadLetterStore interface {
	Append(ctx context.Context, rec models.FailedProcessLog) error
}
