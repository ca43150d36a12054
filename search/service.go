package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"social-content/logger"
	"social-content/models"
)

const (
	OperationIndex            = "index"
	OperationUpdate           = "update"
	OperationUpdateAttributes = "update_attributes"
)

type ServiceConfig struct {
	Indices      Indices
	MaxRetries   int
	RetryBackoff time.Duration
}

// AddResult counts the bulk verdicts of AddMany.
type AddResult struct {
	Created int
	Updated int
}

// Service keeps the language partitioned search indices in step with the
// primary store. The engine decides a document's language at write time, so
// the language it reports is written back to the primary store and a
// document that changed language is removed from its previous partition.
type Service struct {
	engine   Engine
	store    ContentStore
	dlq      DeadLetterStore
	indices  Indices
	retries  int
	backoff  time.Duration
	lg       logger.Logger
	reporter logger.Reporter
}

func NewService(engine Engine, store ContentStore, dlq DeadLetterStore, cfg ServiceConfig, lg logger.Logger, reporter logger.Reporter) *Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &Service{
		engine:   engine,
		store:    store,
		dlq:      dlq,
		indices:  cfg.Indices,
		retries:  cfg.MaxRetries,
		backoff:  cfg.RetryBackoff,
		lg:       lg,
		reporter: reporter,
	}
}

func (s *Service) Indices() Indices { return s.indices }

// AddMany indexes docs in one bulk request through the language pipeline.
// Hidden documents are skipped. Items the engine rejects are dead-lettered
// and do not fail the batch.
func (s *Service) AddMany(ctx context.Context, docs []Document) (AddResult, error) {
	req := BulkRequest{Pipeline: s.indices.Pipeline(), Refresh: true}
	byID := make(map[string]Document, len(docs))
	for _, d := range docs {
		if d.IsHidden {
			continue
		}
		d = prepare(d)
		byID[d.ID] = d
		req.Items = append(req.Items, BulkItem{
			Action: BulkIndex,
			Index:  s.indices.WriteAlias(),
			ID:     d.ID,
			Doc:    d,
		})
	}
	if len(req.Items) == 0 {
		return AddResult{}, nil
	}

	res, err := s.engine.Bulk(ctx, req)
	if err != nil {
		return AddResult{}, fmt.Errorf("bulk index %d documents: %w", len(req.Items), err)
	}

	var result AddResult
	moved := map[string][]string{}
	for _, item := range res.Items {
		if item.Error != "" {
			s.deadLetter(ctx, OperationIndex, item.ID, item.Error, byID[item.ID])
			continue
		}
		switch item.Result {
		case "created":
			result.Created++
		case "updated":
			result.Updated++
		}
		lang := s.indices.LanguageOf(item.Index)
		if prev := byID[item.ID].Lang; item.Result == "created" || lang != prev {
			moved[lang] = append(moved[lang], item.ID)
			if prev != "" && prev != lang {
				s.deleteStale(ctx, item.ID, prev, item.Index)
			}
		}
	}

	for lang, ids := range moved {
		if err := s.store.UpdateFields(ctx, ids, map[string]any{"lang": lang}); err != nil {
			s.report(ctx, fmt.Errorf("write back lang: %w", err), logger.Fields{"lang": lang, "content_ids": ids})
		}
	}

	logger.InfoWithFields(s.lg, "documents indexed", logger.Fields{
		"requested": len(req.Items),
		"created":   result.Created,
		"updated":   result.Updated,
	})
	return result, nil
}

// UpdateOne reindexes a document through the language pipeline and, when
// the detected language differs from the recorded one, records the new
// language and deletes the copy in the old partition.
func (s *Service) UpdateOne(ctx context.Context, doc Document) error {
	if doc.IsHidden {
		return nil
	}
	doc = prepare(doc)

	res, err := s.engine.Index(ctx, s.indices.WriteAlias(), doc.ID, doc, s.indices.Pipeline())
	if err != nil {
		s.deadLetter(ctx, OperationUpdate, doc.ID, err.Error(), doc)
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}

	lang := s.indices.LanguageOf(res.Index)
	if lang == doc.Lang {
		return nil
	}

	fields := logger.Fields{"content_id": doc.ID, "old_lang": doc.Lang, "new_lang": lang}
	logger.InfoWithFields(s.lg, "document language changed", fields)

	if err := s.store.UpdateFields(ctx, []string{doc.ID}, map[string]any{"lang": lang}); err != nil {
		s.report(ctx, fmt.Errorf("write back lang: %w", err), fields)
	}
	s.deleteStale(ctx, doc.ID, doc.Lang, res.Index)
	return nil
}

// deleteStale removes id from the partition of oldLang unless that is the
// index just written to. Without a recorded language every other partition
// is swept.
func (s *Service) deleteStale(ctx context.Context, id, oldLang, current string) {
	if oldLang == "" {
		query := map[string]any{
			"bool": map[string]any{
				"filter":   []any{map[string]any{"term": map[string]any{"id": id}}},
				"must_not": []any{map[string]any{"term": map[string]any{"_index": current}}},
			},
		}
		if err := s.engine.DeleteByQuery(ctx, s.indices.ReadAlias(), query); err != nil {
			s.report(ctx, fmt.Errorf("sweep stale copies of %s: %w", id, err), logger.Fields{"content_id": id})
		}
		return
	}
	stale := s.indices.ForLang(oldLang)
	if stale == current {
		return
	}
	if err := s.engine.Delete(ctx, stale, id); err != nil {
		s.report(ctx, fmt.Errorf("delete stale copy from %s: %w", stale, err), logger.Fields{
			"content_id": id,
			"old_lang":   oldLang,
		})
	}
}

// UpdateAttributes applies a partial update to the partition the document
// is recorded in.
func (s *Service) UpdateAttributes(ctx context.Context, ref Ref, fields map[string]any) error {
	index := s.indices.ForLang(ref.Lang)
	err := s.retry(ctx, func() error {
		return s.engine.Update(ctx, index, ref.ID, fields, true)
	})
	if err != nil {
		s.deadLetter(ctx, OperationUpdateAttributes, ref.ID, err.Error(), fields)
		return fmt.Errorf("update attributes of %s: %w", ref.ID, err)
	}
	return nil
}

// UpdateAttributesMany sends every patch in one bulk request.
func (s *Service) UpdateAttributesMany(ctx context.Context, patches []AttributePatch) error {
	if len(patches) == 0 {
		return nil
	}
	req := BulkRequest{Refresh: true}
	byID := make(map[string]map[string]any, len(patches))
	for _, p := range patches {
		byID[p.ID] = p.Fields
		req.Items = append(req.Items, BulkItem{
			Action: BulkUpdate,
			Index:  s.indices.ForLang(p.Lang),
			ID:     p.ID,
			Doc:    p.Fields,
		})
	}

	var res BulkResponse
	err := s.retry(ctx, func() error {
		var err error
		res, err = s.engine.Bulk(ctx, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk update %d documents: %w", len(patches), err)
	}
	for _, item := range res.Items {
		if item.Error != "" {
			s.deadLetter(ctx, OperationUpdateAttributes, item.ID, item.Error, byID[item.ID])
		}
	}
	return nil
}

// DeleteMany removes documents from every partition.
func (s *Service) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := map[string]any{"terms": map[string]any{"id": ids}}
	if err := s.engine.DeleteByQuery(ctx, s.indices.ReadAlias(), query); err != nil {
		return fmt.Errorf("delete documents %v: %w", ids, err)
	}
	return nil
}

func (s *Service) Search(ctx context.Context, q Query) (SearchResult, error) {
	body, err := buildSearchBody(q)
	if err != nil {
		return SearchResult{}, err
	}
	res, err := s.engine.Search(ctx, s.indices.ReadAlias(), body)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search contents: %w", err)
	}

	out := SearchResult{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		var d Document
		if err := json.Unmarshal(h.Source, &d); err != nil {
			return SearchResult{}, fmt.Errorf("decode hit %s: %w", h.ID, err)
		}
		out.Hits = append(out.Hits, Hit{Document: d, Highlight: highlightOf(h.Highlight)})
	}
	if n := len(res.Hits); n > 0 {
		out.Cursor = EncodeCursor(res.Hits[n-1].Sort)
	}
	return out, nil
}

func (s *Service) CountContentsInCommunity(ctx context.Context, q CommunityCountQuery) ([]CommunityCount, error) {
	if len(q.RootGroupIDs) == 0 {
		return nil, nil
	}
	res, err := s.engine.Search(ctx, s.indices.ReadAlias(), buildCommunityCountBody(q))
	if err != nil {
		return nil, fmt.Errorf("count contents in community: %w", err)
	}
	raw, ok := res.Aggregations["communities"]
	if !ok {
		return nil, nil
	}
	var agg struct {
		Buckets []struct {
			Key      string `json:"key"`
			DocCount int    `json:"doc_count"`
		} `json:"buckets"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("decode community counts: %w", err)
	}
	out := make([]CommunityCount, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		out = append(out, CommunityCount{CommunityID: b.Key, Count: b.DocCount})
	}
	return out, nil
}

// UpdateAttachedSeriesForPost reloads series membership from the primary
// store and patches seriesIds on each content.
func (s *Service) UpdateAttachedSeriesForPost(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	contents, err := s.store.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load contents %v: %w", ids, err)
	}
	var errs []error
	for _, c := range contents {
		if c.IsHidden() || !c.IsPublished() {
			continue
		}
		seriesIDs := c.SeriesIDs()
		if seriesIDs == nil {
			seriesIDs = []string{}
		}
		if err := s.UpdateAttributes(ctx, Ref{ID: c.ID(), Lang: c.Lang()}, map[string]any{"seriesIds": seriesIDs}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) retry(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt == s.retries {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(err, ctxErr)
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(s.backoff * time.Duration(attempt+1)):
		}
	}
}

func (s *Service) deadLetter(ctx context.Context, op, id, reason string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte("{}")
	}
	rec := models.FailedProcessLog{
		ContentID: id,
		Operation: op,
		Reason:    reason,
		Payload:   string(body),
		CreatedAt: time.Now().UTC(),
	}
	logger.WarnWithFields(s.lg, "search write dead-lettered", logger.Fields{
		"content_id": id,
		"operation":  op,
		"reason":     reason,
	})
	if err := s.dlq.Append(ctx, rec); err != nil {
		s.report(ctx, fmt.Errorf("append dead letter: %w", err), logger.Fields{"content_id": id, "operation": op})
	}
}

func (s *Service) report(ctx context.Context, err error, fields logger.Fields) {
	s.reporter.Report(ctx, err, fields)
}
