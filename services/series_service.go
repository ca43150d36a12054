package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"social-content/events"
	"social-content/models"
)

type SeriesInput struct {
	ID         string
	ActorID    string
	Attributes ContentAttributes
}

type SeriesItemsInput struct {
	SeriesID string
	ActorID  string
	ItemIDs  []string
}

var seriesLifecycle = lifecycle{
	contentType: models.ContentTypeSeries,
	published:   events.SeriesPublished,
	updated:     events.SeriesUpdated,
	deleted:     events.SeriesDeleted,
}

// SeriesService manages series and their members. A series is published as
// soon as it is created.
type SeriesService struct {
	*contentPipeline
}

func NewSeriesService(d Deps) *SeriesService {
	return &SeriesService{contentPipeline: newContentPipeline(d)}
}

// Create uses in.ID when given so that a retried request does not create a
// second series.
func (s *SeriesService) Create(ctx context.Context, in SeriesInput) (*models.Content, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	series, err := models.NewSeries(id, in.ActorID, s.now())
	if err != nil {
		return nil, err
	}
	groups, err := s.applyContentAttributes(ctx, series, in.Attributes, in.ActorID)
	if err != nil {
		return nil, err
	}
	if err := s.validateSeries(ctx, series, groups, in.ActorID); err != nil {
		return nil, err
	}
	series.SetPublish(s.now())

	if err := s.repo.Create(ctx, series); err != nil {
		return nil, fmt.Errorf("create series %s: %w", id, err)
	}
	series.Raise(events.NewContentEvent(seriesLifecycle.published, series.State(), nil, in.ActorID))
	s.flush(ctx, series)
	return series, nil
}

func (s *SeriesService) Update(ctx context.Context, in SeriesInput) (*models.Content, error) {
	series, err := s.loadOwned(ctx, in.ID, in.ActorID)
	if err != nil {
		return nil, err
	}
	groups, err := s.applyContentAttributes(ctx, series, in.Attributes, in.ActorID)
	if err != nil {
		return nil, err
	}
	if err := s.validateSeries(ctx, series, groups, in.ActorID); err != nil {
		return nil, err
	}
	_, err = s.persist(ctx, series, func(before models.ContentState) {
		series.Raise(events.NewContentEvent(seriesLifecycle.updated, series.State(), &before, in.ActorID))
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// Delete removes the series; the store detaches it from its members.
func (s *SeriesService) Delete(ctx context.Context, id, actorID string) error {
	return s.remove(ctx, seriesLifecycle, id, actorID)
}

// AddItems attaches posts or articles to the series and records the series
// on each of them.
func (s *SeriesService) AddItems(ctx context.Context, in SeriesItemsInput) (*models.Content, error) {
	series, err := s.loadOwned(ctx, in.SeriesID, in.ActorID)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, in.ItemIDs)
	if err != nil {
		return nil, err
	}
	if err := series.AddItems(in.ItemIDs); err != nil {
		return nil, err
	}

	for _, item := range items {
		ids := item.SeriesIDs()
		if slices.Contains(ids, series.ID()) {
			continue
		}
		if err := item.Update(models.UpdateAttributes{SeriesIDs: append(ids, series.ID())}, in.ActorID); err != nil {
			return nil, err
		}
		if item.IsOverLimitedToAttachSeries() {
			return nil, models.ErrLimitAttachedSeries
		}
	}
	return s.saveMembership(ctx, series, items, in)
}

func (s *SeriesService) RemoveItems(ctx context.Context, in SeriesItemsInput) (*models.Content, error) {
	series, err := s.loadOwned(ctx, in.SeriesID, in.ActorID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.FindByIDs(ctx, in.ItemIDs)
	if err != nil {
		return nil, fmt.Errorf("find series items: %w", err)
	}
	series.RemoveItems(in.ItemIDs)

	for _, item := range items {
		ids := item.SeriesIDs()
		if !slices.Contains(ids, series.ID()) {
			continue
		}
		ids = slices.DeleteFunc(ids, func(id string) bool { return id == series.ID() })
		if err := item.Update(models.UpdateAttributes{SeriesIDs: ids}, in.ActorID); err != nil {
			return nil, err
		}
	}
	return s.saveMembership(ctx, series, items, in)
}

// ReorderItems requires the full member list in its new order.
func (s *SeriesService) ReorderItems(ctx context.Context, in SeriesItemsInput) (*models.Content, error) {
	series, err := s.loadOwned(ctx, in.SeriesID, in.ActorID)
	if err != nil {
		return nil, err
	}
	if err := series.ReorderItems(in.ItemIDs); err != nil {
		return nil, err
	}
	_, err = s.persist(ctx, series, func(before models.ContentState) {
		evt := events.NewContentEvent(events.SeriesItemsReordered, series.State(), &before, in.ActorID)
		evt.ItemIDs = series.ItemIDs()
		series.Raise(evt)
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (s *SeriesService) Hide(ctx context.Context, id, actorID string) error {
	return s.hide(ctx, models.ContentTypeSeries, id, actorID)
}

func (s *SeriesService) loadOwned(ctx context.Context, id, actorID string) (*models.Content, error) {
	series, err := s.load(ctx, id, models.ContentTypeSeries)
	if err != nil {
		return nil, err
	}
	if !series.IsOwner(actorID) {
		return nil, models.ErrContentAccessDenied
	}
	return series, nil
}

// loadItems requires every id to be a visible post or article.
func (s *SeriesService) loadItems(ctx context.Context, ids []string) ([]*models.Content, error) {
	items, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find series items: %w", err)
	}
	found := make(map[string]bool, len(items))
	for _, item := range items {
		if item.IsSeries() || item.IsHidden() {
			return nil, models.ErrSeriesItemsMismatch
		}
		found[item.ID()] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, models.ErrSeriesItemsMismatch
		}
	}
	return items, nil
}

// saveMembership persists changed members first, then the series with an
// event naming the affected contents.
func (s *SeriesService) saveMembership(ctx context.Context, series *models.Content, items []*models.Content, in SeriesItemsInput) (*models.Content, error) {
	for _, item := range items {
		if _, err := s.persist(ctx, item, nil); err != nil {
			return nil, err
		}
	}
	_, err := s.persist(ctx, series, func(before models.ContentState) {
		evt := events.NewContentEvent(events.ContentAttachedSeries, series.State(), &before, in.ActorID)
		evt.ItemIDs = slices.Clone(in.ItemIDs)
		series.Raise(evt)
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (s *SeriesService) validateSeries(ctx context.Context, series *models.Content, groups []models.Group, actorID string) error {
	if len(series.GroupIDs()) == 0 {
		return models.ErrContentEmptyGroup
	}
	return s.authz.CanPublish(ctx, actorID, groups)
}
