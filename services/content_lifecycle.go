package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-content/events"
	"social-content/models"
)

// lifecycle names the aggregate type and the events raised by each
// transition of a schedulable content.
type lifecycle struct {
	contentType models.ContentType
	scheduled   events.EventType
	published   events.EventType
	updated     events.EventType
	deleted     events.EventType
}

var (
	postLifecycle = lifecycle{
		contentType: models.ContentTypePost,
		scheduled:   events.PostScheduled,
		published:   events.PostPublished,
		updated:     events.PostUpdated,
		deleted:     events.PostDeleted,
	}
	articleLifecycle = lifecycle{
		contentType: models.ContentTypeArticle,
		scheduled:   events.ArticleScheduled,
		published:   events.ArticlePublished,
		updated:     events.ArticleUpdated,
		deleted:     events.ArticleDeleted,
	}
)

func (p *contentPipeline) schedule(ctx context.Context, l lifecycle, id, actorID string, at time.Time, attrs ContentAttributes) (*models.Content, error) {
	c, err := p.load(ctx, id, l.contentType)
	if err != nil {
		return nil, err
	}
	if c.IsPublished() {
		return nil, models.ErrContentAlreadyPublished
	}
	if !c.IsOwner(actorID) {
		return nil, models.ErrContentAccessDenied
	}
	if err := p.validateScheduleTime(at); err != nil {
		return nil, err
	}

	groups, err := p.applyContentAttributes(ctx, c, attrs, actorID)
	if err != nil {
		return nil, err
	}
	if err := p.validateContent(ctx, c, groups, actorID); err != nil {
		return nil, err
	}
	c.SetWaitingSchedule(at)

	_, err = p.persist(ctx, c, func(before models.ContentState) {
		c.Raise(events.NewContentEvent(l.scheduled, c.State(), &before, actorID))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// publish is safe to retry: published content is returned as-is.
func (p *contentPipeline) publish(ctx context.Context, l lifecycle, id, actorID string, attrs ContentAttributes) (*models.Content, error) {
	c, err := p.load(ctx, id, l.contentType)
	if err != nil {
		return nil, err
	}
	if c.IsPublished() {
		return c, nil
	}
	if !c.IsOwner(actorID) {
		return nil, models.ErrContentAccessDenied
	}

	groups, err := p.applyContentAttributes(ctx, c, attrs, actorID)
	if err != nil {
		return nil, err
	}
	if err := p.validateContent(ctx, c, groups, actorID); err != nil {
		return nil, err
	}

	if c.HasVideoProcessing() {
		if c.IsWaitingSchedule() {
			return nil, models.ErrVideoStillProcessing
		}
		c.SetProcessing()
	} else {
		c.SetPublish(p.now())
	}

	// A publish that lands in PROCESSING still raises the published event.
	// The indexer skips it until the video callback moves it to PUBLISHED.
	firstSeen := c.IsChanged() && c.IsNotUsersSeen()
	if firstSeen {
		c.IncreaseTotalSeen()
	}

	written, err := p.persist(ctx, c, func(before models.ContentState) {
		c.Raise(events.NewContentEvent(l.published, c.State(), &before, actorID))
	})
	if err != nil {
		return nil, err
	}
	if written {
		p.markPublished(ctx, c, actorID, firstSeen)
	}
	return c, nil
}

func (p *contentPipeline) update(ctx context.Context, l lifecycle, id, actorID string, attrs ContentAttributes) (*models.Content, error) {
	c, err := p.load(ctx, id, l.contentType)
	if err != nil {
		return nil, err
	}
	if c.IsDraft() {
		return nil, models.ErrContentNoPublishYet
	}
	if !c.IsOwner(actorID) {
		return nil, models.ErrContentAccessDenied
	}

	groups, err := p.applyContentAttributes(ctx, c, attrs, actorID)
	if err != nil {
		return nil, err
	}
	if err := p.validateContent(ctx, c, groups, actorID); err != nil {
		return nil, err
	}
	if c.HasVideoProcessing() && !c.IsWaitingSchedule() && !c.IsScheduleFailed() {
		c.SetProcessing()
	}

	_, err = p.persist(ctx, c, func(before models.ContentState) {
		c.Raise(events.NewContentEvent(l.updated, c.State(), &before, actorID))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// autoSave stores a draft without publication checks. Published, hidden and
// missing content is ignored. No event is raised.
func (p *contentPipeline) autoSave(ctx context.Context, l lifecycle, id, actorID string, attrs ContentAttributes) error {
	c, err := p.load(ctx, id, l.contentType)
	if err != nil {
		if errors.Is(err, models.ErrContentNotFound) {
			return nil
		}
		return err
	}
	if c.IsPublished() {
		return nil
	}
	if !c.IsOwner(actorID) {
		return models.ErrContentAccessDenied
	}
	if _, err := p.applyContentAttributes(ctx, c, attrs, actorID); err != nil {
		return err
	}
	_, err = p.persist(ctx, c, nil)
	return err
}

func (p *contentPipeline) remove(ctx context.Context, l lifecycle, id, actorID string) error {
	c, err := p.load(ctx, id, l.contentType)
	if err != nil {
		return err
	}
	if !c.IsOwner(actorID) {
		return models.ErrContentAccessDenied
	}
	if c.IsPublished() {
		if err := p.authz.CanDelete(ctx, actorID, c); err != nil {
			return err
		}
	}
	if err := p.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	evt := events.NewContentEvent(l.deleted, c.State(), nil, actorID)
	if c.IsSeries() {
		evt.ItemIDs = c.ItemIDs()
	}
	c.Raise(evt)
	p.flush(ctx, c)
	return nil
}

// hide is idempotent; hidden content already loads as not found.
func (p *contentPipeline) hide(ctx context.Context, t models.ContentType, id, actorID string) error {
	c, err := p.load(ctx, id, t)
	if err != nil {
		if errors.Is(err, models.ErrContentNotFound) {
			return nil
		}
		return err
	}
	c.Hide()
	_, err = p.persist(ctx, c, func(before models.ContentState) {
		c.Raise(events.NewContentEvent(events.ContentHidden, c.State(), &before, actorID))
	})
	return err
}
