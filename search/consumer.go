package search

import (
	"context"
	"fmt"

	"social-content/eventbus"
	"social-content/events"
	"social-content/logger"
	"social-content/models"
)

// Consumer applies content events to the search indices. Every path is an
// upsert or delete by id, so redelivered events are harmless.
type Consumer struct {
	svc *Service
	lg  logger.Logger
}

func NewConsumer(svc *Service, lg logger.Logger) *Consumer {
	return &Consumer{svc: svc, lg: lg}
}

// HandleEvent decodes an event bus message. Errors are returned so the bus
// can schedule a retry.
func (c *Consumer) HandleEvent(ctx context.Context, evt eventbus.Event) error {
	ce, err := eventbus.DecodeJSON[events.ContentEvent](evt)
	if err != nil {
		return err
	}
	return c.Handle(ctx, ce)
}

func (c *Consumer) Handle(ctx context.Context, evt events.ContentEvent) error {
	switch evt.Type {
	case events.SeriesItemsReordered, events.ContentAttachedSeries:
		return c.membershipChanged(ctx, evt)
	}

	state, ok := events.ChangeStateOf(evt)
	if !ok {
		c.lg.Debugf("event %s (%s) does not touch search", evt.ID, evt.Type)
		return nil
	}

	content := evt.Content
	doc := DocumentFromState(content)
	// change feed messages from other services may omit the status
	searchable := !content.IsHidden && (content.Status == models.StatusPublished || content.Status == "")

	switch state {
	case events.StatePublish:
		if !searchable {
			return c.svc.DeleteMany(ctx, []string{content.ID})
		}
		_, err := c.svc.AddMany(ctx, []Document{doc})
		return err
	case events.StateUpdate:
		if !searchable {
			return c.svc.DeleteMany(ctx, []string{content.ID})
		}
		return c.svc.UpdateOne(ctx, doc)
	case events.StateDelete:
		if err := c.svc.DeleteMany(ctx, []string{content.ID}); err != nil {
			return err
		}
		if len(evt.ItemIDs) > 0 {
			return c.svc.UpdateAttachedSeriesForPost(ctx, evt.ItemIDs)
		}
		return nil
	default:
		return fmt.Errorf("unhandled change state %v for event %s", state, evt.ID)
	}
}

// membershipChanged patches the series' member list and the seriesIds of
// the affected contents.
func (c *Consumer) membershipChanged(ctx context.Context, evt events.ContentEvent) error {
	series := evt.Content
	if series.IsHidden {
		return nil
	}
	ref := Ref{ID: series.ID, Lang: series.Lang}
	if err := c.svc.UpdateAttributes(ctx, ref, map[string]any{"items": series.Items}); err != nil {
		return err
	}
	if evt.Type == events.ContentAttachedSeries {
		return c.svc.UpdateAttachedSeriesForPost(ctx, evt.ItemIDs)
	}
	return nil
}
