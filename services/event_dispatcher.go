package services

import (
	"context"
	"errors"
	"fmt"

	"social-content/eventbus"
	"social-content/events"
	"social-content/logger"
	"social-content/models"
)

// EventDispatcher publishes content events to the event bus, keyed by
// content id so one content's events stay in order on a partition.
type EventDispatcher struct {
	bus   eventbus.EventBus
	topic eventbus.Topic
	lg    logger.Logger
}

func NewEventDispatcher(bus eventbus.EventBus, topic eventbus.Topic, lg logger.Logger) *EventDispatcher {
	return &EventDispatcher{bus: bus, topic: topic, lg: lg}
}

// Publish sends every event and joins the failures.
func (d *EventDispatcher) Publish(ctx context.Context, evts []models.DomainEvent) error {
	var errs []error
	for _, e := range evts {
		ce, ok := e.(events.ContentEvent)
		if !ok {
			d.lg.Warnf("skip unsupported domain event %s", e.EventName())
			continue
		}
		msg, err := eventbus.NewJSONEvent(ce.ID, ce.Content.ID, ce, 0)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := d.bus.Publish(ctx, d.topic.Base(), msg); err != nil {
			errs = append(errs, fmt.Errorf("publish %s for %s: %w", ce.Type, ce.Content.ID, err))
			continue
		}
		logger.InfoWithFields(d.lg, "content event published", logger.Fields{
			"event_id":   ce.ID,
			"event_type": string(ce.Type),
			"content_id": ce.Content.ID,
		})
	}
	return errors.Join(errs...)
}
