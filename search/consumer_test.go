package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-content/eventbus"
	"social-content/events"
	"social-content/logger"
	"social-content/models"
	"social-content/search"
)

func deliver(t *testing.T, c *search.Consumer, evt events.ContentEvent) error {
	t.Helper()
	msg, err := eventbus.NewJSONEvent(evt.ID, evt.Content.ID, evt, 0)
	require.NoError(t, err)
	return c.HandleEvent(context.Background(), msg)
}

func newConsumer(h *harness) *search.Consumer {
	return search.NewConsumer(h.svc, logger.Nop())
}

func storedSeries(items ...string) models.ContentState {
	s := models.ContentState{
		ID:          seriesID,
		Type:        models.ContentTypeSeries,
		CreatedBy:   ownerID,
		Status:      models.StatusPublished,
		GroupIDs:    []string{groupA},
		Title:       "hello series",
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
		PublishedAt: &fixedNow,
	}
	for i, id := range items {
		s.Items = append(s.Items, models.SeriesItem{ID: id, Index: i})
	}
	return s
}

func TestConsumerIndexesPublishedContent(t *testing.T) {
	h := newHarness()
	c := newConsumer(h)

	evt := events.NewContentEvent(events.PostPublished, storedPost(postID, nil), nil, ownerID)
	require.NoError(t, deliver(t, c, evt))

	assert.Equal(t, []string{"dev_posts_en"}, h.engine.copiesOf(postID))
	assert.Equal(t, "en", h.store.lang(postID))
}

func TestConsumerRedeliveryKeepsOneCopy(t *testing.T) {
	h := newHarness()
	c := newConsumer(h)

	evt := events.NewContentEvent(events.PostPublished, storedPost(postID, nil), nil, ownerID)
	require.NoError(t, deliver(t, c, evt))
	require.NoError(t, deliver(t, c, evt))

	assert.Len(t, hitsFor(t, h, postID), 1)
}

func TestConsumerUpdateFollowsLanguage(t *testing.T) {
	h := newHarness()
	c := newConsumer(h)
	require.NoError(t, deliver(t, c, events.NewContentEvent(events.PostPublished, storedPost(postID, nil), nil, ownerID)))

	before := storedPost(postID, nil)
	updated := storedPost(postID, nil)
	updated.Content = "bonjour"
	updated.Lang = h.store.lang(postID)
	require.NoError(t, deliver(t, c, events.NewContentEvent(events.PostUpdated, updated, &before, ownerID)))

	assert.Equal(t, []string{"dev_posts_fr"}, h.engine.copiesOf(postID))
}

func TestConsumerRemovesContentThatIsNotSearchable(t *testing.T) {
	hidden := storedPost(postID, nil)
	hidden.IsHidden = true
	draft := storedPost(postID, nil)
	draft.Status = models.StatusDraft

	tests := []struct {
		name  string
		event events.ContentEvent
	}{
		{"hidden by moderation", events.NewContentEvent(events.ContentHidden, hidden, nil, ownerID)},
		{"published while hidden", events.NewContentEvent(events.PostPublished, hidden, nil, ownerID)},
		{"updated back to draft", events.NewContentEvent(events.PostUpdated, draft, nil, ownerID)},
		{"deleted", events.NewContentEvent(events.PostDeleted, storedPost(postID, nil), nil, ownerID)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.engine.put("dev_posts_en", postID, map[string]any{"id": postID})
			h.engine.put("dev_posts_fr", postID, map[string]any{"id": postID})

			require.NoError(t, deliver(t, newConsumer(h), tt.event))

			assert.Empty(t, h.engine.copiesOf(postID))
			assert.Zero(t, h.engine.bulkCalls)
		})
	}
}

func TestConsumerAppliesChangeFeedState(t *testing.T) {
	h := newHarness()
	c := newConsumer(h)

	evt := events.NewContentEvent(events.ContentChanged, storedPost(postID, nil), nil, ownerID)
	evt.State = events.StatePublish
	require.NoError(t, deliver(t, c, evt))
	assert.Equal(t, []string{"dev_posts_en"}, h.engine.copiesOf(postID))

	evt = events.NewContentEvent(events.ContentChanged, storedPost(postID, nil), nil, ownerID)
	evt.State = events.StateDelete
	require.NoError(t, deliver(t, c, evt))
	assert.Empty(t, h.engine.copiesOf(postID))
}

func TestConsumerIgnoresUnrelatedEvents(t *testing.T) {
	h := newHarness()
	scheduled := storedPost(postID, nil)
	scheduled.Status = models.StatusWaitingSchedule

	require.NoError(t, deliver(t, newConsumer(h), events.NewContentEvent(events.PostScheduled, scheduled, nil, ownerID)))

	assert.Zero(t, h.engine.bulkCalls)
	assert.Empty(t, h.engine.copiesOf(postID))
}

func TestConsumerRejectsMalformedPayload(t *testing.T) {
	h := newHarness()
	err := newConsumer(h).HandleEvent(context.Background(), eventbus.Event{ID: "1", Payload: []byte("{")})
	require.Error(t, err)
}

func TestConsumerReorderPatchesSeriesItems(t *testing.T) {
	h := newHarness()
	c := newConsumer(h)
	require.NoError(t, deliver(t, c, events.NewContentEvent(events.SeriesPublished, storedSeries(postID, post2ID), nil, ownerID)))

	reordered := storedSeries(post2ID, postID)
	reordered.Lang = h.store.lang(seriesID)
	evt := events.NewContentEvent(events.SeriesItemsReordered, reordered, nil, ownerID)
	evt.ItemIDs = []string{post2ID, postID}
	require.NoError(t, deliver(t, c, evt))

	hits := hitsFor(t, h, seriesID)
	require.Len(t, hits, 1)
	assert.Equal(t, []models.SeriesItem{{ID: post2ID, Index: 0}, {ID: postID, Index: 1}}, hits[0].Items)
}

func TestConsumerAttachPatchesMemberSeriesIDs(t *testing.T) {
	h := newHarness()
	c := newConsumer(h)
	require.NoError(t, deliver(t, c, events.NewContentEvent(events.SeriesPublished, storedSeries(), nil, ownerID)))
	require.NoError(t, deliver(t, c, events.NewContentEvent(events.PostPublished, storedPost(postID, nil), nil, ownerID)))

	h.store.contents[postID] = storedPost(postID, []string{seriesID})

	series := storedSeries(postID)
	series.Lang = h.store.lang(seriesID)
	evt := events.NewContentEvent(events.ContentAttachedSeries, series, nil, ownerID)
	evt.ItemIDs = []string{postID}
	require.NoError(t, deliver(t, c, evt))

	post := hitsFor(t, h, postID)
	require.Len(t, post, 1)
	assert.Equal(t, []string{seriesID}, post[0].SeriesIDs)

	s := hitsFor(t, h, seriesID)
	require.Len(t, s, 1)
	assert.Equal(t, []models.SeriesItem{{ID: postID, Index: 0}}, s[0].Items)
}

func TestConsumerSeriesDeleteDetachesMembers(t *testing.T) {
	h := newHarness()
	c := newConsumer(h)
	require.NoError(t, deliver(t, c, events.NewContentEvent(events.SeriesPublished, storedSeries(postID), nil, ownerID)))
	require.NoError(t, deliver(t, c, events.NewContentEvent(events.PostPublished, storedPost(postID, []string{seriesID}), nil, ownerID)))

	// the primary store has already pulled the series from its members
	h.store.contents[postID] = storedPost(postID, nil)

	evt := events.NewContentEvent(events.SeriesDeleted, storedSeries(postID), nil, ownerID)
	evt.ItemIDs = []string{postID}
	require.NoError(t, deliver(t, c, evt))

	assert.Empty(t, h.engine.copiesOf(seriesID))
	post := hitsFor(t, h, postID)
	require.Len(t, post, 1)
	assert.Empty(t, post[0].SeriesIDs)
}
