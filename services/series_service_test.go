package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-content/events"
	"social-content/models"
	"social-content/services"
)

func TestSeriesLifecycle(t *testing.T) {
	f := newFixture()
	f.seedPost(t, func(c *models.Content) { c.SetPublish(fixedNow) })
	article, err := models.NewArticle(articleID, ownerID, fixedNow)
	require.NoError(t, err)
	require.NoError(t, article.Update(models.UpdateAttributes{GroupIDs: []string{groupA}}, ownerID))
	article.SetPublish(fixedNow)
	f.repo.put(t, article)

	svc := services.NewSeriesService(f.deps)
	ctx := context.Background()

	series, err := svc.Create(ctx, services.SeriesInput{
		ID:      seriesID,
		ActorID: ownerID,
		Attributes: services.ContentAttributes{
			Title:    strPtr("Learning Go"),
			GroupIDs: []string{groupA},
		},
	})
	require.NoError(t, err)
	assert.True(t, series.IsPublished())
	assert.Equal(t, []string{rootA}, series.CommunityIDs())
	assert.Equal(t, 1, f.repo.creates)

	series, err = svc.AddItems(ctx, services.SeriesItemsInput{
		SeriesID: seriesID,
		ActorID:  ownerID,
		ItemIDs:  []string{postID, articleID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{postID, articleID}, series.ItemIDs())
	assert.Equal(t, []string{seriesID}, f.repo.get(t, postID).SeriesIDs())
	assert.Equal(t, []string{seriesID}, f.repo.get(t, articleID).SeriesIDs())

	_, err = svc.ReorderItems(ctx, services.SeriesItemsInput{SeriesID: seriesID, ActorID: ownerID, ItemIDs: []string{postID}})
	assert.ErrorIs(t, err, models.ErrSeriesItemsMismatch)

	series, err = svc.ReorderItems(ctx, services.SeriesItemsInput{
		SeriesID: seriesID,
		ActorID:  ownerID,
		ItemIDs:  []string{articleID, postID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{articleID, postID}, series.ItemIDs())

	last, ok := f.publisher.events[len(f.publisher.events)-1].(events.ContentEvent)
	require.True(t, ok)
	assert.Equal(t, events.SeriesItemsReordered, last.Type)
	assert.Equal(t, []string{articleID, postID}, last.ItemIDs)

	_, err = svc.RemoveItems(ctx, services.SeriesItemsInput{SeriesID: seriesID, ActorID: ownerID, ItemIDs: []string{postID}})
	require.NoError(t, err)
	assert.Empty(t, f.repo.get(t, postID).SeriesIDs())
	assert.Equal(t, []string{articleID}, f.repo.get(t, seriesID).ItemIDs())

	assert.Equal(t, []string{
		string(events.SeriesPublished),
		string(events.ContentAttachedSeries),
		string(events.SeriesItemsReordered),
		string(events.ContentAttachedSeries),
	}, f.publisher.names())
}

func TestSeriesAddItemsRejectsUnknownContent(t *testing.T) {
	f := newFixture()
	svc := services.NewSeriesService(f.deps)
	ctx := context.Background()

	_, err := svc.Create(ctx, services.SeriesInput{
		ID:         seriesID,
		ActorID:    ownerID,
		Attributes: services.ContentAttributes{GroupIDs: []string{groupA}},
	})
	require.NoError(t, err)

	_, err = svc.AddItems(ctx, services.SeriesItemsInput{SeriesID: seriesID, ActorID: ownerID, ItemIDs: []string{postID}})
	assert.ErrorIs(t, err, models.ErrSeriesItemsMismatch)

	_, err = svc.AddItems(ctx, services.SeriesItemsInput{SeriesID: seriesID, ActorID: otherID, ItemIDs: []string{postID}})
	assert.ErrorIs(t, err, models.ErrContentAccessDenied)
}

func TestSeriesRemoveItemsLeavesNonMembersUntouched(t *testing.T) {
	f := newFixture()
	post, err := models.NewPost(postID, otherID, fixedNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, post.Update(models.UpdateAttributes{Content: strPtr("hello"), GroupIDs: []string{groupA}}, otherID))
	post.SetPublish(fixedNow)
	f.repo.put(t, post)

	svc := services.NewSeriesService(f.deps)
	ctx := context.Background()
	_, err = svc.Create(ctx, services.SeriesInput{
		ID:         seriesID,
		ActorID:    ownerID,
		Attributes: services.ContentAttributes{GroupIDs: []string{groupA}},
	})
	require.NoError(t, err)
	updates := f.repo.updates

	_, err = svc.RemoveItems(ctx, services.SeriesItemsInput{SeriesID: seriesID, ActorID: ownerID, ItemIDs: []string{postID}})
	require.NoError(t, err)
	assert.Equal(t, updates, f.repo.updates)
	assert.Equal(t, otherID, f.repo.get(t, postID).UpdatedBy())
}

func TestSeriesCreateRequiresAudience(t *testing.T) {
	f := newFixture()
	svc := services.NewSeriesService(f.deps)

	_, err := svc.Create(context.Background(), services.SeriesInput{ActorID: ownerID})
	assert.ErrorIs(t, err, models.ErrContentEmptyGroup)
	assert.Zero(t, f.repo.creates)
}

func TestArticleRequiresCover(t *testing.T) {
	f := newFixture()
	article, err := models.NewArticle(articleID, ownerID, fixedNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, article.Update(models.UpdateAttributes{
		Title:    strPtr("Generics"),
		Content:  strPtr(`[{"type":"paragraph","children":[{"text":"hi"}]}]`),
		GroupIDs: []string{groupA},
	}, ownerID))
	f.repo.put(t, article)
	f.addImage("cover-1", ownerID, models.ImageResourceArticleCover)
	f.addImage("content-1", ownerID, models.ImageResourcePostContent)

	svc := services.NewArticleService(f.deps)
	ctx := context.Background()

	_, err = svc.Publish(ctx, services.ArticleInput{ID: articleID, ActorID: ownerID})
	assert.ErrorIs(t, err, models.ErrArticleRequiredCover)

	_, err = svc.Publish(ctx, services.ArticleInput{
		ID:         articleID,
		ActorID:    ownerID,
		Attributes: services.ContentAttributes{CoverID: strPtr("content-1")},
	})
	assert.ErrorIs(t, err, models.ErrInvalidResourceImage)

	published, err := svc.Publish(ctx, services.ArticleInput{
		ID:         articleID,
		ActorID:    ownerID,
		Attributes: services.ContentAttributes{CoverID: strPtr("cover-1")},
	})
	require.NoError(t, err)
	assert.True(t, published.IsPublished())
	require.NotNil(t, published.Cover())
	assert.Equal(t, "cover-1", published.Cover().ID)
	assert.Equal(t, []string{string(events.ArticlePublished)}, f.publisher.names())
}
