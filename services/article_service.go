package services

import (
	"context"
	"time"

	"social-content/models"
)

type ArticleInput struct {
	ID         string
	ActorID    string
	Attributes ContentAttributes
}

type ScheduleArticleInput struct {
	ID          string
	ActorID     string
	ScheduledAt time.Time
	Attributes  ContentAttributes
}

// ArticleService runs articles through the same pipeline as posts. Articles
// must carry a cover image to be published.
type ArticleService struct {
	*contentPipeline
}

func NewArticleService(d Deps) *ArticleService {
	return &ArticleService{contentPipeline: newContentPipeline(d)}
}

func (s *ArticleService) Schedule(ctx context.Context, in ScheduleArticleInput) (*models.Content, error) {
	return s.schedule(ctx, articleLifecycle, in.ID, in.ActorID, in.ScheduledAt, in.Attributes)
}

func (s *ArticleService) Publish(ctx context.Context, in ArticleInput) (*models.Content, error) {
	return s.publish(ctx, articleLifecycle, in.ID, in.ActorID, in.Attributes)
}

func (s *ArticleService) Update(ctx context.Context, in ArticleInput) (*models.Content, error) {
	return s.update(ctx, articleLifecycle, in.ID, in.ActorID, in.Attributes)
}

func (s *ArticleService) AutoSave(ctx context.Context, in ArticleInput) error {
	return s.autoSave(ctx, articleLifecycle, in.ID, in.ActorID, in.Attributes)
}

func (s *ArticleService) Delete(ctx context.Context, id, actorID string) error {
	return s.remove(ctx, articleLifecycle, id, actorID)
}

func (s *ArticleService) Hide(ctx context.Context, id, actorID string) error {
	return s.hide(ctx, models.ContentTypeArticle, id, actorID)
}
