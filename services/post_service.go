package services

import (
	"context"
	"time"

	"social-content/events"
	"social-content/models"
)

type PublishPostInput struct {
	ID         string
	ActorID    string
	Attributes ContentAttributes
}

type SchedulePostInput struct {
	ID          string
	ActorID     string
	ScheduledAt time.Time
	Attributes  ContentAttributes
}

type UpdatePostInput struct {
	ID         string
	ActorID    string
	Attributes ContentAttributes
}

// VideoProcessedInput is the media service's transcoding result for one
// video attached to a post.
type VideoProcessedInput struct {
	ContentID string
	Video     models.Video
}

// PostService drives the post lifecycle.
type PostService struct {
	*contentPipeline
}

func NewPostService(d Deps) *PostService {
	return &PostService{contentPipeline: newContentPipeline(d)}
}

func (s *PostService) Schedule(ctx context.Context, in SchedulePostInput) (*models.Content, error) {
	return s.schedule(ctx, postLifecycle, in.ID, in.ActorID, in.ScheduledAt, in.Attributes)
}

func (s *PostService) Publish(ctx context.Context, in PublishPostInput) (*models.Content, error) {
	return s.publish(ctx, postLifecycle, in.ID, in.ActorID, in.Attributes)
}

func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Content, error) {
	return s.update(ctx, postLifecycle, in.ID, in.ActorID, in.Attributes)
}

func (s *PostService) AutoSave(ctx context.Context, in UpdatePostInput) error {
	return s.autoSave(ctx, postLifecycle, in.ID, in.ActorID, in.Attributes)
}

func (s *PostService) Delete(ctx context.Context, id, actorID string) error {
	return s.remove(ctx, postLifecycle, id, actorID)
}

// Hide is the moderation path; it does not require ownership.
func (s *PostService) Hide(ctx context.Context, id, actorID string) error {
	return s.hide(ctx, models.ContentTypePost, id, actorID)
}

// MarkVideoProcessed applies a transcoding result. A failed video sends the
// post back to DRAFT, or to SCHEDULE_FAILED when it was scheduled. A post
// waiting in PROCESSING is published once no video is left processing.
func (s *PostService) MarkVideoProcessed(ctx context.Context, in VideoProcessedInput) (*models.Content, error) {
	post, err := s.load(ctx, in.ContentID, models.ContentTypePost)
	if err != nil {
		return nil, err
	}
	if !post.ReplaceVideo(in.Video) {
		return post, nil
	}
	actorID := post.CreatedBy()

	if in.Video.Status == models.VideoStatusFailed {
		switch {
		case post.IsWaitingSchedule(), post.IsScheduleFailed():
			post.SetScheduleFailed()
		case !post.IsPublished():
			post.SetDraft()
		}
		_, err := s.persist(ctx, post, func(before models.ContentState) {
			post.Raise(events.NewContentEvent(events.PostVideoFailed, post.State(), &before, actorID))
		})
		if err != nil {
			return nil, err
		}
		return post, nil
	}

	publishing := post.IsProcessing() && !post.HasVideoProcessing()
	firstSeen := false
	if publishing {
		post.SetPublish(s.now())
		if post.IsNotUsersSeen() {
			firstSeen = true
			post.IncreaseTotalSeen()
		}
	}

	written, err := s.persist(ctx, post, func(before models.ContentState) {
		switch {
		case publishing:
			post.Raise(events.NewContentEvent(events.PostPublished, post.State(), &before, actorID))
		case post.IsPublished():
			post.Raise(events.NewContentEvent(events.PostUpdated, post.State(), &before, actorID))
		}
	})
	if err != nil {
		return nil, err
	}
	if written && publishing {
		s.markPublished(ctx, post, actorID, firstSeen)
	}
	return post, nil
}
