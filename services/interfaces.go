package services

import (
	"context"

	"social-content/models"
)

// ContentRepository is the primary store for the content aggregate.
type ContentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Content, error)
	FindByIDs(ctx context.Context, ids []string) ([]*models.Content, error)
	Create(ctx context.Context, c *models.Content) error
	Update(ctx context.Context, c *models.Content) error
	Delete(ctx context.Context, id string) error
}

// MediaService looks up uploaded media by id. Missing ids are simply absent
// from the result.
type MediaService interface {
	FindImages(ctx context.Context, ids []string) ([]models.Image, error)
	FindFiles(ctx context.Context, ids []string) ([]models.File, error)
	FindVideos(ctx context.Context, ids []string) ([]models.Video, error)
}

type GroupService interface {
	FindGroupsByIDs(ctx context.Context, ids []string) ([]models.Group, error)
}

type UserService interface {
	FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type TagRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Tag, error)
}

// LinkPreviewRepository returns nil, nil from FindByURL when nothing matches.
type LinkPreviewRepository interface {
	FindByURL(ctx context.Context, url string) (*models.LinkPreview, error)
	Create(ctx context.Context, lp *models.LinkPreview) error
	Update(ctx context.Context, lp *models.LinkPreview) error
}

type ContentMarkerRepository interface {
	MarkSeen(ctx context.Context, contentID, userID string) error
	MarkReadImportant(ctx context.Context, contentID, userID string) error
}

// Authorizer is the permission policy. Its errors are returned to the caller
// as-is.
type Authorizer interface {
	CanPublish(ctx context.Context, actorID string, groups []models.Group) error
	CanDelete(ctx context.Context, actorID string, c *models.Content) error
}

// EventPublisher receives the events raised on an aggregate after it has been
// persisted.
type EventPublisher interface {
	Publish(ctx context.Context, evts []models.DomainEvent) error
}

// AllowAll is the Authorizer used when no policy service is configured.
type AllowAll struct{}

func (AllowAll) CanPublish(context.Context, string, []models.Group) error { return nil }
func (AllowAll) CanDelete(context.Context, string, *models.Content) error { return nil }
