package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"social-content/logger"
	"social-content/models"
)

type LinkPreviewInput struct {
	URL         string
	Domain      string
	Image       string
	Title       string
	Description string
}

// LinkPreviewService is the only writer of link previews. Previews are
// deduplicated by URL.
type LinkPreviewService struct {
	repo LinkPreviewRepository
	lg   logger.Logger
}

func NewLinkPreviewService(repo LinkPreviewRepository, lg logger.Logger) *LinkPreviewService {
	return &LinkPreviewService{repo: repo, lg: lg}
}

// FindOrUpsert returns nil when in has no URL.
func (s *LinkPreviewService) FindOrUpsert(ctx context.Context, in *LinkPreviewInput) (*models.LinkPreview, error) {
	if in == nil || in.URL == "" {
		return nil, nil
	}

	incoming := models.LinkPreview{
		URL:         in.URL,
		Domain:      in.Domain,
		Image:       in.Image,
		Title:       in.Title,
		Description: in.Description,
	}
	if incoming.Domain == "" {
		if u, err := url.Parse(in.URL); err == nil {
			incoming.Domain = u.Hostname()
		}
	}

	existing, err := s.repo.FindByURL(ctx, in.URL)
	if err != nil {
		return nil, s.dbError("find link preview", in.URL, err)
	}

	if existing == nil {
		incoming.ID = uuid.NewString()
		if err := s.repo.Create(ctx, &incoming); err != nil {
			return nil, s.dbError("create link preview", in.URL, err)
		}
		return &incoming, nil
	}

	incoming.ID = existing.ID
	incoming.CreatedAt = existing.CreatedAt
	if existing.SameMetadata(incoming) {
		return existing, nil
	}
	if err := s.repo.Update(ctx, &incoming); err != nil {
		return nil, s.dbError("update link preview", in.URL, err)
	}
	return &incoming, nil
}

func (s *LinkPreviewService) dbError(msg, link string, err error) error {
	logger.ErrorWithFields(s.lg, msg, logger.Fields{"url": link, "error": err.Error()})
	return fmt.Errorf("%w: %s: %v", models.ErrDatabase, msg, err)
}
