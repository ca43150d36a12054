package services

import (
	"context"
	"fmt"
	"slices"

	"social-content/models"
)

// MediaInput lists the media ids requested for a content, in display order.
type MediaInput struct {
	Images []string
	Files  []string
	Videos []string
}

// MediaResolver turns requested media ids into entities. Ids that are
// already attached are reused without a lookup; new ids are fetched and must
// belong to the content's author.
type MediaResolver struct {
	media MediaService
}

func NewMediaResolver(media MediaService) *MediaResolver {
	return &MediaResolver{media: media}
}

// Resolve returns the media in the order of the request. Images that are not
// content images of the given content type fail the whole call.
func (r *MediaResolver) Resolve(ctx context.Context, c *models.Content, in MediaInput) (models.Media, error) {
	owner := c.CreatedBy()
	current := c.Media()

	images, err := resolveAttached(ctx, in.Images, current.Images,
		func(img models.Image) string { return img.ID },
		r.media.FindImages,
		func(img models.Image) bool { return img.CreatedBy == owner && img.IsReady() },
	)
	if err != nil {
		return models.Media{}, fmt.Errorf("resolve images: %w", err)
	}
	for _, img := range images {
		if !isContentImage(c, img) {
			return models.Media{}, models.ErrInvalidResourceImage
		}
	}

	files, err := resolveAttached(ctx, in.Files, current.Files,
		func(f models.File) string { return f.ID },
		r.media.FindFiles,
		func(f models.File) bool { return f.CreatedBy == owner },
	)
	if err != nil {
		return models.Media{}, fmt.Errorf("resolve files: %w", err)
	}

	videos, err := resolveAttached(ctx, in.Videos, current.Videos,
		func(v models.Video) string { return v.ID },
		r.media.FindVideos,
		func(v models.Video) bool { return v.CreatedBy == owner },
	)
	if err != nil {
		return models.Media{}, fmt.Errorf("resolve videos: %w", err)
	}

	return models.Media{Images: images, Files: files, Videos: videos}, nil
}

// ResolveCover loads a single cover image. An empty id clears the cover.
func (r *MediaResolver) ResolveCover(ctx context.Context, c *models.Content, id string) (*models.Image, error) {
	if id == "" {
		return nil, nil
	}
	if cur := c.Cover(); cur != nil && cur.ID == id {
		return cur, nil
	}
	images, err := r.media.FindImages(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("resolve cover: %w", err)
	}
	for _, img := range images {
		if img.ID != id {
			continue
		}
		if img.CreatedBy != c.CreatedBy() || !img.IsReady() || !img.IsCoverResource() {
			return nil, models.ErrInvalidResourceImage
		}
		return &img, nil
	}
	return nil, models.ErrInvalidResourceImage
}

func isContentImage(c *models.Content, img models.Image) bool {
	if c.IsArticle() {
		return img.IsArticleContentResource()
	}
	return img.IsPostContentResource()
}

// resolveAttached splits requested into kept and new ids, fetches the new
// ones, filters them and returns everything sorted by the requested order.
func resolveAttached[T any](
	ctx context.Context,
	requested []string,
	attached []T,
	idOf func(T) string,
	fetch func(context.Context, []string) ([]T, error),
	keep func(T) bool,
) ([]T, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	position := make(map[string]int, len(requested))
	for _, id := range requested {
		if _, ok := position[id]; !ok {
			position[id] = len(position)
		}
	}

	out := make([]T, 0, len(position))
	have := make(map[string]struct{}, len(position))
	for _, item := range attached {
		id := idOf(item)
		if _, ok := position[id]; ok {
			out = append(out, item)
			have[id] = struct{}{}
		}
	}

	var newIDs []string
	for id := range position {
		if _, ok := have[id]; !ok {
			newIDs = append(newIDs, id)
		}
	}
	if len(newIDs) > 0 {
		slices.SortFunc(newIDs, func(a, b string) int { return position[a] - position[b] })
		fetched, err := fetch(ctx, newIDs)
		if err != nil {
			return nil, err
		}
		for _, item := range fetched {
			id := idOf(item)
			if _, ok := position[id]; !ok {
				continue
			}
			if _, dup := have[id]; dup || !keep(item) {
				continue
			}
			out = append(out, item)
			have[id] = struct{}{}
		}
	}

	slices.SortStableFunc(out, func(a, b T) int { return position[idOf(a)] - position[idOf(b)] })
	return out, nil
}
