package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrContentNotFound         = errors.New("content not found")
	ErrContentAlreadyPublished = errors.New("content has been published")
	ErrContentNoPublishYet     = errors.New("content has not been published yet")
	ErrContentAccessDenied     = errors.New("content access denied")
	ErrContentEmpty            = errors.New("content is empty")
	ErrContentEmptyGroup       = errors.New("content audience is empty")
	ErrVideoStillProcessing    = errors.New("video is still processing")
	ErrInvalidResourceImage    = errors.New("invalid resource image")
	ErrArticleRequiredCover    = errors.New("article requires a cover image")
	ErrInvalidScheduleTime     = errors.New("schedule time must be in the future")
	ErrLimitAttachedSeries     = errors.New("content is attached to too many series")
	ErrTagSeriesInvalid        = errors.New("tags or series are not in the audience groups")
	ErrMentionNotInGroups      = errors.New("mentioned users are not members of the audience groups")
	ErrSeriesItemsMismatch     = errors.New("series items do not match")
	ErrUnsupportedContentType  = errors.New("unsupported content type")
	ErrDatabase                = errors.New("database error")
)

// DomainModelError is returned when an aggregate is built from malformed
// identity data. It is never retried.
type DomainModelError struct {
	Field string
	Value string
}

func (e *DomainModelError) Error() string {
	return fmt.Sprintf("domain model: invalid %s %q", e.Field, e.Value)
}

// TagSeriesInvalidError lists the series and tags that fall outside the
// content audience.
type TagSeriesInvalidError struct {
	SeriesIDs []string
	TagIDs    []string
}

func (e *TagSeriesInvalidError) Error() string {
	var parts []string
	if len(e.SeriesIDs) > 0 {
		parts = append(parts, "series="+strings.Join(e.SeriesIDs, ","))
	}
	if len(e.TagIDs) > 0 {
		parts = append(parts, "tags="+strings.Join(e.TagIDs, ","))
	}
	return ErrTagSeriesInvalid.Error() + ": " + strings.Join(parts, " ")
}

func (e *TagSeriesInvalidError) Is(target error) bool {
	return target == ErrTagSeriesInvalid
}
