package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-content/cmd/api/dto"
	"social-content/cmd/api/httpclient"
	"social-content/cmd/api/trace"
	"social-content/models"
	"social-content/search"
)

// statusOf maps a service error to an HTTP status.
func statusOf(err error) int {
	var modelErr *models.DomainModelError
	switch {
	case errors.Is(err, search.ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrContentNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrContentAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrContentNoPublishYet),
		errors.Is(err, models.ErrContentAlreadyPublished),
		errors.Is(err, models.ErrVideoStillProcessing):
		return http.StatusConflict
	case errors.As(err, &modelErr),
		errors.Is(err, models.ErrContentEmpty),
		errors.Is(err, models.ErrContentEmptyGroup),
		errors.Is(err, models.ErrInvalidResourceImage),
		errors.Is(err, models.ErrArticleRequiredCover),
		errors.Is(err, models.ErrInvalidScheduleTime),
		errors.Is(err, models.ErrLimitAttachedSeries),
		errors.Is(err, models.ErrTagSeriesInvalid),
		errors.Is(err, models.ErrMentionNotInGroups),
		errors.Is(err, models.ErrSeriesItemsMismatch),
		errors.Is(err, models.ErrUnsupportedContentType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, httpclient.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	_ = c.Error(err)

	body := dto.ErrorResponseDTO{Error: err.Error()}
	if status == http.StatusInternalServerError {
		body.Error = "internal_error"
		body.RequestID = trace.RequestID(c.Request.Context())
	}
	var invalid *models.TagSeriesInvalidError
	if errors.As(err, &invalid) {
		body.Fields = append(append(body.Fields, invalid.SeriesIDs...), invalid.TagIDs...)
	}
	c.AbortWithStatusJSON(status, body)
}

func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
}
