package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-content/cmd/api/dto"
	"social-content/models"
)

const defaultDeadLetterLimit = 50

type DeadLetterLister interface {
	ListByContentID(ctx context.Context, contentID string, limit int64) ([]models.FailedProcessLog, error)
}

// DeadLetterHandler exposes failed search writes for manual replay.
type DeadLetterHandler struct {
	store DeadLetterLister
}

func NewDeadLetterHandler(store DeadLetterLister) *DeadLetterHandler {
	return &DeadLetterHandler{store: store}
}

// List handles GET /internal/v1/failed-process-logs?contentId=&limit=
func (h *DeadLetterHandler) List(c *gin.Context) {
	contentID := c.Query("contentId")
	if contentID == "" {
		respondBindError(c, fmt.Errorf("contentId is required"))
		return
	}
	limit := int64(defaultDeadLetterLimit)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > maxSearchLimit {
			respondBindError(c, fmt.Errorf("limit must be between 1 and %d", maxSearchLimit))
			return
		}
		limit = n
	}

	records, err := h.store.ListByContentID(c.Request.Context(), contentID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []models.FailedProcessLog{}
	}
	c.JSON(http.StatusOK, dto.FailedProcessLogsResponse{Data: records})
}
