package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-content/cmd/api/auth"
	"social-content/cmd/api/dto"
	"social-content/models"
	"social-content/services"
)

type PostService interface {
	Schedule(ctx context.Context, in services.SchedulePostInput) (*models.Content, error)
	Publish(ctx context.Context, in services.PublishPostInput) (*models.Content, error)
	Update(ctx context.Context, in services.UpdatePostInput) (*models.Content, error)
	AutoSave(ctx context.Context, in services.UpdatePostInput) error
	Delete(ctx context.Context, id, actorID string) error
	Hide(ctx context.Context, id, actorID string) error
	MarkVideoProcessed(ctx context.Context, in services.VideoProcessedInput) (*models.Content, error)
}

type PostHandler struct {
	svc PostService
}

func NewPostHandler(svc PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// Publish handles POST /posts/:id/publish.
func (h *PostHandler) Publish(c *gin.Context) {
	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	post, err := h.svc.Publish(c.Request.Context(), services.PublishPostInput{
		ID:         c.Param("id"),
		ActorID:    auth.ActorID(c),
		Attributes: req.Attributes(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(post))
}

// Schedule handles POST /posts/:id/schedule.
func (h *PostHandler) Schedule(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	post, err := h.svc.Schedule(c.Request.Context(), services.SchedulePostInput{
		ID:          c.Param("id"),
		ActorID:     auth.ActorID(c),
		ScheduledAt: req.ScheduledAt,
		Attributes:  req.Attributes(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(post))
}

// Update handles PUT /posts/:id.
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	post, err := h.svc.Update(c.Request.Context(), services.UpdatePostInput{
		ID:         c.Param("id"),
		ActorID:    auth.ActorID(c),
		Attributes: req.Attributes(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(post))
}

// AutoSave handles PUT /posts/:id/autosave.
func (h *PostHandler) AutoSave(c *gin.Context) {
	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	err := h.svc.AutoSave(c.Request.Context(), services.UpdatePostInput{
		ID:         c.Param("id"),
		ActorID:    auth.ActorID(c),
		Attributes: req.Attributes(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), auth.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) Hide(c *gin.Context) {
	if err := h.svc.Hide(c.Request.Context(), c.Param("id"), auth.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VideoProcessed is the media service callback for a finished transcode.
func (h *PostHandler) VideoProcessed(c *gin.Context) {
	var req dto.VideoProcessedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	post, err := h.svc.MarkVideoProcessed(c.Request.Context(), services.VideoProcessedInput{
		ContentID: c.Param("id"),
		Video:     req.Video,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(post))
}
