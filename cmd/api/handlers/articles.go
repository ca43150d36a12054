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

type ArticleService interface {
	Schedule(ctx context.Context, in services.ScheduleArticleInput) (*models.Content, error)
	Publish(ctx context.Context, in services.ArticleInput) (*models.Content, error)
	Update(ctx context.Context, in services.ArticleInput) (*models.Content, error)
	AutoSave(ctx context.Context, in services.ArticleInput) error
	Delete(ctx context.Context, id, actorID string) error
	Hide(ctx context.Context, id, actorID string) error
}

type ArticleHandler struct {
	svc ArticleService
}

func NewArticleHandler(svc ArticleService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

func (h *ArticleHandler) input(c *gin.Context) (services.ArticleInput, bool) {
	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return services.ArticleInput{}, false
	}
	return services.ArticleInput{
		ID:         c.Param("id"),
		ActorID:    auth.ActorID(c),
		Attributes: req.Attributes(),
	}, true
}

func (h *ArticleHandler) Publish(c *gin.Context) {
	in, ok := h.input(c)
	if !ok {
		return
	}
	article, err := h.svc.Publish(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(article))
}

func (h *ArticleHandler) Schedule(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	article, err := h.svc.Schedule(c.Request.Context(), services.ScheduleArticleInput{
		ID:          c.Param("id"),
		ActorID:     auth.ActorID(c),
		ScheduledAt: req.ScheduledAt,
		Attributes:  req.Attributes(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(article))
}

func (h *ArticleHandler) Update(c *gin.Context) {
	in, ok := h.input(c)
	if !ok {
		return
	}
	article, err := h.svc.Update(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(article))
}

func (h *ArticleHandler) AutoSave(c *gin.Context) {
	in, ok := h.input(c)
	if !ok {
		return
	}
	if err := h.svc.AutoSave(c.Request.Context(), in); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), auth.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) Hide(c *gin.Context) {
	if err := h.svc.Hide(c.Request.Context(), c.Param("id"), auth.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
