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

type SeriesService interface {
	Create(ctx context.Context, in services.SeriesInput) (*models.Content, error)
	Update(ctx context.Context, in services.SeriesInput) (*models.Content, error)
	Delete(ctx context.Context, id, actorID string) error
	AddItems(ctx context.Context, in services.SeriesItemsInput) (*models.Content, error)
	RemoveItems(ctx context.Context, in services.SeriesItemsInput) (*models.Content, error)
	ReorderItems(ctx context.Context, in services.SeriesItemsInput) (*models.Content, error)
	Hide(ctx context.Context, id, actorID string) error
}

type SeriesHandler struct {
	svc SeriesService
}

func NewSeriesHandler(svc SeriesService) *SeriesHandler {
	return &SeriesHandler{svc: svc}
}

func (h *SeriesHandler) Create(c *gin.Context) {
	var req dto.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	series, err := h.svc.Create(c.Request.Context(), services.SeriesInput{
		ID:         req.ID,
		ActorID:    auth.ActorID(c),
		Attributes: req.Attributes(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewContentResponse(series))
}

func (h *SeriesHandler) Update(c *gin.Context) {
	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	series, err := h.svc.Update(c.Request.Context(), services.SeriesInput{
		ID:         c.Param("id"),
		ActorID:    auth.ActorID(c),
		Attributes: req.Attributes(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(series))
}

func (h *SeriesHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), auth.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SeriesHandler) Hide(c *gin.Context) {
	if err := h.svc.Hide(c.Request.Context(), c.Param("id"), auth.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// items wraps the three member operations, which share a request shape.
func (h *SeriesHandler) items(op func(context.Context, services.SeriesItemsInput) (*models.Content, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.SeriesItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		series, err := op(c.Request.Context(), services.SeriesItemsInput{
			SeriesID: c.Param("id"),
			ActorID:  auth.ActorID(c),
			ItemIDs:  req.ItemIDs,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewContentResponse(series))
	}
}

func (h *SeriesHandler) AddItems() gin.HandlerFunc     { return h.items(h.svc.AddItems) }
func (h *SeriesHandler) RemoveItems() gin.HandlerFunc  { return h.items(h.svc.RemoveItems) }
func (h *SeriesHandler) ReorderItems() gin.HandlerFunc { return h.items(h.svc.ReorderItems) }
