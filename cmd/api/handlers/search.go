package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"social-content/cmd/api/dto"
	"social-content/models"
	"social-content/search"
)

const maxSearchLimit = 100

type Searcher interface {
	Search(ctx context.Context, q search.Query) (search.SearchResult, error)
	CountContentsInCommunity(ctx context.Context, q search.CommunityCountQuery) ([]search.CommunityCount, error)
}

type SearchHandler struct {
	svc Searcher
}

func NewSearchHandler(svc Searcher) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search handles GET /search.
//
//	keyword, groupIds[], types[], tagIds[], tagNames[], excludeIds[], actors[],
//	itemIds[], topics[], startTime, endTime (RFC3339), limitSeries, limit, cursor
func (h *SearchHandler) Search(c *gin.Context) {
	q := search.Query{
		Keyword:      c.Query("keyword"),
		GroupIDs:     c.QueryArray("groupIds"),
		TagIDs:       c.QueryArray("tagIds"),
		TagNames:     c.QueryArray("tagNames"),
		ExcludeByIDs: c.QueryArray("excludeIds"),
		Actors:       c.QueryArray("actors"),
		ItemIDs:      c.QueryArray("itemIds"),
		Topics:       c.QueryArray("topics"),
		Cursor:       c.Query("cursor"),
	}
	for _, t := range c.QueryArray("types") {
		ct := models.ContentType(t)
		if !ct.Valid() {
			respondBindError(c, fmt.Errorf("unknown content type %q", t))
			return
		}
		q.ContentTypes = append(q.ContentTypes, ct)
	}

	var err error
	if q.StartTime, err = timeParam(c, "startTime"); err != nil {
		respondBindError(c, err)
		return
	}
	if q.EndTime, err = timeParam(c, "endTime"); err != nil {
		respondBindError(c, err)
		return
	}
	if v := c.Query("limitSeries"); v != "" {
		if q.IsLimitSeries, err = strconv.ParseBool(v); err != nil {
			respondBindError(c, fmt.Errorf("limitSeries: %w", err))
			return
		}
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSearchLimit {
			respondBindError(c, fmt.Errorf("limit must be between 1 and %d", maxSearchLimit))
			return
		}
		q.Size = n
	}

	res, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Data: res.Hits, Total: res.Total, Cursor: res.Cursor})
}

// CommunityCounts handles GET /search/communities.
func (h *SearchHandler) CommunityCounts(c *gin.Context) {
	q := search.CommunityCountQuery{RootGroupIDs: c.QueryArray("rootGroupIds")}
	var err error
	if q.StartTime, err = timeParam(c, "startTime"); err != nil {
		respondBindError(c, err)
		return
	}
	if q.EndTime, err = timeParam(c, "endTime"); err != nil {
		respondBindError(c, err)
		return
	}

	counts, err := h.svc.CountContentsInCommunity(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	if counts == nil {
		counts = []search.CommunityCount{}
	}
	c.JSON(http.StatusOK, dto.CommunityCountResponse{Data: counts})
}

func timeParam(c *gin.Context, name string) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}
