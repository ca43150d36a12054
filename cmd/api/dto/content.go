package dto

import (
	"time"

	"social-content/models"
	"social-content/services"
)

type MediaRequest struct {
	Images []string `json:"images"`
	Files  []string `json:"files"`
	Videos []string `json:"videos"`
}

type LinkPreviewRequest struct {
	URL         string `json:"url" binding:"required,url"`
	Domain      string `json:"domain"`
	Image       string `json:"image"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ContentRequest 는 게시글/아티클/시리즈 공통 편집 바디다.
// 보내지 않은 필드는 변경하지 않고, 빈 배열은 해당 필드를 비운다.
type ContentRequest struct {
	Content        *string             `json:"content"`
	Title          *string             `json:"title"`
	Summary        *string             `json:"summary"`
	Categories     []string            `json:"categories"`
	GroupIDs       []string            `json:"groupIds"`
	SeriesIDs      []string            `json:"series"`
	TagIDs         []string            `json:"tags"`
	MentionUserIDs []string            `json:"mentions"`
	Media          *MediaRequest       `json:"media"`
	CoverMediaID   *string             `json:"coverMediaId"`
	LinkPreview    *LinkPreviewRequest `json:"linkPreview"`
	Setting        *models.Setting     `json:"setting"`
}

func (r ContentRequest) Attributes() services.ContentAttributes {
	attrs := services.ContentAttributes{
		Content:        r.Content,
		Title:          r.Title,
		Summary:        r.Summary,
		Categories:     r.Categories,
		GroupIDs:       r.GroupIDs,
		SeriesIDs:      r.SeriesIDs,
		TagIDs:         r.TagIDs,
		MentionUserIDs: r.MentionUserIDs,
		CoverID:        r.CoverMediaID,
		Setting:        r.Setting,
	}
	if r.Media != nil {
		attrs.Media = &services.MediaInput{
			Images: r.Media.Images,
			Files:  r.Media.Files,
			Videos: r.Media.Videos,
		}
	}
	if r.LinkPreview != nil {
		attrs.LinkPreview = &services.LinkPreviewInput{
			URL:         r.LinkPreview.URL,
			Domain:      r.LinkPreview.Domain,
			Image:       r.LinkPreview.Image,
			Title:       r.LinkPreview.Title,
			Description: r.LinkPreview.Description,
		}
	}
	return attrs
}

type ScheduleRequest struct {
	ContentRequest
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

type SeriesItemsRequest struct {
	ItemIDs []string `json:"itemIds" binding:"required,min=1,dive,uuid"`
}

// VideoProcessedRequest 는 media-service 의 트랜스코딩 완료 콜백 바디다.
type VideoProcessedRequest struct {
	Video models.Video `json:"video"`
}

type ContentResponse struct {
	Data models.ContentState `json:"data"`
}

func NewContentResponse(c *models.Content) ContentResponse {
	return ContentResponse{Data: c.State()}
}

// CreateSeriesRequest 는 id 를 받으면 그 id 로 만든다. 재시도된 요청이 시리즈를 두 번 만들지 않게 한다.
type CreateSeriesRequest struct {
	ID string `json:"id" binding:"omitempty,uuid"`
	ContentRequest
}
