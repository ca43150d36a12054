package search

import (
	"time"

	"social-content/models"
)

// Document is the search representation of a content.
type Document struct {
	ID             string              `json:"id"`
	Type           models.ContentType  `json:"type"`
	CreatedBy      string              `json:"createdBy"`
	Title          string              `json:"title,omitempty"`
	Summary        string              `json:"summary,omitempty"`
	Content        string              `json:"content,omitempty"`
	Categories     []string            `json:"categories,omitempty"`
	Tags           []models.Tag        `json:"tags,omitempty"`
	Media          *models.Media       `json:"media,omitempty"`
	CoverMedia     *models.Image       `json:"coverMedia,omitempty"`
	GroupIDs       []string            `json:"groupIds"`
	CommunityIDs   []string            `json:"communityIds"`
	SeriesIDs      []string            `json:"seriesIds,omitempty"`
	Items          []models.SeriesItem `json:"items,omitempty"`
	MentionUserIDs []string            `json:"mentionUserIds,omitempty"`
	IsHidden       bool                `json:"isHidden"`
	Lang           string              `json:"lang,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	PublishedAt    *time.Time          `json:"publishedAt,omitempty"`
}

// DocumentFromState maps a stored content to its search document. Lang is
// the language recorded in the primary store.
func DocumentFromState(s models.ContentState) Document {
	doc := Document{
		ID:             s.ID,
		Type:           s.Type,
		CreatedBy:      s.CreatedBy,
		Title:          s.Title,
		Summary:        s.Summary,
		Content:        s.Content,
		Categories:     s.Categories,
		Tags:           s.Tags,
		CoverMedia:     s.Cover,
		GroupIDs:       s.GroupIDs,
		CommunityIDs:   s.CommunityIDs,
		SeriesIDs:      s.SeriesIDs,
		MentionUserIDs: s.MentionUserIDs,
		IsHidden:       s.IsHidden,
		Lang:           s.Lang,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		PublishedAt:    s.PublishedAt,
	}
	if !s.Media.IsEmpty() {
		m := s.Media
		doc.Media = &m
	}
	if s.Type == models.ContentTypeSeries {
		doc.Items = s.Items
	}
	return doc
}

// Ref addresses an indexed document by id and recorded language.
type Ref struct {
	ID   string
	Lang string
}

// AttributePatch is a partial document update.
type AttributePatch struct {
	Ref
	Fields map[string]any
}
