package models

import (
	"slices"
	"time"
)

type ContentType string

const (
	ContentTypePost    ContentType = "POST"
	ContentTypeArticle ContentType = "ARTICLE"
	ContentTypeSeries  ContentType = "SERIES"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypePost, ContentTypeArticle, ContentTypeSeries:
		return true
	}
	return false
}

type ContentStatus string

const (
	StatusDraft           ContentStatus = "DRAFT"
	StatusWaitingSchedule ContentStatus = "WAITING_SCHEDULE"
	StatusScheduleFailed  ContentStatus = "SCHEDULE_FAILED"
	StatusProcessing      ContentStatus = "PROCESSING"
	StatusPublished       ContentStatus = "PUBLISHED"
)

// Setting holds the per-content interaction switches.
type Setting struct {
	CanComment         bool       `bson:"can_comment" json:"canComment"`
	CanReact           bool       `bson:"can_react" json:"canReact"`
	IsImportant        bool       `bson:"is_important" json:"isImportant"`
	ImportantExpiredAt *time.Time `bson:"important_expired_at,omitempty" json:"importantExpiredAt,omitempty"`
}

func (s Setting) Equal(other Setting) bool {
	return s.CanComment == other.CanComment &&
		s.CanReact == other.CanReact &&
		s.IsImportant == other.IsImportant &&
		timePtrEqual(s.ImportantExpiredAt, other.ImportantExpiredAt)
}

// SeriesItem is a member of a series. Index is the display position.
type SeriesItem struct {
	ID    string `bson:"id" json:"id"`
	Index int    `bson:"index" json:"index"`
}

// ContentState is the plain value behind a Content aggregate. It is what gets
// persisted, carried on events and compared for dirty checking.
// Collection: contents
type ContentState struct {
	ID             string        `bson:"_id" json:"id"`
	Type           ContentType   `bson:"type" json:"type"`
	CreatedBy      string        `bson:"created_by" json:"createdBy"`
	UpdatedBy      string        `bson:"updated_by" json:"updatedBy"`
	Status         ContentStatus `bson:"status" json:"status"`
	IsHidden       bool          `bson:"is_hidden" json:"isHidden"`
	Privacy        Privacy       `bson:"privacy" json:"privacy"`
	GroupIDs       []string      `bson:"group_ids" json:"groupIds"`
	CommunityIDs   []string      `bson:"community_ids" json:"communityIds"`
	Content        string        `bson:"content" json:"content"`
	Title          string        `bson:"title,omitempty" json:"title,omitempty"`
	Summary        string        `bson:"summary,omitempty" json:"summary,omitempty"`
	Categories     []string      `bson:"categories,omitempty" json:"categories,omitempty"`
	Tags           []Tag         `bson:"tags" json:"tags"`
	Media          Media         `bson:"media" json:"media"`
	Cover          *Image        `bson:"cover,omitempty" json:"cover,omitempty"`
	LinkPreview    *LinkPreview  `bson:"link_preview,omitempty" json:"linkPreview,omitempty"`
	SeriesIDs      []string      `bson:"series_ids" json:"seriesIds"`
	Items          []SeriesItem  `bson:"items,omitempty" json:"items,omitempty"`
	MentionUserIDs []string      `bson:"mention_user_ids" json:"mentionUserIds"`
	Setting        Setting       `bson:"setting" json:"setting"`
	Lang           string        `bson:"lang,omitempty" json:"lang,omitempty"`
	TotalUsersSeen int           `bson:"total_users_seen" json:"totalUsersSeen"`
	CreatedAt      time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updatedAt"`
	PublishedAt    *time.Time    `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	ScheduledAt    *time.Time    `bson:"scheduled_at,omitempty" json:"scheduledAt,omitempty"`
}

// Equal reports structural equality field by field.
func (s ContentState) Equal(o ContentState) bool {
	return s.ID == o.ID &&
		s.Type == o.Type &&
		s.CreatedBy == o.CreatedBy &&
		s.UpdatedBy == o.UpdatedBy &&
		s.Status == o.Status &&
		s.IsHidden == o.IsHidden &&
		s.Privacy == o.Privacy &&
		slices.Equal(s.GroupIDs, o.GroupIDs) &&
		slices.Equal(s.CommunityIDs, o.CommunityIDs) &&
		s.Content == o.Content &&
		s.Title == o.Title &&
		s.Summary == o.Summary &&
		slices.Equal(s.Categories, o.Categories) &&
		slices.Equal(s.Tags, o.Tags) &&
		s.Media.Equal(o.Media) &&
		imagePtrEqual(s.Cover, o.Cover) &&
		linkPreviewPtrEqual(s.LinkPreview, o.LinkPreview) &&
		slices.Equal(s.SeriesIDs, o.SeriesIDs) &&
		slices.Equal(s.Items, o.Items) &&
		slices.Equal(s.MentionUserIDs, o.MentionUserIDs) &&
		s.Setting.Equal(o.Setting) &&
		s.Lang == o.Lang &&
		s.TotalUsersSeen == o.TotalUsersSeen &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		s.UpdatedAt.Equal(o.UpdatedAt) &&
		timePtrEqual(s.PublishedAt, o.PublishedAt) &&
		timePtrEqual(s.ScheduledAt, o.ScheduledAt)
}

// Clone returns a deep copy so that the copy shares no slices or pointers
// with the receiver.
func (s ContentState) Clone() ContentState {
	out := s
	out.GroupIDs = slices.Clone(s.GroupIDs)
	out.CommunityIDs = slices.Clone(s.CommunityIDs)
	out.Categories = slices.Clone(s.Categories)
	out.Tags = slices.Clone(s.Tags)
	out.Media = s.Media.clone()
	out.SeriesIDs = slices.Clone(s.SeriesIDs)
	out.Items = slices.Clone(s.Items)
	out.MentionUserIDs = slices.Clone(s.MentionUserIDs)
	if s.Cover != nil {
		c := *s.Cover
		out.Cover = &c
	}
	if s.LinkPreview != nil {
		lp := *s.LinkPreview
		out.LinkPreview = &lp
	}
	out.Setting.ImportantExpiredAt = cloneTime(s.Setting.ImportantExpiredAt)
	out.PublishedAt = cloneTime(s.PublishedAt)
	out.ScheduledAt = cloneTime(s.ScheduledAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func imagePtrEqual(a, b *Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func linkPreviewPtrEqual(a, b *LinkPreview) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.SameMetadata(*b)
}
