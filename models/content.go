package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LimitAttachedSeries is the maximum number of series a post or article may
// belong to.
const LimitAttachedSeries = 10

// DomainEvent is an event raised on an aggregate and flushed by the caller
// after a successful persist.
type DomainEvent interface {
	EventName() string
}

// Content is the Post/Article/Series aggregate. It keeps the state loaded
// from the store as an immutable snapshot and compares against it to decide
// whether anything needs to be written.
type Content struct {
	state    ContentState
	snapshot ContentState
	events   []DomainEvent
}

// UpdateAttributes carries a partial update. Nil fields are left untouched.
type UpdateAttributes struct {
	Content        *string
	Title          *string
	Summary        *string
	Categories     []string
	GroupIDs       []string
	SeriesIDs      []string
	MentionUserIDs []string
}

// NewPost returns a draft post owned by createdBy.
func NewPost(id, createdBy string, now time.Time) (*Content, error) {
	return newContent(ContentTypePost, id, createdBy, now)
}

// NewArticle returns a draft article owned by createdBy.
func NewArticle(id, createdBy string, now time.Time) (*Content, error) {
	return newContent(ContentTypeArticle, id, createdBy, now)
}

// NewSeries returns a draft series owned by createdBy.
func NewSeries(id, createdBy string, now time.Time) (*Content, error) {
	return newContent(ContentTypeSeries, id, createdBy, now)
}

func newContent(t ContentType, id, createdBy string, now time.Time) (*Content, error) {
	return LoadContent(ContentState{
		ID:        id,
		Type:      t,
		CreatedBy: createdBy,
		UpdatedBy: createdBy,
		Status:    StatusDraft,
		Privacy:   PrivacyOpen,
		Setting:   Setting{CanComment: true, CanReact: true},
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// LoadContent rebuilds an aggregate from stored state and takes the
// dirty-check snapshot.
func LoadContent(state ContentState) (*Content, error) {
	if err := validateState(state); err != nil {
		return nil, err
	}
	c := &Content{state: state.Clone()}
	c.snapshot = c.state.Clone()
	return c, nil
}

func validateState(s ContentState) error {
	if !s.Type.Valid() {
		return &DomainModelError{Field: "type", Value: string(s.Type)}
	}
	if err := validateUUID("id", s.ID); err != nil {
		return err
	}
	if err := validateUUID("createdBy", s.CreatedBy); err != nil {
		return err
	}
	if s.UpdatedBy != "" {
		if err := validateUUID("updatedBy", s.UpdatedBy); err != nil {
			return err
		}
	}
	if err := validateUUIDs("groupIds", s.GroupIDs); err != nil {
		return err
	}
	if err := validateUUIDs("seriesIds", s.SeriesIDs); err != nil {
		return err
	}
	for _, item := range s.Items {
		if err := validateUUID("items", item.ID); err != nil {
			return err
		}
	}
	return nil
}

func validateUUID(field, v string) error {
	if _, err := uuid.Parse(v); err != nil {
		return &DomainModelError{Field: field, Value: v}
	}
	return nil
}

func validateUUIDs(field string, values []string) error {
	for _, v := range values {
		if err := validateUUID(field, v); err != nil {
			return err
		}
	}
	return nil
}

// Accessors return copies. Mutate through the setters below.
func (c *Content) ID() string                { return c.state.ID }
func (c *Content) Type() ContentType         { return c.state.Type }
func (c *Content) CreatedBy() string         { return c.state.CreatedBy }
func (c *Content) UpdatedBy() string         { return c.state.UpdatedBy }
func (c *Content) Status() ContentStatus     { return c.state.Status }
func (c *Content) Privacy() Privacy          { return c.state.Privacy }
func (c *Content) GroupIDs() []string        { return slices.Clone(c.state.GroupIDs) }
func (c *Content) CommunityIDs() []string    { return slices.Clone(c.state.CommunityIDs) }
func (c *Content) Body() string              { return c.state.Content }
func (c *Content) Title() string             { return c.state.Title }
func (c *Content) Summary() string           { return c.state.Summary }
func (c *Content) Tags() []Tag               { return slices.Clone(c.state.Tags) }
func (c *Content) Media() Media              { return c.state.Media.clone() }
func (c *Content) SeriesIDs() []string       { return slices.Clone(c.state.SeriesIDs) }
func (c *Content) MentionUserIDs() []string  { return slices.Clone(c.state.MentionUserIDs) }
func (c *Content) Setting() Setting          { return c.state.Setting }
func (c *Content) Lang() string              { return c.state.Lang }
func (c *Content) CreatedAt() time.Time      { return c.state.CreatedAt }
func (c *Content) UpdatedAt() time.Time      { return c.state.UpdatedAt }
func (c *Content) PublishedAt() *time.Time   { return cloneTime(c.state.PublishedAt) }
func (c *Content) ScheduledAt() *time.Time   { return cloneTime(c.state.ScheduledAt) }
func (c *Content) TotalUsersSeen() int       { return c.state.TotalUsersSeen }
func (c *Content) IsHidden() bool            { return c.state.IsHidden }
func (c *Content) IsImportant() bool         { return c.state.Setting.IsImportant }

func (c *Content) IsOwner(userID string) bool { return c.state.CreatedBy == userID }

func (c *Content) LinkPreview() *LinkPreview {
	if c.state.LinkPreview == nil {
		return nil
	}
	lp := *c.state.LinkPreview
	return &lp
}

func (c *Content) Cover() *Image {
	if c.state.Cover == nil {
		return nil
	}
	img := *c.state.Cover
	return &img
}

// State returns a deep copy of the current state.
func (c *Content) State() ContentState { return c.state.Clone() }

// Snapshot returns the state as of the last load or commit.
func (c *Content) Snapshot() ContentState { return c.snapshot.Clone() }

func (c *Content) IsPost() bool    { return c.state.Type == ContentTypePost }
func (c *Content) IsArticle() bool { return c.state.Type == ContentTypeArticle }
func (c *Content) IsSeries() bool  { return c.state.Type == ContentTypeSeries }

func (c *Content) IsDraft() bool           { return c.state.Status == StatusDraft }
func (c *Content) IsPublished() bool       { return c.state.Status == StatusPublished }
func (c *Content) IsWaitingSchedule() bool { return c.state.Status == StatusWaitingSchedule }
func (c *Content) IsScheduleFailed() bool  { return c.state.Status == StatusScheduleFailed }
func (c *Content) IsProcessing() bool      { return c.state.Status == StatusProcessing }

// IsNotUsersSeen reports whether nobody, including the author, has seen the
// content yet.
func (c *Content) IsNotUsersSeen() bool { return c.state.TotalUsersSeen == 0 }

// IsEmptyContent is true for a post with neither text nor media.
func (c *Content) IsEmptyContent() bool {
	return strings.TrimSpace(c.state.Content) == "" && c.state.Media.IsEmpty()
}

func (c *Content) HasVideoProcessing() bool {
	for _, v := range c.state.Media.Videos {
		if v.IsProcessing() {
			return true
		}
	}
	return false
}

func (c *Content) IsOverLimitedToAttachSeries() bool {
	return len(c.state.SeriesIDs) > LimitAttachedSeries
}

// Update merges the provided attributes. updatedBy always becomes actorID.
func (c *Content) Update(attrs UpdateAttributes, actorID string) error {
	if err := validateUUID("updatedBy", actorID); err != nil {
		return err
	}
	if attrs.GroupIDs != nil {
		if err := validateUUIDs("groupIds", attrs.GroupIDs); err != nil {
			return err
		}
	}
	if attrs.SeriesIDs != nil {
		if err := validateUUIDs("seriesIds", attrs.SeriesIDs); err != nil {
			return err
		}
	}

	if attrs.Content != nil {
		c.state.Content = *attrs.Content
	}
	if attrs.Title != nil {
		c.state.Title = *attrs.Title
	}
	if attrs.Summary != nil {
		c.state.Summary = *attrs.Summary
	}
	if attrs.Categories != nil {
		c.state.Categories = slices.Clone(attrs.Categories)
	}
	if attrs.GroupIDs != nil {
		c.state.GroupIDs = slices.Clone(attrs.GroupIDs)
	}
	if attrs.SeriesIDs != nil {
		c.state.SeriesIDs = slices.Clone(attrs.SeriesIDs)
	}
	if attrs.MentionUserIDs != nil {
		c.state.MentionUserIDs = slices.Clone(attrs.MentionUserIDs)
	}
	c.state.UpdatedBy = actorID
	return nil
}

// SetPrivacyFromGroups picks the most restrictive privacy among the
// audience groups. An empty audience keeps the current value.
func (c *Content) SetPrivacyFromGroups(groups []Group) {
	if len(groups) == 0 {
		return
	}
	privacy := groups[0].Privacy
	for _, g := range groups[1:] {
		if g.Privacy.rank() > privacy.rank() {
			privacy = g.Privacy
		}
	}
	if privacy.rank() < 0 {
		return
	}
	c.state.Privacy = privacy
}

func (c *Content) SetCommunity(communityIDs []string) {
	c.state.CommunityIDs = uniqueStrings(communityIDs)
}

func (c *Content) SetTags(tags []Tag) {
	c.state.Tags = slices.Clone(tags)
}

func (c *Content) SetMedia(m Media) {
	c.state.Media = m.clone()
}

func (c *Content) SetCover(img *Image) {
	if img == nil {
		c.state.Cover = nil
		return
	}
	v := *img
	c.state.Cover = &v
}

func (c *Content) SetLinkPreview(lp *LinkPreview) {
	if lp == nil {
		c.state.LinkPreview = nil
		return
	}
	v := *lp
	c.state.LinkPreview = &v
}

func (c *Content) SetSetting(s Setting) {
	s.ImportantExpiredAt = cloneTime(s.ImportantExpiredAt)
	c.state.Setting = s
}

// ReplaceVideo swaps a single attached video, typically after the media
// service reports a transcoding result.
func (c *Content) ReplaceVideo(v Video) bool {
	for i, cur := range c.state.Media.Videos {
		if cur.ID == v.ID {
			videos := slices.Clone(c.state.Media.Videos)
			videos[i] = v
			c.state.Media.Videos = videos
			return true
		}
	}
	return false
}

// Touch bumps updatedAt. Call it only once IsChanged is known to be true.
func (c *Content) Touch(now time.Time) { c.state.UpdatedAt = now }

func (c *Content) IncreaseTotalSeen() { c.state.TotalUsersSeen++ }

func (c *Content) Hide() { c.state.IsHidden = true }

// SetWaitingSchedule is ignored once the content is published.
func (c *Content) SetWaitingSchedule(at time.Time) {
	if c.IsPublished() {
		return
	}
	c.state.ScheduledAt = &at
	c.state.Status = StatusWaitingSchedule
}

// SetPublish moves the content to PUBLISHED. publishedAt is written once and
// survives later PROCESSING round trips.
func (c *Content) SetPublish(now time.Time) {
	if c.state.PublishedAt == nil {
		c.state.PublishedAt = &now
	}
	c.state.Status = StatusPublished
}

func (c *Content) SetProcessing()     { c.state.Status = StatusProcessing }
func (c *Content) SetScheduleFailed() { c.state.Status = StatusScheduleFailed }
func (c *Content) SetDraft()          { c.state.Status = StatusDraft }

// IsChanged compares the current state to the snapshot.
func (c *Content) IsChanged() bool {
	return !c.state.Equal(c.snapshot)
}

func (c *Content) Raise(evt DomainEvent) {
	c.events = append(c.events, evt)
}

func (c *Content) PendingEvents() []DomainEvent {
	return slices.Clone(c.events)
}

// Commit re-baselines the snapshot and drops deferred events.
func (c *Content) Commit() {
	c.snapshot = c.state.Clone()
	c.events = nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
