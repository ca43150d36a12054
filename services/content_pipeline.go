package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"social-content/logger"
	"social-content/models"
)

// ContentAttributes is the editable part of a content. Nil fields are left
// untouched; an empty non-nil slice clears the field.
type ContentAttributes struct {
	Content        *string
	Title          *string
	Summary        *string
	Categories     []string
	GroupIDs       []string
	SeriesIDs      []string
	TagIDs         []string
	MentionUserIDs []string
	Media          *MediaInput
	CoverID        *string
	LinkPreview    *LinkPreviewInput
	Setting        *models.Setting
}

// Deps groups the collaborators shared by the content services.
type Deps struct {
	Contents     ContentRepository
	Media        MediaService
	Groups       GroupService
	Users        UserService
	Tags         TagRepository
	LinkPreviews LinkPreviewRepository
	Markers      ContentMarkerRepository
	Authorizer   Authorizer
	Publisher    EventPublisher
	Logger       logger.Logger
	Reporter     logger.Reporter

	MinScheduleLead time.Duration
	Now             func() time.Time
}

// contentPipeline is the single path through which tags, media, link
// preview and audience are changed on an aggregate.
type contentPipeline struct {
	repo         ContentRepository
	media        *MediaResolver
	linkPreviews *LinkPreviewService
	groups       GroupService
	users        UserService
	tags         TagRepository
	markers      ContentMarkerRepository
	authz        Authorizer
	publisher    EventPublisher
	lg           logger.Logger
	reporter     logger.Reporter

	minScheduleLead time.Duration
	now             func() time.Time
}

func newContentPipeline(d Deps) *contentPipeline {
	lg := d.Logger
	if lg == nil {
		lg = logger.Nop()
	}
	reporter := d.Reporter
	if reporter == nil {
		reporter = logger.NewReporter(lg)
	}
	authz := d.Authorizer
	if authz == nil {
		authz = AllowAll{}
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &contentPipeline{
		repo:            d.Contents,
		media:           NewMediaResolver(d.Media),
		linkPreviews:    NewLinkPreviewService(d.LinkPreviews, lg),
		groups:          d.Groups,
		users:           d.Users,
		tags:            d.Tags,
		markers:         d.Markers,
		authz:           authz,
		publisher:       d.Publisher,
		lg:              lg,
		reporter:        reporter,
		minScheduleLead: d.MinScheduleLead,
		now:             now,
	}
}

// load returns ErrContentNotFound for missing, hidden or wrongly typed content.
func (p *contentPipeline) load(ctx context.Context, id string, t models.ContentType) (*models.Content, error) {
	c, err := p.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrContentNotFound) {
			return nil, models.ErrContentNotFound
		}
		return nil, fmt.Errorf("load content %s: %w", id, err)
	}
	if c.IsHidden() || c.Type() != t {
		return nil, models.ErrContentNotFound
	}
	return c, nil
}

// applyContentAttributes resolves attachments and applies attrs to c. It
// returns the audience groups for validation. Nothing is applied when an
// attachment cannot be resolved.
func (p *contentPipeline) applyContentAttributes(ctx context.Context, c *models.Content, attrs ContentAttributes, actorID string) ([]models.Group, error) {
	var (
		tags  []models.Tag
		media models.Media
		cover *models.Image
		lp    *models.LinkPreview
	)

	if attrs.TagIDs != nil {
		found, err := p.tags.FindByIDs(ctx, attrs.TagIDs)
		if err != nil {
			return nil, fmt.Errorf("find tags: %w", err)
		}
		tags = orderTags(found, attrs.TagIDs)
	}

	if attrs.Media != nil {
		resolved, err := p.media.Resolve(ctx, c, *attrs.Media)
		if err != nil {
			return nil, err
		}
		media = resolved
	}

	if attrs.CoverID != nil {
		resolved, err := p.media.ResolveCover(ctx, c, *attrs.CoverID)
		if err != nil {
			return nil, err
		}
		cover = resolved
	}

	linkChanged := false
	if attrs.LinkPreview != nil {
		current := c.LinkPreview()
		if current == nil || current.URL != attrs.LinkPreview.URL {
			resolved, err := p.linkPreviews.FindOrUpsert(ctx, attrs.LinkPreview)
			if err != nil {
				return nil, err
			}
			lp = resolved
			linkChanged = true
		}
	}

	groupIDs := attrs.GroupIDs
	if groupIDs == nil {
		groupIDs = c.GroupIDs()
	}
	var groups []models.Group
	if len(groupIDs) > 0 {
		found, err := p.groups.FindGroupsByIDs(ctx, groupIDs)
		if err != nil {
			return nil, fmt.Errorf("find groups: %w", err)
		}
		groups = found
	}

	if err := c.Update(models.UpdateAttributes{
		Content:        attrs.Content,
		Title:          attrs.Title,
		Summary:        attrs.Summary,
		Categories:     attrs.Categories,
		GroupIDs:       attrs.GroupIDs,
		SeriesIDs:      attrs.SeriesIDs,
		MentionUserIDs: attrs.MentionUserIDs,
	}, actorID); err != nil {
		return nil, err
	}

	if attrs.TagIDs != nil {
		c.SetTags(tags)
	}
	if attrs.Media != nil {
		c.SetMedia(media)
	}
	if attrs.CoverID != nil {
		c.SetCover(cover)
	}
	if linkChanged {
		c.SetLinkPreview(lp)
	}
	if attrs.Setting != nil {
		c.SetSetting(*attrs.Setting)
	}

	rootIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		rootIDs = append(rootIDs, g.RootGroupID)
	}
	c.SetCommunity(rootIDs)
	c.SetPrivacyFromGroups(groups)
	return groups, nil
}

// validateContent checks a content that is about to become visible.
func (p *contentPipeline) validateContent(ctx context.Context, c *models.Content, groups []models.Group, actorID string) error {
	if len(c.GroupIDs()) == 0 {
		return models.ErrContentEmptyGroup
	}
	if c.IsPost() && c.IsEmptyContent() {
		return models.ErrContentEmpty
	}
	if c.IsArticle() && c.Cover() == nil {
		return models.ErrArticleRequiredCover
	}
	if err := p.authz.CanPublish(ctx, actorID, groups); err != nil {
		return err
	}
	if err := p.validateMentions(ctx, c); err != nil {
		return err
	}
	if c.IsOverLimitedToAttachSeries() {
		return models.ErrLimitAttachedSeries
	}
	return p.validateSeriesAndTags(ctx, c, groups)
}

func (p *contentPipeline) validateMentions(ctx context.Context, c *models.Content) error {
	mentions := c.MentionUserIDs()
	if len(mentions) == 0 {
		return nil
	}
	users, err := p.users.FindUsersByIDs(ctx, mentions)
	if err != nil {
		return fmt.Errorf("find mentioned users: %w", err)
	}
	audience := c.GroupIDs()
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range mentions {
		u, ok := byID[id]
		if !ok || !slices.ContainsFunc(u.GroupIDs, func(g string) bool { return slices.Contains(audience, g) }) {
			return models.ErrMentionNotInGroups
		}
	}
	return nil
}

func (p *contentPipeline) validateSeriesAndTags(ctx context.Context, c *models.Content, groups []models.Group) error {
	audience := c.GroupIDs()
	roots := make([]string, 0, len(groups))
	for _, g := range groups {
		roots = append(roots, g.RootGroupID)
	}

	invalid := &models.TagSeriesInvalidError{}
	if seriesIDs := c.SeriesIDs(); len(seriesIDs) > 0 {
		series, err := p.repo.FindByIDs(ctx, seriesIDs)
		if err != nil {
			return fmt.Errorf("find series: %w", err)
		}
		found := make(map[string]*models.Content, len(series))
		for _, s := range series {
			found[s.ID()] = s
		}
		for _, id := range seriesIDs {
			s, ok := found[id]
			if !ok || !s.IsSeries() || !slices.ContainsFunc(s.GroupIDs(), func(g string) bool { return slices.Contains(audience, g) }) {
				invalid.SeriesIDs = append(invalid.SeriesIDs, id)
			}
		}
	}
	for _, t := range c.Tags() {
		if !slices.Contains(roots, t.GroupID) {
			invalid.TagIDs = append(invalid.TagIDs, t.ID)
		}
	}
	if len(invalid.SeriesIDs) > 0 || len(invalid.TagIDs) > 0 {
		return invalid
	}
	return nil
}

// validateScheduleTime requires at to be at least minScheduleLead ahead.
func (p *contentPipeline) validateScheduleTime(at time.Time) error {
	if !at.After(p.now().Add(p.minScheduleLead)) {
		return models.ErrInvalidScheduleTime
	}
	return nil
}

// persist writes c when it changed and flushes its events. It reports
// whether a write happened.
func (p *contentPipeline) persist(ctx context.Context, c *models.Content, raise func(before models.ContentState)) (bool, error) {
	if !c.IsChanged() {
		return false, nil
	}
	c.Touch(p.now())
	if err := p.repo.Update(ctx, c); err != nil {
		return false, fmt.Errorf("update content %s: %w", c.ID(), err)
	}
	if raise != nil {
		raise(c.Snapshot())
	}
	p.flush(ctx, c)
	return true, nil
}

// flush hands pending events to the publisher and re-baselines c. Publish
// failures are logged and reported; the write already happened.
func (p *contentPipeline) flush(ctx context.Context, c *models.Content) {
	evts := c.PendingEvents()
	c.Commit()
	if p.publisher == nil || len(evts) == 0 {
		return
	}
	if err := p.publisher.Publish(ctx, evts); err != nil {
		p.reporter.Report(ctx, fmt.Errorf("publish content events: %w", err), logger.Fields{
			"content_id": c.ID(),
			"events":     len(evts),
		})
	}
}

// markPublished records the author as the first viewer and marks important
// content as read for them. Marker failures do not undo the publish.
func (p *contentPipeline) markPublished(ctx context.Context, c *models.Content, actorID string, firstSeen bool) {
	if p.markers == nil {
		return
	}
	if firstSeen {
		if err := p.markers.MarkSeen(ctx, c.ID(), actorID); err != nil {
			p.reporter.Report(ctx, err, logger.Fields{"content_id": c.ID(), "op": "mark_seen"})
		}
	}
	if c.IsImportant() {
		if err := p.markers.MarkReadImportant(ctx, c.ID(), actorID); err != nil {
			p.reporter.Report(ctx, err, logger.Fields{"content_id": c.ID(), "op": "mark_read_important"})
		}
	}
}

func orderTags(tags []models.Tag, ids []string) []models.Tag {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	out := slices.Clone(tags)
	slices.SortStableFunc(out, func(a, b models.Tag) int { return pos[a.ID] - pos[b.ID] })
	return out
}
