package services_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"social-content/logger"
	"social-content/models"
	"social-content/services"
)

const (
	postID    = "7d3f9a55-4f0c-4c5e-9a3b-0d5c2c0b8a11"
	articleID = "5c4b3a29-1807-4f6e-8d5c-4b3a29180766"
	seriesID  = "2a9f8e7d-6c5b-4a39-8281-7f6e5d4c3b77"
	ownerID   = "0c6b1d8e-2b52-4f4a-8d8e-5b7d2f1e9c33"
	otherID   = "b1f0e7a2-9c3d-4e5f-8a6b-7c8d9e0f1a22"
	groupA    = "4e2a1c9b-6d3f-4b7a-9e1c-2f8d5a6b7c44"
	groupB    = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c55"
	rootA     = "3d2c1b0a-9f8e-4d7c-8b6a-5f4e3d2c1b88"
	rootB     = "8f7e6d5c-4b3a-4291-8f0e-9d8c7b6a5f99"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

type fakeContentRepo struct {
	mu      sync.Mutex
	items   map[string]models.ContentState
	creates int
	updates int
	deletes int
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{items: map[string]models.ContentState{}}
}

func (r *fakeContentRepo) FindByID(_ context.Context, id string) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.items[id]
	if !ok {
		return nil, models.ErrContentNotFound
	}
	return models.LoadContent(state)
}

func (r *fakeContentRepo) FindByIDs(_ context.Context, ids []string) ([]*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Content
	for _, id := range ids {
		if state, ok := r.items[id]; ok {
			c, err := models.LoadContent(state)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContentRepo) Create(_ context.Context, c *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID()] = c.State()
	r.creates++
	return nil
}

func (r *fakeContentRepo) Update(_ context.Context, c *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID()] = c.State()
	r.updates++
	return nil
}

func (r *fakeContentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	r.deletes++
	return nil
}

func (r *fakeContentRepo) put(t *testing.T, c *models.Content) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID()] = c.State()
}

func (r *fakeContentRepo) get(t *testing.T, id string) *models.Content {
	t.Helper()
	c, err := r.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

type fakeMedia struct {
	images      map[string]models.Image
	files       map[string]models.File
	videos      map[string]models.Video
	imageLookup [][]string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		images: map[string]models.Image{},
		files:  map[string]models.File{},
		videos: map[string]models.Video{},
	}
}

func (m *fakeMedia) FindImages(_ context.Context, ids []string) ([]models.Image, error) {
	m.imageLookup = append(m.imageLookup, slices.Clone(ids))
	var out []models.Image
	// Reverse to make sure callers do not rely on lookup order.
	for i := len(ids) - 1; i >= 0; i-- {
		if img, ok := m.images[ids[i]]; ok {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *fakeMedia) FindFiles(_ context.Context, ids []string) ([]models.File, error) {
	var out []models.File
	for _, id := range ids {
		if f, ok := m.files[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *fakeMedia) FindVideos(_ context.Context, ids []string) ([]models.Video, error) {
	var out []models.Video
	for _, id := range ids {
		if v, ok := m.videos[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeGroups map[string]models.Group

func (g fakeGroups) FindGroupsByIDs(_ context.Context, ids []string) ([]models.Group, error) {
	var out []models.Group
	for _, id := range ids {
		if grp, ok := g[id]; ok {
			out = append(out, grp)
		}
	}
	return out, nil
}

type fakeUsers map[string]models.User

func (u fakeUsers) FindUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if usr, ok := u[id]; ok {
			out = append(out, usr)
		}
	}
	return out, nil
}

type fakeTags map[string]models.Tag

func (f fakeTags) FindByIDs(_ context.Context, ids []string) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range ids {
		if tag, ok := f[id]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

type fakeLinkPreviews struct {
	byURL   map[string]models.LinkPreview
	creates int
	updates int
}

func newFakeLinkPreviews() *fakeLinkPreviews {
	return &fakeLinkPreviews{byURL: map[string]models.LinkPreview{}}
}

func (f *fakeLinkPreviews) FindByURL(_ context.Context, url string) (*models.LinkPreview, error) {
	lp, ok := f.byURL[url]
	if !ok {
		return nil, nil
	}
	return &lp, nil
}

func (f *fakeLinkPreviews) Create(_ context.Context, lp *models.LinkPreview) error {
	f.byURL[lp.URL] = *lp
	f.creates++
	return nil
}

func (f *fakeLinkPreviews) Update(_ context.Context, lp *models.LinkPreview) error {
	f.byURL[lp.URL] = *lp
	f.updates++
	return nil
}

type fakeMarkers struct {
	seen      []string
	important []string
}

func (f *fakeMarkers) MarkSeen(_ context.Context, contentID, userID string) error {
	f.seen = append(f.seen, contentID+"/"+userID)
	return nil
}

func (f *fakeMarkers) MarkReadImportant(_ context.Context, contentID, userID string) error {
	f.important = append(f.important, contentID+"/"+userID)
	return nil
}

type recordingPublisher struct {
	events []models.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evts []models.DomainEvent) error {
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) names() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventName())
	}
	return out
}

type fixture struct {
	repo      *fakeContentRepo
	media     *fakeMedia
	groups    fakeGroups
	users     fakeUsers
	tags      fakeTags
	previews  *fakeLinkPreviews
	markers   *fakeMarkers
	publisher *recordingPublisher
	deps      services.Deps
}

func newFixture() *fixture {
	f := &fixture{
		repo:  newFakeContentRepo(),
		media: newFakeMedia(),
		groups: fakeGroups{
			groupA: {ID: groupA, Name: "A", RootGroupID: rootA, Privacy: models.PrivacyOpen},
			groupB: {ID: groupB, Name: "B", RootGroupID: rootB, Privacy: models.PrivacyClosed},
		},
		users:     fakeUsers{},
		tags:      fakeTags{},
		previews:  newFakeLinkPreviews(),
		markers:   &fakeMarkers{},
		publisher: &recordingPublisher{},
	}
	f.deps = services.Deps{
		Contents:        f.repo,
		Media:           f.media,
		Groups:          f.groups,
		Users:           f.users,
		Tags:            f.tags,
		LinkPreviews:    f.previews,
		Markers:         f.markers,
		Publisher:       f.publisher,
		Logger:          logger.Nop(),
		MinScheduleLead: 30 * time.Minute,
		Now:             func() time.Time { return fixedNow },
	}
	return f
}

// seedPost stores a draft post with text in groupA.
func (f *fixture) seedPost(t *testing.T, mutate ...func(*models.Content)) *models.Content {
	t.Helper()
	post, err := models.NewPost(postID, ownerID, fixedNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, post.Update(models.UpdateAttributes{
		Content:  strPtr("hello"),
		GroupIDs: []string{groupA},
	}, ownerID))
	for _, m := range mutate {
		m(post)
	}
	f.repo.put(t, post)
	return post
}

func (f *fixture) addImage(id, owner string, resource models.ImageResource) {
	f.media.images[id] = models.Image{
		ID:        id,
		CreatedBy: owner,
		URL:       "https://cdn.example.com/" + id,
		Status:    models.ImageStatusDone,
		Resource:  resource,
	}
}
