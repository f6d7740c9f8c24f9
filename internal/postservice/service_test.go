package postservice

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/content"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/index"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/query"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/testutil"
)

func fixture() map[string]string {
	return map[string]string{
		"seo.md":    testutil.Post("Dental SEO Guide", "2024-05-01", "category: 醫療行銷", "tags: [SEO, 牙醫]"),
		"ads.md":    testutil.Post("Ad Rules", "2024-04-01", "category: 醫療行銷", "tags: [法規]"),
		"brand.md":  testutil.Post("Brand Story", "2024-03-01", "tags: [品牌建立]"),
		"social.md": testutil.Post("Social Media", "2024-02-01"),
	}
}

type downStore struct{}

func (downStore) List(context.Context) ([]models.Post, error) {
	return nil, apperr.ErrSourceUnavailable
}
func (downStore) GetBySlug(context.Context, string) (*models.Post, error) {
	return nil, apperr.ErrSourceUnavailable
}
func (downStore) Categories(context.Context) ([]models.Category, error) {
	return nil, apperr.ErrSourceUnavailable
}

func TestListPosts_StoreAndIndexAgree(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestContent(t, fixture())
	db := testutil.TestDB(t)
	if _, err := index.Sync(ctx, db, store, testutil.Quiet); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	plain := New(store, WithLogger(testutil.Quiet))
	indexed := New(store, WithIndex(db), WithLogger(testutil.Quiet))

	specs := []query.Spec{
		{},
		{Category: "醫療行銷"},
		{Tag: "SEO"},
		{Search: "brand"},
		{PageSize: 2, Page: 2},
	}
	for _, spec := range specs {
		a := plain.ListPosts(ctx, spec)
		b := indexed.ListPosts(ctx, spec)
		require.Len(t, b.Posts, len(a.Posts), "spec %+v", spec)
		for i := range a.Posts {
			assert.Equal(t, a.Posts[i].Slug, b.Posts[i].Slug, "spec %+v", spec)
		}
		assert.Equal(t, a.HasMore, b.HasMore, "spec %+v", spec)
	}
}

func TestListPosts_DegradesOnUnavailable(t *testing.T) {
	svc := New(downStore{}, WithLogger(testutil.Quiet))
	res := svc.ListPosts(context.Background(), query.Spec{})
	assert.Equal(t, content.UnavailableMessage, res.Error)
	assert.NotNil(t, res.Posts)
	assert.Empty(t, res.Posts)
	assert.False(t, res.HasMore)
}

func TestGetPost(t *testing.T) {
	_, store := testutil.TestContent(t, fixture())
	svc := New(store, WithLogger(testutil.Quiet))

	d, err := svc.GetPost(context.Background(), "dental-seo-guide")
	require.NoError(t, err)
	assert.Equal(t, "Dental SEO Guide", d.Post.Title)
	assert.Equal(t, svc.Site().PostURL("dental-seo-guide"), d.Metadata.Canonical)

	var graph map[string]any
	require.NoError(t, json.Unmarshal(d.StructuredData, &graph))
	assert.Contains(t, graph, "@graph")

	require.NotEmpty(t, d.Related)
	assert.Equal(t, "ad-rules", d.Related[0].Slug, "same category ranks first")
	for _, r := range d.Related {
		assert.NotEqual(t, "dental-seo-guide", r.Slug)
	}
	assert.Equal(t, "Dental SEO Guide", d.Breadcrumbs[len(d.Breadcrumbs)-1].Name)
}

func TestGetPost_AnswersFromIndex(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestContent(t, fixture())
	db := testutil.TestDB(t)
	_, err := index.Sync(ctx, db, store, testutil.Quiet)
	require.NoError(t, err)

	d, err := New(downStore{}, WithIndex(db), WithLogger(testutil.Quiet)).GetPost(ctx, "dental-seo-guide")
	require.NoError(t, err)
	assert.Equal(t, "Dental SEO Guide", d.Post.Title)
	assert.NotNil(t, d.Related)

	d, err = New(store, WithIndex(db), WithLogger(testutil.Quiet)).GetPost(ctx, "Dental-SEO-Guide")
	require.NoError(t, err, "unnormalized slug falls back to the store")
	assert.Equal(t, "dental-seo-guide", d.Post.Slug)
}

func TestGetPost_NotFound(t *testing.T) {
	_, store := testutil.TestContent(t, fixture())
	svc := New(store, WithLogger(testutil.Quiet))
	_, err := svc.GetPost(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearch_WithoutIndex(t *testing.T) {
	_, store := testutil.TestContent(t, fixture())
	svc := New(store, WithLogger(testutil.Quiet))
	res, err := svc.Search(context.Background(), "social", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "social-media", res[0].Slug)
}

func TestCases(t *testing.T) {
	svc := New(downStore{}, WithLogger(testutil.Quiet))
	cases := svc.Cases(false)
	require.NotEmpty(t, cases)

	featured := svc.Cases(true)
	require.NotEmpty(t, featured)
	assert.Less(t, len(featured), len(cases))
	for i, c := range featured {
		assert.True(t, c.Featured, c.ID)
		assert.Equal(t, cases[i].ID, c.ID, "featured keep display order")
	}

	d, err := svc.Case(cases[0].ID)
	require.NoError(t, err)
	assert.Equal(t, cases[0].ID, d.Case.ID)
	assert.True(t, json.Valid(d.StructuredData))

	_, err = svc.Case("nope")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSitemap_OmitsPostsWhenSourceFails(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := New(downStore{}, WithLogger(testutil.Quiet), WithClock(func() time.Time { return now }))
	out, err := svc.Sitemap(context.Background())
	require.NoError(t, err)
	xml := string(out)
	assert.Contains(t, xml, "<loc>https://www.aideamed.com</loc>")
	assert.Contains(t, xml, "/case/")
	assert.NotContains(t, xml, "/blog/")
}

func TestRobots(t *testing.T) {
	svc := New(downStore{})
	assert.Contains(t, svc.Robots(), "Sitemap: https://www.aideamed.com/sitemap.xml")
}

func TestReindex(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestContent(t, fixture())

	_, err := New(store).Reindex(ctx)
	assert.ErrorIs(t, err, ErrIndexDisabled)

	var seen []index.Change
	svc := New(store,
		WithIndex(testutil.TestDB(t)),
		WithLogger(testutil.Quiet),
		WithChangeHook(func(c index.Change) { seen = append(seen, c) }))
	changes, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Len(t, changes, 4)
	assert.Equal(t, changes, seen)

	changes, err = svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestCheck(t *testing.T) {
	files := fixture()
	files["dup.md"] = testutil.Post("Ad Rules", "2024-01-01")
	files["broken.md"] = "---\ntitle: [unclosed\n---\nbody"
	_, store := testutil.TestContent(t, files)

	rep, err := New(store, WithLogger(testutil.Quiet)).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Posts)
	assert.False(t, rep.OK())
	joined := strings.Join(rep.Problems, "\n")
	assert.Contains(t, joined, "broken.md")
	assert.Contains(t, joined, "dup.md")
	assert.Empty(t, rep.Dangling)
}

func TestReady(t *testing.T) {
	_, store := testutil.TestContent(t, fixture())
	assert.NoError(t, New(store, WithIndex(testutil.TestDB(t))).Ready(context.Background()))
	assert.Error(t, New(downStore{}).Ready(context.Background()))

	closed := testutil.TestDB(t)
	require.NoError(t, closed.Close())
	assert.Error(t, New(store, WithIndex(closed), WithLogger(testutil.Quiet)).Ready(context.Background()))
}

func TestCategories_PostCounts(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestContent(t, fixture())
	db := testutil.TestDB(t)
	_, err := index.Sync(ctx, db, store, testutil.Quiet)
	require.NoError(t, err)

	for name, svc := range map[string]*Service{
		"store": New(store, WithLogger(testutil.Quiet)),
		"index": New(store, WithIndex(db), WithLogger(testutil.Quiet)),
	} {
		cats, err := svc.Categories(ctx)
		require.NoError(t, err, name)
		require.Len(t, cats, 1, name)
		assert.Equal(t, "醫療行銷", cats[0].Title, name)
		assert.Equal(t, 2, cats[0].Posts, name)
	}

	_, err = New(downStore{}).Categories(ctx)
	assert.ErrorIs(t, err, apperr.ErrSourceUnavailable)
}
