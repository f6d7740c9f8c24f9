package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/query"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "aidea-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(context.Background(), f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func mustUpsert(t *testing.T, db *DB, p models.Post) {
	t.Helper()
	if err := db.UpsertPost(context.Background(), &p, Fingerprint(&p)); err != nil {
		t.Fatalf("UpsertPost(%s): %v", p.Slug, err)
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&count); err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM post_tags`).Scan(&count); err != nil {
		t.Fatalf("post_tags table missing: %v", err)
	}
}

func TestUpsertAndGetPost(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := models.Post{
		Slug: "hello", Title: "Hello", Summary: "sum", Content: "<p>body</p>",
		PublishedAt: base, Tags: []string{"go", "seo"}, Category: "數位行銷",
		Author: models.Author{Name: "團隊編輯"}, ReadTime: 1,
	}
	mustUpsert(t, db, p)

	got, err := db.GetPost(ctx, "hello")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Title != "Hello" || got.Content != "<p>body</p>" || !got.PublishedAt.Equal(base) || got.Author.Name != "團隊編輯" {
		t.Errorf("round trip = %+v", got)
	}

	p.Title = "Hello again"
	p.Tags = []string{"go"}
	mustUpsert(t, db, p)
	got, _ = db.GetPost(ctx, "hello")
	if got.Title != "Hello again" {
		t.Errorf("title after update = %q", got.Title)
	}
	if page, _ := db.ListPosts(ctx, query.Spec{Tag: "seo"}); len(page.Items) != 0 {
		t.Errorf("stale tag kept: %+v", page.Items)
	}

	if _, err := db.GetPost(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetPost(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeletePost(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, models.Post{Slug: "del", Title: "x", Tags: []string{"t"}, PublishedAt: base})

	if err := db.DeletePost(ctx, "del"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := db.GetPost(ctx, "del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("post still present: %v", err)
	}
	var tags int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM post_tags WHERE slug = ?`, "del").Scan(&tags); err != nil || tags != 0 {
		t.Errorf("tags not removed: %d (%v)", tags, err)
	}
}

func TestListPosts_MatchesInMemoryQuery(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var posts []models.Post
	for i := 0; i < 25; i++ {
		cat := "A"
		if i%3 == 0 {
			cat = "B"
		}
		p := models.Post{
			Slug:        fmt.Sprintf("p%02d", i),
			Title:       fmt.Sprintf("Dental Post %d", i),
			Summary:     "summary",
			Category:    cat,
			Tags:        []string{fmt.Sprintf("t%d", i%2)},
			PublishedAt: base.AddDate(0, 0, i),
			Views:       i % 5,
		}
		posts = append(posts, p)
		mustUpsert(t, db, p)
	}

	specs := []query.Spec{
		{Page: 1, PageSize: 9},
		{Page: 2, PageSize: 9},
		{Page: 3, PageSize: 9},
		{Category: "B"},
		{Category: "all", Search: "post 1"},
		{Tag: "t1", Sort: query.SortPopular},
		{Category: "A", Search: "DENTAL", Page: 2, PageSize: 5},
	}
	for _, spec := range specs {
		want := query.Posts(posts, spec)
		got, err := db.ListPosts(ctx, spec)
		if err != nil {
			t.Fatalf("ListPosts(%+v): %v", spec, err)
		}
		if got.HasMore != want.HasMore || len(got.Items) != len(want.Items) {
			t.Errorf("spec %+v: got %d items hasMore %v, want %d hasMore %v",
				spec, len(got.Items), got.HasMore, len(want.Items), want.HasMore)
			continue
		}
		for i := range want.Items {
			if got.Items[i].Slug != want.Items[i].Slug {
				t.Errorf("spec %+v item %d: %s, want %s", spec, i, got.Items[i].Slug, want.Items[i].Slug)
			}
		}
	}
}

func TestCategoriesAndCount(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, models.Post{Slug: "a", Category: "法規", PublishedAt: base})
	mustUpsert(t, db, models.Post{Slug: "b", Category: "法規", PublishedAt: base})
	mustUpsert(t, db, models.Post{Slug: "c", Category: "品牌", PublishedAt: base})
	mustUpsert(t, db, models.Post{Slug: "d", PublishedAt: base})

	cats, err := db.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 || cats[0].Category != "法規" || cats[0].Posts != 2 {
		t.Errorf("categories = %+v", cats)
	}
	if n, _ := db.Count(ctx); n != 4 {
		t.Errorf("count = %d, want 4", n)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, models.Post{Slug: "implant", Title: "植牙 Guide", Content: "<p>Powerful implant marketing</p>", PublishedAt: base})
	mustUpsert(t, db, models.Post{Slug: "other", Title: "Other", Content: "<p>nothing here</p>", PublishedAt: base})

	results, err := db.Search(ctx, "powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "implant" {
		t.Fatalf("results = %+v", results)
	}
	if results, _ := db.Search(ctx, "   ", 10); len(results) != 0 {
		t.Errorf("blank query returned %d results", len(results))
	}
}

func TestListPosts_FoldsNonASCII(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	posts := []models.Post{
		{Slug: "aerzte", Title: "Ärzte Marketing", Summary: "Übersicht", PublishedAt: base},
		{Slug: "other", Title: "Other", PublishedAt: base.AddDate(0, 0, 1)},
	}
	for _, p := range posts {
		mustUpsert(t, db, p)
	}

	for _, q := range []string{"Ärzte", "ärzte", "ÄRZTE", "übersicht"} {
		spec := query.Spec{Search: q}
		got, err := db.ListPosts(ctx, spec)
		if err != nil {
			t.Fatalf("ListPosts(%q): %v", q, err)
		}
		want := query.Posts(posts, spec)
		if len(got.Items) != 1 || got.Items[0].Slug != "aerzte" || len(want.Items) != 1 {
			t.Errorf("search %q: index %d items, in-memory %d items", q, len(got.Items), len(want.Items))
		}
	}
}
