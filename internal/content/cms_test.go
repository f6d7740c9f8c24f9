package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/cms"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
)

// cmsListing holds a good document, one with a mistyped field, one
// without a title, and an older duplicate of the first slug.
const cmsListing = `{"result":[
 {"_id":"a","title":"植牙行銷","slug":"My-Post","publishedAt":"2024-03-01","excerpt":"newest"},
 {"_id":"b","title":"Bad","slug":"bad","publishedAt":"2024-02-15","readingTime":"5"},
 {"_id":"c","title":"","slug":"untitled","publishedAt":"2024-02-10"},
 {"_id":"d","title":"Older","slug":"my-post","publishedAt":"2024-01-01","excerpt":"older"},
 {"_id":"e","title":"Spaced","slug":"Spaced Slug","publishedAt":"2023-12-01"}
]}`

type fakeCMS struct {
	listing string
	bySlug  func(slug string) string
	lists   atomic.Int32
}

func (f *fakeCMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if slug := r.URL.Query().Get("$slug"); slug != "" {
		_, _ = w.Write([]byte(f.bySlug(strings.Trim(slug, `"`))))
		return
	}
	f.lists.Add(1)
	_, _ = w.Write([]byte(f.listing))
}

func testCMSStore(t *testing.T, h http.Handler) *CMSStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client := cms.NewClient(cms.Config{ProjectID: "p", APIHost: srv.URL})
	return NewCMSStore(client, parser.NewDefaults(), quiet)
}

func TestCMSStore_ListSkipsMalformedDocuments(t *testing.T) {
	s := testCMSStore(t, &fakeCMS{listing: cmsListing})

	posts, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var slugs []string
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	if strings.Join(slugs, ",") != "my-post,spaced-slug" {
		t.Fatalf("slugs = %v", slugs)
	}
	if posts[0].Summary != "newest" {
		t.Errorf("duplicate slug kept %q, want the newest document", posts[0].Summary)
	}
}

func TestCMSStore_LoadDoesNotDegradeOnOneBadDocument(t *testing.T) {
	s := testCMSStore(t, &fakeCMS{listing: cmsListing})
	l := Load(context.Background(), s, quiet)
	if l.Error != "" {
		t.Fatalf("Load error = %q", l.Error)
	}
	if len(l.Posts) != 2 {
		t.Errorf("posts = %d, want 2", len(l.Posts))
	}
}

func TestCMSStore_GetBySlugMatchesListedSlug(t *testing.T) {
	f := &fakeCMS{
		listing: cmsListing,
		bySlug: func(slug string) string {
			if slug == "my-post" {
				return `{"result":[
 {"_id":"a","title":"植牙行銷","slug":"My-Post","publishedAt":"2024-03-01","excerpt":"newest"},
 {"_id":"d","title":"Older","slug":"my-post","publishedAt":"2024-01-01","excerpt":"older"}]}`
			}
			return `{"result":[]}`
		},
	}
	s := testCMSStore(t, f)
	ctx := context.Background()

	posts, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, listed := range posts {
		p, err := s.GetBySlug(ctx, listed.Slug)
		if err != nil {
			t.Errorf("GetBySlug(%q): %v", listed.Slug, err)
			continue
		}
		if p.Slug != listed.Slug || p.Summary != listed.Summary {
			t.Errorf("GetBySlug(%q) = %q/%q, List has %q/%q", listed.Slug, p.Slug, p.Summary, listed.Slug, listed.Summary)
		}
	}

	before := f.lists.Load()
	if _, err := s.GetBySlug(ctx, "My-Post"); err != nil {
		t.Errorf("GetBySlug(My-Post): %v", err)
	}
	if f.lists.Load() != before {
		t.Error("direct slug match fell back to the full listing")
	}

	if _, err := s.GetBySlug(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetBySlug(missing) err = %v, want ErrNotFound", err)
	}
}

func TestCMSStore_Unavailable(t *testing.T) {
	s := testCMSStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"description":"upstream down"}}`))
	}))
	ctx := context.Background()

	if _, err := s.List(ctx); !errors.Is(err, apperr.ErrSourceUnavailable) {
		t.Fatalf("List err = %v, want ErrSourceUnavailable", err)
	}
	if _, err := s.GetBySlug(ctx, "x"); !errors.Is(err, apperr.ErrSourceUnavailable) {
		t.Errorf("GetBySlug err = %v, want ErrSourceUnavailable", err)
	}
	l := Load(ctx, s, quiet)
	if l.Error != UnavailableMessage || len(l.Posts) != 0 {
		t.Errorf("Load = %+v", l)
	}
}

func TestCMSStore_Categories(t *testing.T) {
	s := testCMSStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"title":"數位行銷","slug":"digital","description":"d"}]}`))
	}))
	cats, err := s.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Slug != "digital" || cats[0].Title != "數位行銷" {
		t.Errorf("categories = %+v", cats)
	}
}
