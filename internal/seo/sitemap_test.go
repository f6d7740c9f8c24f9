package seo

import (
	"strings"
	"testing"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

func TestBlogPriority(t *testing.T) {
	cfg := DefaultSitemapConfig()
	now := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		post     models.Post
		prio     float64
		freq     string
		relScore int
	}{
		{"pinned", models.Post{Slug: "dental-advertising-regulations", Title: "x", PublishedAt: now}, 0.95, "weekly", -1},
		{"high relevance", models.Post{Slug: "a", Title: "醫療廣告法規與牙醫 SEO", PublishedAt: now.AddDate(-3, 0, 0)}, 0.92, "weekly", 10},
		{"medium relevance", models.Post{Slug: "b", Title: "牙醫日常", Tags: []string{"診所經營"}, PublishedAt: now.AddDate(-3, 0, 0)}, 0.85, "monthly", 5},
		{"fresh", models.Post{Slug: "c", Title: "新聞", PublishedAt: now.AddDate(0, -1, 0)}, 0.8, "weekly", 0},
		{"outdated", models.Post{Slug: "d", Title: "舊聞", PublishedAt: now.AddDate(-2, 0, 0)}, 0.7, "yearly", 0},
		{"default", models.Post{Slug: "e", Title: "普通", PublishedAt: now.AddDate(0, -6, 0)}, 0.75, "monthly", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.relScore >= 0 {
				if got := cfg.Relevance(&c.post); got != c.relScore {
					t.Errorf("relevance = %d, want %d", got, c.relScore)
				}
			}
			prio, freq := cfg.BlogPriority(&c.post, now)
			if prio != c.prio || freq != c.freq {
				t.Errorf("priority = %v %q, want %v %q", prio, freq, c.prio, c.freq)
			}
		})
	}
}

func TestMonthsSince(t *testing.T) {
	a := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthsSince(a, b); got != 3 {
		t.Errorf("MonthsSince = %d, want 3", got)
	}
}

func TestBuildSitemap(t *testing.T) {
	site := DefaultSite()
	now := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
	posts := []models.Post{{Slug: "hello", Title: "Hello", PublishedAt: now.AddDate(0, -1, 0)}}
	cases := []models.CaseStudy{{ID: "artisticdc", PublishedDate: now.AddDate(-1, 0, 0)}}

	set := BuildSitemap(site, DefaultSitemapConfig(), posts, cases, now)
	out, err := set.XML()
	if err != nil {
		t.Fatalf("XML: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://www.aideamed.com</loc>",
		"<loc>https://www.aideamed.com/blog/hello</loc>",
		"<loc>https://www.aideamed.com/case/artisticdc</loc>",
		"<priority>0.8</priority>",
		"<lastmod>2024-11-15</lastmod>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
}

func TestBuildRobots(t *testing.T) {
	out := BuildRobots(DefaultSite(), DefaultRobotsGroups())
	for _, want := range []string{
		"User-agent: *\n",
		"Disallow: /api/\n",
		"User-agent: GPTBot\n",
		"Disallow: /contact/\n",
		"Crawl-delay: 1\n",
		"Sitemap: https://www.aideamed.com/sitemap.xml\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("robots missing %q", want)
		}
	}
}
