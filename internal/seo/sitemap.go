package seo

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Route is one static sitemap entry.
type Route struct {
	Path       string  `yaml:"path"`
	Priority   float64 `yaml:"priority"`
	ChangeFreq string  `yaml:"changefreq"`
}

// SitemapConfig drives sitemap generation.
type SitemapConfig struct {
	Routes        []Route  `yaml:"routes"`
	HighValueTags []string `yaml:"high_value_tags"`
	PinnedSlugs   []string `yaml:"pinned_slugs"`
}

// DefaultSitemapConfig returns the production route table and keyword list.
func DefaultSitemapConfig() SitemapConfig {
	return SitemapConfig{
		Routes: []Route{
			{Path: "/", Priority: 1.0, ChangeFreq: "weekly"},
			{Path: "/service", Priority: 0.9, ChangeFreq: "monthly"},
			{Path: "/service/medical-ad-compliance", Priority: 0.95, ChangeFreq: "monthly"},
			{Path: "/case", Priority: 0.8, ChangeFreq: "monthly"},
			{Path: "/team", Priority: 0.7, ChangeFreq: "monthly"},
			{Path: "/blog", Priority: 0.9, ChangeFreq: "daily"},
			{Path: "/contact", Priority: 0.6, ChangeFreq: "monthly"},
			{Path: "/privacy", Priority: 0.5, ChangeFreq: "yearly"},
		},
		HighValueTags: []string{
			"醫療廣告", "法規", "合規", "衛福部", "醫療法",
			"醫療行銷", "廣告違規", "醫師公會", "醫事法規",
			"牙醫", "診所經營", "EEAT", "專業性", "權威性",
			"SEO", "數位行銷", "社群媒體", "內容行銷",
			"品牌建立", "客戶關係", "醫療傳播", "病患教育",
		},
		PinnedSlugs: []string{"dental-advertising-regulations"},
	}
}

// Relevance weights and thresholds of the blog priority policy.
const (
	tagWeight       = 2
	titleWeight     = 3
	summaryWeight   = 1
	maxRelevance    = 10
	highRelevance   = 7
	mediumRelevance = 4
	freshMonths     = 3
	outdatedMonths  = 12
)

// Relevance scores a post against the high-value keyword list.
func (c SitemapConfig) Relevance(p *models.Post) int {
	title := strings.ToLower(p.Title)
	summary := strings.ToLower(p.Summary)

	score := 0
	for _, tag := range p.Tags {
		lt := strings.ToLower(tag)
		for _, kw := range c.HighValueTags {
			if strings.Contains(lt, strings.ToLower(kw)) {
				score += tagWeight
				break
			}
		}
	}
	for _, kw := range c.HighValueTags {
		lk := strings.ToLower(kw)
		if strings.Contains(title, lk) {
			score += titleWeight
		}
		if summary != "" && strings.Contains(summary, lk) {
			score += summaryWeight
		}
	}
	return min(score, maxRelevance)
}

// MonthsSince counts calendar months between t and now.
func MonthsSince(t, now time.Time) int {
	return (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
}

// BlogPriority returns the sitemap priority and change frequency of a post.
func (c SitemapConfig) BlogPriority(p *models.Post, now time.Time) (float64, string) {
	for _, s := range c.PinnedSlugs {
		if s == p.Slug {
			return 0.95, "weekly"
		}
	}
	switch score := c.Relevance(p); {
	case score >= highRelevance:
		return 0.92, "weekly"
	case score >= mediumRelevance:
		return 0.85, "monthly"
	}
	switch months := MonthsSince(p.PublishedAt, now); {
	case months < freshMonths:
		return 0.8, "weekly"
	case months > outdatedMonths:
		return 0.7, "yearly"
	}
	return 0.75, "monthly"
}

// URLSet is the sitemap document.
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// BuildSitemap lists static routes, case studies and posts.
func BuildSitemap(site Site, cfg SitemapConfig, posts []models.Post, cases []models.CaseStudy, now time.Time) URLSet {
	set := URLSet{Xmlns: sitemapNS}
	today := now.UTC().Format("2006-01-02")
	for _, r := range cfg.Routes {
		loc := site.Base()
		if r.Path != "/" {
			loc += r.Path
		}
		set.URLs = append(set.URLs, SitemapURL{
			Loc:        loc,
			LastMod:    today,
			ChangeFreq: r.ChangeFreq,
			Priority:   formatPriority(r.Priority),
		})
	}
	for i := range cases {
		c := &cases[i]
		set.URLs = append(set.URLs, SitemapURL{
			Loc:        site.CaseURL(c.ID),
			LastMod:    c.LastModified().UTC().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   formatPriority(0.7),
		})
	}
	for i := range posts {
		p := &posts[i]
		prio, freq := cfg.BlogPriority(p, now)
		set.URLs = append(set.URLs, SitemapURL{
			Loc:        site.PostURL(p.Slug),
			LastMod:    modified(p).UTC().Format("2006-01-02"),
			ChangeFreq: freq,
			Priority:   formatPriority(prio),
		})
	}
	return set
}

// XML renders the sitemap with its declaration.
func (s URLSet) XML() ([]byte, error) {
	body, err := xml.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func formatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
