package seo

import (
	"strings"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// DescriptionLength is the rune budget of a derived description.
const DescriptionLength = 160

// Metadata is the SEO head of a post page.
type Metadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    string    `json:"keywords,omitempty"`
	Canonical   string    `json:"canonical"`
	Authors     []string  `json:"authors,omitempty"`
	Category    string    `json:"category"`
	OpenGraph   OpenGraph `json:"openGraph"`
	Twitter     Twitter   `json:"twitter"`
}

// OpenGraph holds og:* properties.
type OpenGraph struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	SiteName      string    `json:"siteName"`
	Locale        string    `json:"locale"`
	Type          string    `json:"type"`
	PublishedTime string    `json:"publishedTime"`
	ModifiedTime  string    `json:"modifiedTime"`
	Section       string    `json:"section,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Images        []OGImage `json:"images"`
}

// OGImage is one og:image candidate.
type OGImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

// Twitter holds twitter:* card properties.
type Twitter struct {
	Card        string   `json:"card"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Site        string   `json:"site,omitempty"`
	Creator     string   `json:"creator,omitempty"`
	Images      []string `json:"images"`
}

// Synthesize derives the metadata of a post. It depends only on its
// arguments, so repeated calls yield identical values.
func Synthesize(site Site, p *models.Post) Metadata {
	canonical := site.PostURL(p.Slug)
	desc := Description(p)
	category := p.Category
	if category == "" {
		category = site.DefaultCategory
	}

	var images []OGImage
	var twImages []string
	for _, ref := range []string{site.SocialImage, p.CoverImage} {
		u := site.Absolute(ref)
		if u == "" || containsImage(images, u) {
			continue
		}
		images = append(images, OGImage{URL: u, Width: 1200, Height: 630, Alt: p.Title})
		twImages = append(twImages, u)
	}

	var authors []string
	if p.Author.Name != "" {
		authors = []string{p.Author.Name}
	}
	tags := append([]string(nil), p.Tags...)

	return Metadata{
		Title:       p.Title + " | " + site.Name,
		Description: desc,
		Keywords:    strings.Join(p.Tags, ", "),
		Canonical:   canonical,
		Authors:     authors,
		Category:    category,
		OpenGraph: OpenGraph{
			Title:         p.Title,
			Description:   desc,
			URL:           canonical,
			SiteName:      site.Name,
			Locale:        site.Locale,
			Type:          "article",
			PublishedTime: formatTime(p.PublishedAt),
			ModifiedTime:  formatTime(modified(p)),
			Section:       category,
			Tags:          tags,
			Images:        images,
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Title:       p.Title,
			Description: desc,
			Site:        site.TwitterHandle,
			Creator:     site.TwitterHandle,
			Images:      twImages,
		},
	}
}

// Description is the stripped summary, or the leading text of the
// stripped content when the post has no summary.
func Description(p *models.Post) string {
	if s := StripHTML(p.Summary); s != "" {
		return s
	}
	return Truncate(StripHTML(p.Content), DescriptionLength)
}

func modified(p *models.Post) time.Time {
	if p.UpdatedAt.IsZero() {
		return p.PublishedAt
	}
	return p.UpdatedAt
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func containsImage(images []OGImage, u string) bool {
	for _, im := range images {
		if im.URL == u {
			return true
		}
	}
	return false
}
