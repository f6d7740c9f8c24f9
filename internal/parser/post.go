package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// Defaults are applied to fields a content file leaves out.
type Defaults struct {
	CoverImage     string
	AuthorName     string
	AuthorAvatar   string
	AuthorTitle    string
	WordsPerMinute int
}

// NewDefaults returns the site's documented fallbacks.
func NewDefaults() Defaults {
	return Defaults{
		CoverImage:     "/images/blog/default.jpg",
		AuthorName:     "團隊編輯",
		AuthorAvatar:   "/images/team/default-avatar.jpg",
		AuthorTitle:    "內容創作者",
		WordsPerMinute: DefaultWordsPerMinute,
	}
}

// Options controls how a single file becomes a post.
type Options struct {
	Defaults Defaults
	// FallbackDate is used when the file carries no publish date. When
	// zero, a missing publish date makes the entry malformed.
	FallbackDate time.Time
}

// ParsePost parses a Markdown content file into a canonical post.
func ParsePost(data []byte, opts Options) (*models.Post, error) {
	fm, body, err := Split(data)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = deriveTitle(body)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", apperr.ErrMalformedEntry)
	}

	slug := Slugify(fm.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: title %q yields an empty slug", apperr.ErrMalformedEntry, title)
	}

	published, err := publishDate(fm, opts.FallbackDate)
	if err != nil {
		return nil, err
	}
	updated := published
	if fm.UpdatedAt != "" {
		updated, err = ParseDate(fm.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: updatedAt: %v", apperr.ErrMalformedEntry, err)
		}
	}

	html, err := Render(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedEntry, err)
	}

	d := opts.Defaults
	summary := fm.Summary
	if summary == "" {
		summary = fm.Excerpt
	}
	readTime := fm.ReadTime
	if readTime <= 0 {
		readTime = ReadTime(string(body), d.WordsPerMinute)
	}
	tags := []string(fm.Tags)
	if tags == nil {
		tags = []string{}
	}

	return &models.Post{
		ID:          slug,
		Slug:        slug,
		Title:       title,
		Summary:     strings.TrimSpace(summary),
		Content:     html,
		CoverImage:  orDefault(fm.CoverImage, d.CoverImage),
		PublishedAt: published,
		UpdatedAt:   updated,
		Author:      buildAuthor(fm.Author, d),
		Tags:        tags,
		Category:    strings.TrimSpace(fm.Category),
		ReadTime:    readTime,
		Gallery:     fm.Gallery,
		Views:       fm.Views,
		Source:      models.SourceFS,
	}, nil
}

func publishDate(fm FrontMatter, fallback time.Time) (time.Time, error) {
	raw := fm.PublishedAt
	if raw == "" {
		raw = fm.Date
	}
	if raw == "" {
		if fallback.IsZero() {
			return time.Time{}, fmt.Errorf("%w: missing publishedAt", apperr.ErrMalformedEntry)
		}
		return fallback.UTC(), nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: publishedAt: %v", apperr.ErrMalformedEntry, err)
	}
	return t, nil
}

func buildAuthor(a AuthorField, d Defaults) models.Author {
	return models.Author{
		Name:        orDefault(a.Name, d.AuthorName),
		Avatar:      orDefault(a.Avatar, d.AuthorAvatar),
		Title:       orDefault(a.Title, d.AuthorTitle),
		Bio:         a.Bio,
		Credentials: a.Credentials,
		Expertise:   []string(a.Expertise),
		SocialLinks: a.SocialLinks,
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
