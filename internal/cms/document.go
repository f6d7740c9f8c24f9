package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
)

// Document is a post as returned by the projection in queries.go.
type Document struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	PublishedAt string          `json:"publishedAt"`
	UpdatedAt   string          `json:"updatedAt"`
	Excerpt     string          `json:"excerpt"`
	MainImage   *ImageRef       `json:"mainImage"`
	Categories  []CategoryRef   `json:"categories"`
	Author      *AuthorRef      `json:"author"`
	Tags        []string        `json:"tags"`
	Content     json.RawMessage `json:"content"`
	ReadingTime int             `json:"readingTime"`
	Views       int             `json:"views"`
	Gallery     []ImageRef      `json:"gallery"`
}

// ImageRef is a dereferenced image asset.
type ImageRef struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// CategoryRef is a dereferenced category.
type CategoryRef struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// AuthorRef is a dereferenced author.
type AuthorRef struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Credentials string   `json:"credentials"`
	Expertise   []string `json:"expertise"`
	Image       string   `json:"image"`
	Bio         string   `json:"bio"`
}

// ToPost normalizes a CMS document into the canonical post shape.
func (d *Document) ToPost(defaults parser.Defaults) (*models.Post, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: document %s has no title", apperr.ErrMalformedEntry, d.ID)
	}
	slug := parser.Slugify(d.Slug)
	if slug == "" {
		slug = parser.Slugify(title)
	}
	if d.PublishedAt == "" {
		return nil, fmt.Errorf("%w: document %s has no publishedAt", apperr.ErrMalformedEntry, d.ID)
	}
	published, err := parser.ParseDate(d.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %v", apperr.ErrMalformedEntry, d.ID, err)
	}
	updated := published
	if d.UpdatedAt != "" {
		if updated, err = parser.ParseDate(d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: document %s: %v", apperr.ErrMalformedEntry, d.ID, err)
		}
	}

	content, err := d.renderContent()
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %v", apperr.ErrMalformedEntry, d.ID, err)
	}

	var category string
	tags := append([]string{}, d.Tags...)
	for i, c := range d.Categories {
		if i == 0 {
			category = c.Title
			continue
		}
		if len(d.Tags) == 0 {
			tags = append(tags, c.Title)
		}
	}

	readTime := d.ReadingTime
	if readTime <= 0 {
		readTime = parser.ReadTime(content, defaults.WordsPerMinute)
	}

	cover := defaults.CoverImage
	if d.MainImage != nil && d.MainImage.URL != "" {
		cover = d.MainImage.URL
	}

	author := models.Author{
		Name:   defaults.AuthorName,
		Avatar: defaults.AuthorAvatar,
		Title:  defaults.AuthorTitle,
	}
	if a := d.Author; a != nil {
		if a.Name != "" {
			author.Name = a.Name
		}
		if a.Image != "" {
			author.Avatar = a.Image
		}
		if a.Title != "" {
			author.Title = a.Title
		}
		author.Bio = a.Bio
		author.Credentials = a.Credentials
		author.Expertise = a.Expertise
	}

	var gallery []models.Image
	for _, g := range d.Gallery {
		if g.URL == "" {
			continue
		}
		gallery = append(gallery, models.Image{URL: g.URL, Alt: g.Alt, Caption: g.Caption})
	}

	id := d.ID
	if id == "" {
		id = slug
	}
	return &models.Post{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Summary:     strings.TrimSpace(d.Excerpt),
		Content:     content,
		CoverImage:  cover,
		PublishedAt: published,
		UpdatedAt:   updated,
		Author:      author,
		Tags:        tags,
		Category:    category,
		ReadTime:    readTime,
		Gallery:     gallery,
		Views:       d.Views,
		Source:      models.SourceCMS,
	}, nil
}

// renderContent accepts either a portable-text block array or a
// Markdown string and returns HTML.
func (d *Document) renderContent() (string, error) {
	raw := bytes.TrimSpace(d.Content)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return parser.Render([]byte(s))
	case '[':
		var blocks []Block
		if err := json.Unmarshal(raw, &blocks); err != nil {
			return "", err
		}
		return RenderBlocks(blocks), nil
	default:
		return "", fmt.Errorf("unsupported content shape")
	}
}
