// Package models defines the domain types for the Aidea:Med content pipeline.
package models

import "time"

// Content origins.
const (
	SourceFS  = "fs"
	SourceCMS = "cms"
)

// Post is the canonical content record produced by every content store.
type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Content     string    `json:"content"` // rendered HTML
	CoverImage  string    `json:"coverImage"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Author      Author    `json:"author"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category,omitempty"`
	ReadTime    int       `json:"readTime"`
	Gallery     []Image   `json:"gallery,omitempty"`
	Views       int       `json:"views,omitempty"`
	Source      string    `json:"source"`
}

// Author describes the person credited on a post.
type Author struct {
	Name        string       `json:"name"`
	Avatar      string       `json:"avatar,omitempty"`
	Title       string       `json:"title,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	Credentials string       `json:"credentials,omitempty"`
	Expertise   []string     `json:"expertise,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty"`
}

// SocialLink is one profile link of an author.
type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// Image is a gallery or cover image reference.
type Image struct {
	URL     string `json:"url" yaml:"url"`
	Alt     string `json:"alt" yaml:"alt"`
	Caption string `json:"caption,omitempty" yaml:"caption"`
}

// Category is one entry of the configured category vocabulary.
type Category struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// HasTag reports whether the post carries tag.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SourceFile is a lightweight listing entry for a content file on disk.
type SourceFile struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"modTime"`
}
