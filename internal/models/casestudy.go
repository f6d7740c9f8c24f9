package models

import "time"

// CaseStudy is one entry of the static case-study dataset.
type CaseStudy struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Category      string       `json:"category" yaml:"category"`
	Description   string       `json:"description" yaml:"description"`
	Image         string       `json:"image,omitempty" yaml:"image,omitempty"`
	Metrics       []Metric     `json:"metrics" yaml:"metrics"`
	Solutions     []Solution   `json:"solutions" yaml:"solutions"`
	Testimonial   *Testimonial `json:"testimonial,omitempty" yaml:"testimonial,omitempty"`
	Featured      bool         `json:"featured" yaml:"featured"`
	Priority      int          `json:"priority,omitempty" yaml:"priority,omitempty"`
	PublishedDate time.Time    `json:"publishedDate" yaml:"publishedDate"`
	UpdatedDate   time.Time    `json:"updatedDate,omitempty" yaml:"updatedDate,omitempty"`
}

// Metric is a headline result of a case study.
type Metric struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Solution is one service delivered in a case study.
type Solution struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Testimonial is a client quote.
type Testimonial struct {
	Content string `json:"content" yaml:"content"`
	Author  string `json:"author" yaml:"author"`
	Title   string `json:"title" yaml:"title"`
}

// LastModified returns the updated date, falling back to the published date.
func (c *CaseStudy) LastModified() time.Time {
	if !c.UpdatedDate.IsZero() {
		return c.UpdatedDate
	}
	return c.PublishedDate
}
