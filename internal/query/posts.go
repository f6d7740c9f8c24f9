// Package query filters, sorts and pages post collections.
package query

import (
	"sort"
	"strings"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// Sort orders.
const (
	SortLatest  = "latest"
	SortPopular = "popular"
)

// AllCategories is the category filter value that disables filtering.
const AllCategories = "all"

const (
	DefaultPageSize = 9
	MaxPageSize     = 100
)

// Spec describes one listing request. Page is 1-based.
type Spec struct {
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Search   string `json:"q,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Normalized fills defaults and clamps out-of-range values.
func (s Spec) Normalized() Spec {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if s.PageSize > MaxPageSize {
		s.PageSize = MaxPageSize
	}
	if s.Sort != SortPopular {
		s.Sort = SortLatest
	}
	if s.Category == AllCategories {
		s.Category = ""
	}
	s.Search = strings.TrimSpace(s.Search)
	return s
}

// Offset is the index of the first item of the page window.
func (s Spec) Offset() int {
	return (s.Page - 1) * s.PageSize
}

// Page is one window of results. HasMore is true whenever the window
// is full, so a collection that is an exact multiple of the page size
// reports one extra, empty page.
type Page struct {
	Items   []models.Post `json:"posts"`
	Page    int           `json:"page"`
	HasMore bool          `json:"hasMore"`
}

// Posts filters, sorts and pages posts. The input slice is not modified.
func Posts(posts []models.Post, spec Spec) Page {
	spec = spec.Normalized()

	matched := make([]models.Post, 0, len(posts))
	for i := range posts {
		if Matches(&posts[i], spec) {
			matched = append(matched, posts[i])
		}
	}
	SortPosts(matched, spec.Sort)

	start := min(spec.Offset(), len(matched))
	end := min(start+spec.PageSize, len(matched))
	items := matched[start:end]
	return Page{
		Items:   items,
		Page:    spec.Page,
		HasMore: len(items) == spec.PageSize,
	}
}

// Matches reports whether p passes the category, tag and search filters.
func Matches(p *models.Post, spec Spec) bool {
	if spec.Category != "" && spec.Category != AllCategories && p.Category != spec.Category {
		return false
	}
	if spec.Tag != "" && !p.HasTag(spec.Tag) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(spec.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Summary), q) {
			return false
		}
	}
	return true
}

// SortPosts orders posts in place. Latest sorts by publish date
// descending; popular sorts by views, then publish date. Ties keep
// their slug order.
func SortPosts(posts []models.Post, order string) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := &posts[i], &posts[j]
		if order == SortPopular && a.Views != b.Views {
			return a.Views > b.Views
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.Slug < b.Slug
	})
}
