// Package casestudy holds the case-study dataset and its display order.
package casestudy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

//go:embed cases.yaml
var builtin []byte

// Catalog is an immutable set of case studies.
type Catalog struct {
	cases []models.CaseStudy
	byID  map[string]int
}

// Default returns the built-in dataset.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("casestudy: built-in dataset: %v", err))
	}
	return c
}

// LoadFile reads a dataset from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case studies: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML dataset.
func Parse(data []byte) (*Catalog, error) {
	var cases []models.CaseStudy
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse case studies: %w", err)
	}
	c := &Catalog{cases: cases, byID: make(map[string]int, len(cases))}
	for i := range cases {
		if err := validateCase(&cases[i]); err != nil {
			return nil, fmt.Errorf("case study %d: %w", i, err)
		}
		if _, dup := c.byID[cases[i].ID]; dup {
			return nil, fmt.Errorf("case study %q: duplicate id", cases[i].ID)
		}
		c.byID[cases[i].ID] = i
	}
	return c, nil
}

func validateCase(cs *models.CaseStudy) error {
	return validation.ValidateStruct(cs,
		validation.Field(&cs.ID, validation.Required),
		validation.Field(&cs.Name, validation.Required),
		validation.Field(&cs.Category, validation.Required),
		validation.Field(&cs.PublishedDate, validation.Required),
	)
}

// All returns a copy of every case study in dataset order.
func (c *Catalog) All() []models.CaseStudy {
	out := make([]models.CaseStudy, len(c.cases))
	copy(out, c.cases)
	return out
}

// Get returns the case study with the given id.
func (c *Catalog) Get(id string) (models.CaseStudy, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.CaseStudy{}, apperr.ErrNotFound
	}
	return c.cases[i], nil
}

// Sorted returns all case studies in display order.
func (c *Catalog) Sorted() []models.CaseStudy {
	return SortByPriority(c.All())
}

// Featured returns featured case studies in display order.
func (c *Catalog) Featured() []models.CaseStudy {
	var out []models.CaseStudy
	for _, cs := range c.Sorted() {
		if cs.Featured {
			out = append(out, cs)
		}
	}
	return out
}

// Related returns up to limit other case studies, same category first.
func (c *Catalog) Related(id string, limit int) []models.CaseStudy {
	cur, err := c.Get(id)
	if err != nil {
		return nil
	}
	var same, other []models.CaseStudy
	for _, cs := range c.Sorted() {
		switch {
		case cs.ID == cur.ID:
		case cs.Category == cur.Category:
			same = append(same, cs)
		default:
			other = append(other, cs)
		}
	}
	out := append(same, other...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortByPriority orders cases in place and returns them: featured
// first, then higher priority, then most recently modified. Full ties
// keep their input order.
func SortByPriority(cases []models.CaseStudy) []models.CaseStudy {
	sort.SliceStable(cases, func(i, j int) bool {
		a, b := &cases[i], &cases[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.LastModified().After(b.LastModified())
	})
	return cases
}
