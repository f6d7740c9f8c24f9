package casestudy

import (
	"errors"
	"testing"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func ids(cases []models.CaseStudy) string {
	s := ""
	for _, c := range cases {
		s += c.ID
	}
	return s
}

func TestSortByPriority(t *testing.T) {
	cases := []models.CaseStudy{
		{ID: "A", Featured: false, Priority: 5},
		{ID: "B", Featured: true, Priority: 0},
		{ID: "C", Featured: false, Priority: 1},
	}
	if got := ids(SortByPriority(cases)); got != "BAC" {
		t.Errorf("order = %q, want BAC", got)
	}
}

func TestSortByPriority_RecencyAndStability(t *testing.T) {
	cases := []models.CaseStudy{
		{ID: "old", PublishedDate: day(1)},
		{ID: "updated", PublishedDate: day(1), UpdatedDate: day(20)},
		{ID: "tie1", PublishedDate: day(10)},
		{ID: "tie2", PublishedDate: day(10)},
		{ID: "new", PublishedDate: day(15)},
	}
	if got := ids(SortByPriority(cases)); got != "updatednewtie1tie2old" {
		t.Errorf("order = %q", got)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	all := c.All()
	if len(all) < 2 {
		t.Fatalf("dataset has %d entries", len(all))
	}

	got, err := c.Get("artisticdc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "雅德思牙醫診所" || got.Category != "品牌重塑" || !got.Featured {
		t.Errorf("artisticdc = %+v", got)
	}
	if !got.UpdatedDate.Equal(time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("updatedDate = %v", got.UpdatedDate)
	}

	if _, err := c.Get("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get(nope) = %v, want ErrNotFound", err)
	}

	all[0].Name = "mutated"
	if again, _ := c.Get(all[0].ID); again.Name == "mutated" {
		t.Error("All must return a copy")
	}
}

func TestCatalog_SortedFeaturedFirst(t *testing.T) {
	sorted := Default().Sorted()
	seenPlain := false
	for _, cs := range sorted {
		if !cs.Featured {
			seenPlain = true
		} else if seenPlain {
			t.Fatalf("featured %q after non-featured", cs.ID)
		}
	}
}

func TestCatalog_Related(t *testing.T) {
	rel := Default().Related("artisticdc", 3)
	if len(rel) != 3 {
		t.Fatalf("related = %d", len(rel))
	}
	for _, cs := range rel {
		if cs.ID == "artisticdc" {
			t.Error("related includes the case itself")
		}
	}
	if rel[0].Category != "品牌重塑" {
		t.Errorf("first related category = %q", rel[0].Category)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing name": "- {id: a, category: x, publishedDate: 2024-01-01T00:00:00Z}",
		"duplicate":    "- {id: a, name: A, category: x, publishedDate: 2024-01-01T00:00:00Z}\n- {id: a, name: B, category: x, publishedDate: 2024-01-01T00:00:00Z}",
		"bad yaml":     "- id: [",
	}
	for name, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
