package content

import (
	"sort"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// Related picks up to limit posts related to current: a shared category
// scores 3 and each shared tag scores 1. Unrelated posts fill the
// remaining slots in the order of all, which is newest first.
func Related(current *models.Post, all []models.Post, limit int) []models.Post {
	if limit <= 0 {
		limit = 3
	}
	type scored struct {
		post  models.Post
		score int
	}
	var hits, rest []scored
	for _, p := range all {
		if p.Slug == current.Slug {
			continue
		}
		score := 0
		if p.Category != "" && p.Category == current.Category {
			score += 3
		}
		for _, t := range p.Tags {
			if current.HasTag(t) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{p, score})
		} else {
			rest = append(rest, scored{p, 0})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]models.Post, 0, limit)
	for _, s := range append(hits, rest...) {
		if len(out) == limit {
			break
		}
		out = append(out, s.post)
	}
	return out
}
