package seo

import "strings"

// SegmentLabels names the site sections shown in breadcrumbs.
var SegmentLabels = map[string]string{
	"blog":                  "行銷新知",
	"service":               "服務項目",
	"case":                  "成功案例",
	"team":                  "專業團隊",
	"contact":               "聯絡我們",
	"privacy":               "隱私權政策",
	"medical-ad-compliance": "醫療廣告法規遵循",
}

// HomeLabel is the first breadcrumb item.
const HomeLabel = "首頁"

// Crumb is one breadcrumb entry.
type Crumb struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Crumbs splits path into breadcrumb entries starting at the home page.
// current, when set, names the last entry instead of the segment label.
func Crumbs(site Site, path, current string) []Crumb {
	out := []Crumb{{Name: HomeLabel, URL: site.Base()}}
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	url := site.Base()
	for i, seg := range segments {
		url += "/" + seg
		name, ok := SegmentLabels[seg]
		if !ok {
			name = seg
		}
		if i == len(segments)-1 && current != "" {
			name = current
		}
		out = append(out, Crumb{Name: name, URL: url})
	}
	return out
}

// BreadcrumbNode builds a BreadcrumbList for path under the given @id.
func BreadcrumbNode(site Site, id, path, current string) Node {
	crumbs := Crumbs(site, path, current)
	items := make([]Node, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, Node{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     c.URL,
		})
	}
	return Node{
		"@type":           "BreadcrumbList",
		"@id":             id,
		"itemListElement": items,
	}
}
