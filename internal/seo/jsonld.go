package seo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

const schemaContext = "https://schema.org"

// Node is one schema.org entity. Maps marshal with sorted keys, which
// keeps the output byte-stable.
type Node map[string]any

// Ref points at a node emitted elsewhere in the same graph.
func Ref(id string) Node {
	return Node{"@id": id}
}

// Graph is a JSON-LD document with cross-referenced nodes.
type Graph struct {
	Context string `json:"@context"`
	Nodes   []Node `json:"@graph"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Context: schemaContext}
}

// Add appends nodes, skipping nil ones.
func (g *Graph) Add(nodes ...Node) {
	for _, n := range nodes {
		if n != nil {
			g.Nodes = append(g.Nodes, n)
		}
	}
}

// Find returns the node with the given @id.
func (g *Graph) Find(id string) Node {
	for _, n := range g.Nodes {
		if n["@id"] == id {
			return n
		}
	}
	return nil
}

// FindType returns the first node of the given @type.
func (g *Graph) FindType(typ string) Node {
	for _, n := range g.Nodes {
		if n["@type"] == typ {
			return n
		}
	}
	return nil
}

// IDs returns every @id defined in the graph, nested entities included.
func (g *Graph) IDs() []string {
	defined, _ := g.scan()
	ids := make([]string, 0, len(defined))
	for id := range defined {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DanglingRefs returns references whose target is not defined in the graph.
func (g *Graph) DanglingRefs() []string {
	defined, refs := g.scan()
	var out []string
	for _, r := range refs {
		if _, ok := defined[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}

func (g *Graph) scan() (map[string]struct{}, []string) {
	defined := make(map[string]struct{})
	var refs []string
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case Node:
			walk(map[string]any(t))
		case map[string]any:
			if id, ok := t["@id"].(string); ok {
				if len(t) == 1 {
					refs = append(refs, id)
				} else {
					defined[id] = struct{}{}
				}
			}
			for _, child := range t {
				walk(child)
			}
		case []Node:
			for _, child := range t {
				walk(child)
			}
		case []any:
			for _, child := range t {
				walk(child)
			}
		}
	}
	for _, n := range g.Nodes {
		walk(n)
	}
	return defined, refs
}

// JSON renders the graph.
func (g *Graph) JSON() ([]byte, error) {
	return json.Marshal(g)
}

// ScriptBody renders the graph for embedding in a
// <script type="application/ld+json"> element.
func (g *Graph) ScriptBody() (string, error) {
	b, err := g.JSON()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(b), "</", `<\/`), nil
}

// Entity ids.
func organizationID(site Site) string { return site.Base() + "/#organization" }
func websiteID(site Site) string      { return site.Base() + "/#website" }

// OrganizationNode describes the publisher.
func OrganizationNode(site Site) Node {
	n := Node{
		"@type": "Organization",
		"@id":   organizationID(site),
		"name":  site.Name,
		"url":   site.Base(),
		"logo": Node{
			"@type": "ImageObject",
			"url":   site.Absolute(site.Logo),
		},
	}
	if len(site.SameAs) > 0 {
		n["sameAs"] = append([]string(nil), site.SameAs...)
	}
	if site.Phone != "" || site.Email != "" {
		n["contactPoint"] = Node{
			"@type":             "ContactPoint",
			"telephone":         site.Phone,
			"email":             site.Email,
			"contactType":       "customer service",
			"availableLanguage": []string{"zh-TW"},
		}
	}
	return n
}

// WebSiteNode describes the site as a whole.
func WebSiteNode(site Site) Node {
	return Node{
		"@type":      "WebSite",
		"@id":        websiteID(site),
		"url":        site.Base(),
		"name":       site.Name,
		"inLanguage": site.Language,
		"publisher":  Ref(organizationID(site)),
	}
}

// BuildPostGraph assembles the JSON-LD graph of a blog post page. FAQ
// and HowTo nodes are emitted only when blocks carries them.
func BuildPostGraph(site Site, p *models.Post, blocks SemanticBlocks) *Graph {
	canonical := site.PostURL(p.Slug)
	pageID := canonical + "#webpage"
	articleID := canonical + "#article"
	crumbID := canonical + "#breadcrumb"
	desc := Description(p)
	image := site.Absolute(p.CoverImage)

	page := Node{
		"@type":         "WebPage",
		"@id":           pageID,
		"url":           canonical,
		"name":          p.Title,
		"description":   desc,
		"isPartOf":      Ref(websiteID(site)),
		"breadcrumb":    Ref(crumbID),
		"inLanguage":    site.Language,
		"datePublished": formatTime(p.PublishedAt),
		"dateModified":  formatTime(modified(p)),
	}
	if image != "" {
		page["primaryImageOfPage"] = Node{"@type": "ImageObject", "url": image}
	}

	author := Node{
		"@type": "Person",
		"name":  p.Author.Name,
		"url":   site.Base() + "/team",
	}
	if p.Author.Title != "" {
		author["jobTitle"] = p.Author.Title
	}
	if p.Author.Avatar != "" {
		author["image"] = site.Absolute(p.Author.Avatar)
	}
	if len(p.Author.Expertise) > 0 {
		author["knowsAbout"] = append([]string(nil), p.Author.Expertise...)
	}

	category := p.Category
	if category == "" {
		category = site.DefaultCategory
	}
	article := Node{
		"@type":            "BlogPosting",
		"@id":              articleID,
		"headline":         p.Title,
		"description":      desc,
		"datePublished":    formatTime(p.PublishedAt),
		"dateModified":     formatTime(modified(p)),
		"author":           author,
		"publisher":        Ref(organizationID(site)),
		"mainEntityOfPage": Ref(pageID),
		"isPartOf":         Ref(pageID),
		"articleSection":   category,
		"inLanguage":       site.Language,
		"wordCount":        len(strings.Fields(StripHTML(p.Content))),
	}
	if image != "" {
		article["image"] = []string{image}
	}
	if len(p.Tags) > 0 {
		article["keywords"] = strings.Join(p.Tags, ", ")
	}
	if p.ReadTime > 0 {
		article["timeRequired"] = fmt.Sprintf("PT%dM", p.ReadTime)
	}

	g := NewGraph()
	g.Add(
		OrganizationNode(site),
		WebSiteNode(site),
		page,
		article,
		BreadcrumbNode(site, crumbID, "/blog/"+p.Slug, p.Title),
		faqNode(canonical, pageID, blocks.FAQ),
		howToNode(canonical, pageID, blocks.HowTo),
	)
	return g
}

func faqNode(canonical, pageID string, faq *FAQ) Node {
	if faq == nil || len(faq.Items) == 0 {
		return nil
	}
	questions := make([]Node, 0, len(faq.Items))
	for _, qa := range faq.Items {
		questions = append(questions, Node{
			"@type": "Question",
			"name":  qa.Question,
			"acceptedAnswer": Node{
				"@type": "Answer",
				"text":  qa.Answer,
			},
		})
	}
	n := Node{
		"@type":      "FAQPage",
		"@id":        canonical + "#faq-data",
		"mainEntity": questions,
		"isPartOf":   Ref(pageID),
	}
	if faq.Title != "" {
		n["name"] = faq.Title
	}
	return n
}

func howToNode(canonical, pageID string, h *HowTo) Node {
	if h == nil || len(h.Steps) == 0 {
		return nil
	}
	steps := make([]Node, 0, len(h.Steps))
	for _, s := range h.Steps {
		step := Node{
			"@type":    "HowToStep",
			"position": s.Position,
			"name":     s.Name,
			"url":      fmt.Sprintf("%s#step-%d", canonical, s.Position),
		}
		if s.Text != "" {
			step["text"] = s.Text
		}
		steps = append(steps, step)
	}
	n := Node{
		"@type":            "HowTo",
		"@id":              canonical + "#howto",
		"name":             h.Name,
		"totalTime":        h.TotalTime,
		"step":             steps,
		"mainEntityOfPage": Ref(pageID),
	}
	if h.Intro != "" {
		n["description"] = h.Intro
	}
	return n
}

// BuildCaseStudyGraph assembles the JSON-LD graph of a case study page.
func BuildCaseStudyGraph(site Site, c *models.CaseStudy) *Graph {
	canonical := site.CaseURL(c.ID)
	pageID := canonical + "#webpage"
	crumbID := canonical + "#breadcrumb"

	page := Node{
		"@type":      "WebPage",
		"@id":        pageID,
		"url":        canonical,
		"name":       c.Name,
		"isPartOf":   Ref(websiteID(site)),
		"breadcrumb": Ref(crumbID),
		"inLanguage": site.Language,
	}
	article := Node{
		"@type":            "Article",
		"@id":              canonical + "#article",
		"headline":         fmt.Sprintf("%s - %s成功案例", c.Name, c.Category),
		"description":      c.Description,
		"datePublished":    formatTime(c.PublishedDate),
		"dateModified":     formatTime(c.LastModified()),
		"author":           Ref(organizationID(site)),
		"publisher":        Ref(organizationID(site)),
		"mainEntityOfPage": Ref(pageID),
		"articleSection":   c.Category,
		"keywords":         []string{"牙醫行銷", "診所品牌", c.Category, "醫療行銷", "成功案例"},
	}
	if c.Image != "" {
		article["image"] = site.Absolute(c.Image)
	}

	g := NewGraph()
	g.Add(
		OrganizationNode(site),
		WebSiteNode(site),
		page,
		article,
		BreadcrumbNode(site, crumbID, "/case/"+c.ID, c.Name),
	)
	return g
}
