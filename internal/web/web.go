// Package web renders the server-side HTML pages: posts, case studies
// and the not-found page. Every page head carries the synthesized
// metadata and the JSON-LD graph.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/seo"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	postTmpl     = template.Must(template.ParseFS(templateFS, "templates/post.html", "templates/head.html"))
	caseTmpl     = template.Must(template.ParseFS(templateFS, "templates/case.html"))
	notFoundTmpl = template.Must(template.ParseFS(templateFS, "templates/notfound.html"))
)

// Renderer writes HTML pages for one site.
type Renderer struct {
	site seo.Site
	loc  *time.Location
}

// NewRenderer creates a Renderer. Dates are shown in loc; nil means UTC.
func NewRenderer(site seo.Site, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{site: site, loc: loc}
}

type postPage struct {
	Lang      string
	Meta      seo.Metadata
	LD        template.JS
	Crumbs    []seo.Crumb
	Post      *models.Post
	Published time.Time
	Body      template.HTML
	Related   []models.Post
}

type casePage struct {
	Lang      string
	SiteName  string
	Canonical string
	LD        template.JS
	Case      models.CaseStudy
	Related   []models.CaseStudy
}

type notFoundPage struct {
	Lang     string
	SiteName string
}

// Post renders a blog post page.
func (r *Renderer) Post(w io.Writer, d *postservice.PostDetail) error {
	// Post content is HTML produced by the Markdown or Portable Text renderer.
	return render(w, postTmpl, "post.html", postPage{
		Lang:      r.site.Language,
		Meta:      d.Metadata,
		LD:        scriptBody(d.StructuredData),
		Crumbs:    d.Breadcrumbs,
		Post:      d.Post,
		Published: d.Post.PublishedAt.In(r.loc),
		Body:      template.HTML(d.Post.Content),
		Related:   d.Related,
	})
}

// Case renders a case-study page.
func (r *Renderer) Case(w io.Writer, d *postservice.CaseDetail) error {
	return render(w, caseTmpl, "case.html", casePage{
		Lang:      r.site.Language,
		SiteName:  r.site.Name,
		Canonical: r.site.CaseURL(d.Case.ID),
		LD:        scriptBody(d.StructuredData),
		Case:      d.Case,
		Related:   d.Related,
	})
}

// NotFound renders the not-found page.
func (r *Renderer) NotFound(w io.Writer) error {
	return render(w, notFoundTmpl, "notfound.html", notFoundPage{Lang: r.site.Language, SiteName: r.site.Name})
}

// render buffers the page; nothing is written when execution fails.
func render(w io.Writer, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func scriptBody(raw []byte) template.JS {
	return template.JS(strings.ReplaceAll(string(raw), "</", `<\/`))
}
