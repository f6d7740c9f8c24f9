package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

func TestBuildPostGraph_NoBlocks(t *testing.T) {
	site := DefaultSite()
	p := samplePost()
	g := BuildPostGraph(site, p, ExtractSemanticBlocks(p.Content))

	assert.Nil(t, g.FindType("FAQPage"))
	assert.Nil(t, g.FindType("HowTo"))
	assert.Empty(t, g.DanglingRefs())

	article := g.Find(site.PostURL(p.Slug) + "#article")
	require.NotNil(t, article)
	assert.Equal(t, "BlogPosting", article["@type"])
	assert.Equal(t, Ref(site.PostURL(p.Slug)+"#webpage"), article["mainEntityOfPage"])
	assert.Equal(t, "PT5M", article["timeRequired"])

	for _, id := range g.IDs() {
		assert.True(t, strings.HasPrefix(id, site.Base()), "id %q outside base", id)
	}
}

func TestBuildPostGraph_WithBlocks(t *testing.T) {
	site := DefaultSite()
	p := samplePost()
	p.Content = faqHTML + `<div class="step-guide"><h3>步驟</h3><div class="step"><h4>一</h4><p>x</p></div></div>`
	g := BuildPostGraph(site, p, ExtractSemanticBlocks(p.Content))

	canonical := site.PostURL(p.Slug)
	faq := g.Find(canonical + "#faq-data")
	require.NotNil(t, faq)
	assert.Len(t, faq["mainEntity"], 2)

	howto := g.Find(canonical + "#howto")
	require.NotNil(t, howto)
	assert.Equal(t, "PT15M", howto["totalTime"])

	assert.Empty(t, g.DanglingRefs())
}

func TestGraph_DanglingRefsDetected(t *testing.T) {
	g := NewGraph()
	g.Add(Node{"@type": "WebPage", "@id": "https://x/#webpage", "about": Ref("https://x/#service")})
	assert.Equal(t, []string{"https://x/#service"}, g.DanglingRefs())
}

func TestBuildPostGraph_Deterministic(t *testing.T) {
	site := DefaultSite()
	p := samplePost()
	a, err := BuildPostGraph(site, p, SemanticBlocks{}).JSON()
	require.NoError(t, err)
	b, err := BuildPostGraph(site, p, SemanticBlocks{}).JSON()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(a, &decoded))
	assert.Equal(t, "https://schema.org", decoded["@context"])
}

func TestScriptBodyEscapesClosingTags(t *testing.T) {
	p := samplePost()
	p.Title = "</script><script>alert(1)</script>"
	body, err := BuildPostGraph(DefaultSite(), p, SemanticBlocks{}).ScriptBody()
	require.NoError(t, err)
	assert.NotContains(t, body, "</script>")
}

func TestBuildCaseStudyGraph(t *testing.T) {
	site := DefaultSite()
	c := &models.CaseStudy{
		ID: "artisticdc", Name: "雅德思牙醫診所", Category: "品牌重塑",
		PublishedDate: time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
	}
	g := BuildCaseStudyGraph(site, c)
	assert.Empty(t, g.DanglingRefs())
	article := g.FindType("Article")
	require.NotNil(t, article)
	assert.Equal(t, "雅德思牙醫診所 - 品牌重塑成功案例", article["headline"])
	assert.Equal(t, "2023-08-15T00:00:00Z", article["dateModified"])
}

func TestCrumbs(t *testing.T) {
	site := DefaultSite()
	got := Crumbs(site, "/service/medical-ad-compliance", "")
	require.Len(t, got, 3)
	assert.Equal(t, "首頁", got[0].Name)
	assert.Equal(t, "服務項目", got[1].Name)
	assert.Equal(t, "醫療廣告法規遵循", got[2].Name)
	assert.Equal(t, "https://www.aideamed.com/service/medical-ad-compliance", got[2].URL)

	got = Crumbs(site, "/blog/x", "文章標題")
	assert.Equal(t, "文章標題", got[2].Name)
}
