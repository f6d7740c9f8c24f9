package cms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{ProjectID: "p", APIHost: srv.URL})
}

const postsPayload = `{"result":[
 {"_id":"a1","title":"植牙行銷","slug":"implant-marketing","publishedAt":"2024-02-01T00:00:00Z",
  "excerpt":"摘要","categories":[{"title":"數位行銷","slug":"digital"}],
  "author":{"name":"林顧問"},
  "content":[{"_type":"block","style":"h2","children":[{"_type":"span","text":"標題"}]},
             {"_type":"block","style":"normal","markDefs":[{"_key":"k1","_type":"link","href":"https://x.test"}],
              "children":[{"_type":"span","text":"粗體","marks":["strong"]},{"_type":"span","text":"連結","marks":["k1"]}]}]},
 {"_id":"b2","title":"","publishedAt":"2024-01-01"}
]}`

func TestPosts(t *testing.T) {
	var gotPath, gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(postsPayload))
	})

	docs, skipped, err := c.Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Empty(t, skipped)
	assert.Equal(t, "/v2024-03-06/data/query/production", gotPath)
	assert.Contains(t, gotQuery, `status == "published"`)

	p, err := docs[0].ToPost(parser.NewDefaults())
	require.NoError(t, err)
	assert.Equal(t, "implant-marketing", p.Slug)
	assert.Equal(t, "數位行銷", p.Category)
	assert.Equal(t, "林顧問", p.Author.Name)
	assert.Equal(t, "/images/blog/default.jpg", p.CoverImage)
	assert.Contains(t, p.Content, "<h2>標題</h2>")
	assert.Contains(t, p.Content, "<strong>粗體</strong>")
	assert.Contains(t, p.Content, `<a href="https://x.test">連結</a>`)
	assert.Equal(t, 1, p.ReadTime)

	_, err = docs[1].ToPost(parser.NewDefaults())
	assert.ErrorIs(t, err, apperr.ErrMalformedEntry)
}

func TestPostsBySlug_LowercasesParam(t *testing.T) {
	var slugParam string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		slugParam = r.URL.Query().Get("$slug")
		_, _ = w.Write([]byte(`{"result":[]}`))
	})
	docs, skipped, err := c.PostsBySlug(context.Background(), "My-Post")
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Empty(t, skipped)
	assert.Equal(t, `"my-post"`, slugParam)
}

func TestPosts_SkipsUndecodableDocuments(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":[
 {"_id":"good","title":"Good","publishedAt":"2024-01-01"},
 {"_id":"bad","title":"Bad","publishedAt":"2024-01-01","readingTime":"5"}]}`))
	})
	docs, skipped, err := c.Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good", docs[0].ID)
	require.Len(t, skipped, 1)
	assert.Equal(t, "bad", skipped[0].ID)
	assert.Equal(t, 1, skipped[0].Index)
}

func TestPosts_ProjectsImageAssetURL(t *testing.T) {
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`{"result":[{"_id":"i","title":"Img","publishedAt":"2024-01-01",
 "content":[{"_type":"image","alt":"診間","asset":{"url":"https://cdn.test/a.jpg"}}]}]}`))
	})
	docs, _, err := c.Posts(context.Background())
	require.NoError(t, err)
	assert.Contains(t, gotQuery, `asset->{url}`)

	p, err := docs[0].ToPost(parser.NewDefaults())
	require.NoError(t, err)
	assert.Contains(t, p.Content, `<img src="https://cdn.test/a.jpg" alt="診間">`)
}

func TestQuery_Unavailable(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"description":"boom"}}`))
	})
	_, _, err := c.Posts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrSourceUnavailable)
	assert.True(t, strings.Contains(err.Error(), "boom"))
}

func TestQuery_NetworkFailure(t *testing.T) {
	c := NewClient(Config{ProjectID: "p", APIHost: "http://127.0.0.1:1"})
	_, err := c.Categories(context.Background())
	assert.ErrorIs(t, err, apperr.ErrSourceUnavailable)
}

func TestEndpointHosts(t *testing.T) {
	c := NewClient(Config{ProjectID: "proj", UseCDN: true})
	assert.Equal(t, "https://proj.apicdn.sanity.io/v2024-03-06/data/query/production", c.endpoint())

	c = NewClient(Config{ProjectID: "proj", UseCDN: true, Token: "t", Dataset: "staging"})
	assert.Equal(t, "https://proj.api.sanity.io/v2024-03-06/data/query/staging", c.endpoint())
}

func TestRenderBlocks_Lists(t *testing.T) {
	out := RenderBlocks([]Block{
		{Type: "block", ListItem: "bullet", Children: []Span{{Text: "a"}}},
		{Type: "block", ListItem: "bullet", Children: []Span{{Text: "b"}}},
		{Type: "block", ListItem: "number", Children: []Span{{Text: "c"}}},
		{Type: "block", Style: "normal", Children: []Span{{Text: "<x>"}}},
		{Type: "image", URL: "/i.jpg", Alt: "圖", Caption: "說明"},
		{Type: "unknown"},
	})
	want := "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n<ol>\n<li>c</li>\n</ol>\n<p>&lt;x&gt;</p>\n" +
		`<figure><img src="/i.jpg" alt="圖"><figcaption>說明</figcaption></figure>` + "\n"
	assert.Equal(t, want, out)
}

func TestToPost_MarkdownStringContent(t *testing.T) {
	d := Document{ID: "x", Title: "T", PublishedAt: "2024-01-01", Content: []byte(`"**hi**"`)}
	p, err := d.ToPost(parser.NewDefaults())
	require.NoError(t, err)
	assert.Contains(t, p.Content, "<strong>hi</strong>")
	assert.Equal(t, "t", p.Slug)
}
