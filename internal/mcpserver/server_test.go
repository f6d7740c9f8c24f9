package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, store := testutil.TestContent(t, map[string]string{
		"seo.md":   testutil.Post("Dental SEO", "2024-05-01", "category: 醫療行銷", "tags: [SEO]"),
		"rules.md": testutil.Post("Ad Rules", "2024-04-01", "tags: [法規]"),
	})
	posts := postservice.New(store,
		postservice.WithIndex(testutil.TestDB(t)),
		postservice.WithLogger(testutil.Quiet))
	if _, err := posts.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	return New(posts, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "search_posts":
		result, err = srv.searchPosts(ctx, req)
	case "read_post":
		result, err = srv.readPost(ctx, req)
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "get_post_seo":
		result, err = srv.getPostSEO(ctx, req)
	case "list_cases":
		result, err = srv.listCases(ctx, req)
	case "get_content_contract":
		result, err = srv.getContentContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadPost(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_post", map[string]any{"slug": "dental-seo"})
	if r.IsError {
		t.Fatalf("read_post error: %s", resultText(r))
	}
	var p struct {
		Slug    string `json:"slug"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Slug != "dental-seo" || !strings.Contains(p.Content, "Body of Dental SEO") {
		t.Errorf("post = %+v", p)
	}
}

func TestReadPostMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_post", map[string]any{"slug": "nope"})
	if !r.IsError {
		t.Error("expected error for missing post")
	}
	r = callTool(t, srv, "read_post", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing slug argument")
	}
}

func TestListPosts(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_posts", map[string]any{"tag": "法規"})
	var res postservice.ListResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Posts) != 1 || res.Posts[0].Slug != "ad-rules" {
		t.Errorf("posts = %+v", res.Posts)
	}
}

func TestSearchPosts(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_posts", map[string]any{"query": "rules"})
	if !strings.Contains(resultText(r), `"slug": "ad-rules"`) {
		t.Errorf("search result = %s", resultText(r))
	}
}

func TestGetPostSEO(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_post_seo", map[string]any{"slug": "dental-seo"})
	var out struct {
		Metadata struct {
			Canonical string `json:"canonical"`
		} `json:"metadata"`
		StructuredData struct {
			Graph []map[string]any `json:"@graph"`
		} `json:"structuredData"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Metadata.Canonical != "https://www.aideamed.com/blog/dental-seo" {
		t.Errorf("canonical = %q", out.Metadata.Canonical)
	}
	if len(out.StructuredData.Graph) == 0 {
		t.Error("empty JSON-LD graph")
	}
}

func TestContentContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_content_contract", nil)
	if resultText(r) != PostFormatContract {
		t.Error("contract tool returned unexpected text")
	}

	contents, err := srv.readPostFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != PostFormatURI {
		t.Errorf("resource = %+v", contents[0])
	}
}

func TestListCases(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_cases", nil)
	if !strings.Contains(resultText(r), `"featured": true`) {
		t.Errorf("cases = %s", resultText(r))
	}

	r = callTool(t, srv, "list_cases", map[string]any{"featured": true})
	if strings.Contains(resultText(r), `"featured": false`) {
		t.Errorf("featured filter returned plain cases: %s", resultText(r))
	}
}
