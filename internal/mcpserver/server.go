// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only Aidea:Med content tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/query"
)

// PostFormatURI is the resource URI of the post format contract.
const PostFormatURI = "aidea://post-format"

// Server wraps the MCP server with content tools.
type Server struct {
	mcp   *server.MCPServer
	posts *postservice.Service
}

// New creates a new MCP server with all content tools registered.
func New(posts *postservice.Service, version string) *Server {
	s := &Server{posts: posts}

	s.mcp = server.NewMCPServer(
		"Aidea:Med content",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through blog post titles, summaries and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read one blog post with its rendered HTML content."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug, e.g. dental-seo-guide")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List blog posts newest first, with optional filters and pagination."),
		mcp.WithString("category", mcp.Description("Category title, or all")),
		mcp.WithString("tag", mcp.Description("Exact tag")),
		mcp.WithString("q", mcp.Description("Case-insensitive title or summary substring")),
		mcp.WithString("sort", mcp.Description("latest (default) or popular")),
		mcp.WithNumber("page", mcp.Description("1-based page number")),
		mcp.WithNumber("pageSize", mcp.Description("Posts per page (default 9)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post_seo",
		mcp.WithDescription("Return the page metadata and the schema.org JSON-LD graph of a post."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
	), s.getPostSEO)

	s.mcp.AddTool(mcp.NewTool("list_cases",
		mcp.WithDescription("List case studies in display order, featured first."),
		mcp.WithBoolean("featured", mcp.Description("Only featured case studies")),
	), s.listCases)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the Markdown post format contract. "+
			"Call this before drafting a post for the content directory."),
	), s.getContentContract)

	// Resource: post format contract.
	s.mcp.AddResource(
		mcp.NewResource(PostFormatURI, "Post Format Contract",
			mcp.WithResourceDescription("Front matter and semantic block format of blog posts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.posts.Search(ctx, q, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.posts.GetPost(ctx, slug)
	if err != nil {
		if postservice.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d.Post)
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec := query.Spec{
		Category: req.GetString("category", ""),
		Tag:      req.GetString("tag", ""),
		Search:   req.GetString("q", ""),
		Sort:     req.GetString("sort", ""),
		Page:     req.GetInt("page", 1),
		PageSize: req.GetInt("pageSize", 0),
	}
	res := s.posts.ListPosts(ctx, spec)
	if res.Error != "" {
		return mcp.NewToolResultError(res.Error), nil
	}
	return jsonResult(res)
}

func (s *Server) getPostSEO(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.posts.GetPost(ctx, slug)
	if err != nil {
		if postservice.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"metadata":       d.Metadata,
		"structuredData": d.StructuredData,
	})
}

func (s *Server) listCases(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.posts.Cases(req.GetBool("featured", false)))
}

func (s *Server) getContentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PostFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
