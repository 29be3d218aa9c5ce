// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only journal archive tools via stdio transport.
//
// The capture pipeline is the only writer; the tools here deliberately offer
// no create, update, or delete operations.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kedbin/ai-devops-journal/internal/index"
	"github.com/kedbin/ai-devops-journal/internal/storage"
)

// Server wraps the MCP server with journal archive tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    index.EntryIndex
}

// New creates a new MCP server with all journal tools registered.
func New(store storage.Provider, db index.EntryIndex) *Server {
	s := &Server{store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Journal",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through journal entry content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("subject", mcp.Description("Optional subject id to scope the search (empty for all)")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read the full Markdown content of an archived journal entry."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Entry path (e.g. uploads/alice/journal-2025-01-20T08-12-30-000Z.md)")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List archived journal entries, newest first."),
		mcp.WithString("subject", mcp.Description("Optional subject id to scope the listing (empty for all)")),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the canonical journal document format contract. "+
			"Call this before interpreting entry content."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("journal://document-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical Markdown document format produced by the capture pipeline."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
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

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject := ""
	if v, err := req.RequireString("subject"); err == nil {
		subject = v
	}
	results, err := s.db.Search(subject, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject := ""
	if v, err := req.RequireString("subject"); err == nil {
		subject = v
	}
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}

	rows, _, err := s.db.ListEntries(subject, 200, 0, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s", r.Path, r.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no entries"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "journal://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
