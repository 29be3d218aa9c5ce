package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kedbin/ai-devops-journal/internal/index"
	"github.com/kedbin/ai-devops-journal/internal/storage"
)

const testDoc = "---\ntitle: \"A Rainy Walk\"\ndate: \"2024-03-01\"\ntags: [\"rain\", \"walk\"]\ndraft: true\n---\n\nWe walked in the rain.\n"

func testServer(t *testing.T) (*Server, storage.Provider, *index.DB) {
	t.Helper()

	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "journal-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(store, db)
	return srv, store, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_entries":
		result, err = srv.searchEntries(ctx, req)
	case "read_entry":
		result, err = srv.readEntry(ctx, req)
	case "list_entries":
		result, err = srv.listEntries(ctx, req)
	case "get_document_contract":
		result, err = srv.getDocumentContract(ctx, req)
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

func seedEntry(t *testing.T, store storage.Provider, db *index.DB, path, subject, title, body string) {
	t.Helper()
	if err := store.Write(path, []byte(testDoc)); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEntry(index.EntryRow{
		Path:    path,
		Subject: subject,
		Title:   title,
		Tags:    []string{"rain"},
	}, body); err != nil {
		t.Fatal(err)
	}
}

func TestReadEntry(t *testing.T) {
	srv, store, _ := testServer(t)
	if err := store.Write("uploads/alice/journal-1.md", []byte(testDoc)); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "read_entry", map[string]interface{}{
		"path": "uploads/alice/journal-1.md",
	})
	if resultText(r) != testDoc {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestReadEntryMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_entry", map[string]interface{}{"path": "uploads/x/nope.md"})
	if !r.IsError {
		t.Error("expected error for missing entry")
	}
}

func TestListEntries(t *testing.T) {
	srv, store, db := testServer(t)
	seedEntry(t, store, db, "uploads/alice/journal-1.md", "alice", "First", "body")
	seedEntry(t, store, db, "uploads/bob/journal-1.md", "bob", "Second", "body")

	r := callTool(t, srv, "list_entries", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "uploads/alice/journal-1.md") || !strings.Contains(text, "uploads/bob/journal-1.md") {
		t.Errorf("list = %q", text)
	}

	// Scoped to one subject.
	r = callTool(t, srv, "list_entries", map[string]interface{}{"subject": "alice"})
	text = resultText(r)
	if strings.Contains(text, "uploads/bob/") {
		t.Errorf("scoped list leaked other subject: %q", text)
	}
}

func TestListEntries_Empty(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "list_entries", map[string]interface{}{})
	if resultText(r) != "no entries" {
		t.Errorf("empty list = %q", resultText(r))
	}
}

func TestSearchEntries(t *testing.T) {
	srv, store, db := testServer(t)
	seedEntry(t, store, db, "uploads/alice/journal-1.md", "alice", "Rainy Walk", "we walked in the rain")

	r := callTool(t, srv, "search_entries", map[string]interface{}{"query": "rain"})
	if !strings.Contains(resultText(r), "uploads/alice/journal-1.md") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestGetDocumentContract(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_document_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Journal Document Format Contract") {
		t.Errorf("contract = %q", text)
	}
	if !strings.Contains(text, "draft: true") {
		t.Error("contract missing draft field")
	}
}
