package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
)

func newAzureTestClient(t *testing.T, handler http.HandlerFunc) *AzureClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewAzureClient(srv.URL, "test-key", "en", 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestAzureExtract_JoinsBlocksAndLines(t *testing.T) {
	c := newAzureTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("subscription key header = %q", got)
		}
		if got := r.URL.Query().Get("features"); got != "read" {
			t.Errorf("features = %q, want read", got)
		}
		w.Write([]byte(`{"readResult":{"blocks":[
			{"lines":[{"text":"Dear diary,"},{"text":"today it rained."}]},
			{"lines":[{"text":"We walked anyway."}]}
		]}}`))
	})

	tr, err := c.Extract(context.Background(), []byte("img"), "alice")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Dear diary,\ntoday it rained.\n\nWe walked anyway."
	if tr.Text != want {
		t.Errorf("text = %q, want %q", tr.Text, want)
	}
}

func TestAzureExtract_NoBlocksYieldsSentinel(t *testing.T) {
	c := newAzureTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"readResult":{"blocks":[]}}`))
	})
	tr, err := c.Extract(context.Background(), []byte("img"), "alice")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if tr.Text != NoTextSentinel {
		t.Errorf("text = %q, want sentinel", tr.Text)
	}
}

func TestAzureExtract_ProviderError(t *testing.T) {
	c := newAzureTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"InvalidImage","message":"unsupported format"}}`))
	})
	_, err := c.Extract(context.Background(), []byte("img"), "alice")
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	// The raw provider message must not leak into the returned error.
	if got := err.Error(); strings.Contains(got, "unsupported format") || strings.Contains(got, "InvalidImage") {
		t.Errorf("provider detail leaked to caller: %q", got)
	}
}

func TestAzureExtract_Unreachable(t *testing.T) {
	c, err := NewAzureClient("http://127.0.0.1:1", "key", "en", 200*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Extract(context.Background(), []byte("img"), "alice"); !errors.Is(err, apperr.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}
