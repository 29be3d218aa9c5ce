package links

import (
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSigner("secret", "http://localhost:8080/d", 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	s.WithClock(fixedClock(issued))

	link, err := s.Issue("uploads/alice/journal-x.md")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got, want := link.ExpiresAt, issued.Add(15*time.Minute); !got.Equal(want) {
		t.Errorf("expiry = %v, want %v", got, want)
	}

	u, err := url.Parse(link.URL)
	if err != nil {
		t.Fatalf("issued URL unparseable: %v", err)
	}
	exp, err := strconv.ParseInt(u.Query().Get("exp"), 10, 64)
	if err != nil {
		t.Fatalf("exp param: %v", err)
	}
	if err := s.Verify("uploads/alice/journal-x.md", exp, u.Query().Get("sig")); err != nil {
		t.Errorf("verify within window: %v", err)
	}

	// Past the window the same link must be rejected.
	s.WithClock(fixedClock(issued.Add(16 * time.Minute)))
	if err := s.Verify("uploads/alice/journal-x.md", exp, u.Query().Get("sig")); !errors.Is(err, apperr.ErrLinkExpired) {
		t.Errorf("expected ErrLinkExpired, got %v", err)
	}
}

func TestVerify_BadSignature(t *testing.T) {
	s, _ := NewSigner("secret", "http://localhost/d", time.Minute)
	err := s.Verify("uploads/a/b.md", time.Now().Add(time.Minute).Unix(), "deadbeef")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestVerify_TamperedPath(t *testing.T) {
	s, _ := NewSigner("secret", "http://localhost/d", time.Minute)
	link, err := s.Issue("uploads/alice/journal-x.md")
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse(link.URL)
	exp, _ := strconv.ParseInt(u.Query().Get("exp"), 10, 64)
	if err := s.Verify("uploads/bob/journal-x.md", exp, u.Query().Get("sig")); err == nil {
		t.Error("signature accepted for a different path")
	}
}

func TestIssue_FreshLinkPerCall(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Second)}
	i := 0
	s, _ := NewSigner("secret", "http://localhost/d", time.Minute)
	s.WithClock(func() time.Time { t := times[i]; i++; return t })

	a, _ := s.Issue("uploads/a/b.md")
	b, _ := s.Issue("uploads/a/b.md")
	if a.URL == b.URL {
		t.Error("expected distinct links for sequential issues")
	}
}

func TestNewSigner_RequiresSecret(t *testing.T) {
	if _, err := NewSigner("", "http://localhost/d", time.Minute); err == nil {
		t.Error("expected error for empty secret")
	}
}
