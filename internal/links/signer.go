// Package links issues and verifies time-limited signed download URLs for
// archived artifacts. A link grants read access without further
// authentication, so the signature covers both the artifact path and the
// expiry timestamp.
package links

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
	"github.com/kedbin/ai-devops-journal/internal/models"
)

// DefaultTTL is the validity window for issued links.
const DefaultTTL = 15 * time.Minute

// Signer issues HMAC-signed access links.
type Signer struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewSigner creates a Signer. baseURL is the externally visible prefix for
// download URLs (e.g. "https://host/d"). A non-positive ttl falls back to
// DefaultTTL.
func NewSigner(secret, baseURL string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("links: signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{
		secret:  []byte(secret),
		baseURL: baseURL,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// WithClock overrides the time source. Used by tests to simulate expiry.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Issue produces a fresh access link for path, valid for the configured TTL
// from now. Every call issues a new link; links are never cached.
func (s *Signer) Issue(path string) (models.AccessLink, error) {
	if path == "" {
		return models.AccessLink{}, fmt.Errorf("links: %w: empty path", apperr.ErrStorage)
	}
	expires := s.now().Add(s.ttl)
	sig := s.sign(path, expires.Unix())
	u := fmt.Sprintf("%s/%s?exp=%d&sig=%s", s.baseURL, escapePath(path), expires.Unix(), sig)
	return models.AccessLink{URL: u, ExpiresAt: expires}, nil
}

// Verify checks the signature and expiry for a download request.
// Returns apperr.ErrLinkExpired when the window has passed and
// apperr.ErrInvalidInput when the signature does not match.
func (s *Signer) Verify(path string, exp int64, sig string) error {
	want := s.sign(path, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return fmt.Errorf("links: bad signature for %s: %w", path, apperr.ErrInvalidInput)
	}
	if s.now().After(time.Unix(exp, 0)) {
		return fmt.Errorf("links: %w", apperr.ErrLinkExpired)
	}
	return nil
}

func (s *Signer) sign(path string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(path))
	mac.Write([]byte("\n"))
	mac.Write([]byte(strconv.FormatInt(exp, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// escapePath escapes each path segment while keeping separators readable.
func escapePath(path string) string {
	u := url.URL{Path: path}
	return u.EscapedPath()
}
