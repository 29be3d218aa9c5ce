// Package models defines the domain types carried between pipeline stages.
package models

import "time"

// Transcription is the raw text recovered from a journal page image.
type Transcription struct {
	Text     string        `json:"text"`
	Duration time.Duration `json:"-"`
}

// StructuredEntry is the four-field enrichment result synthesized from a
// transcription. All consumers may assume CleanedText, Title, and Tags are
// non-empty: the synthesis adapter substitutes a fallback entry instead of
// returning a partial one.
type StructuredEntry struct {
	CleanedText string   `json:"cleanedText"`
	Title       string   `json:"title"`
	Date        string   `json:"date"` // YYYY-MM-DD, or "" when undetermined
	Tags        []string `json:"tags"`
}

// RenderedDocument is the publication-ready form of a StructuredEntry:
// a front matter block followed by a blank line and the body. Purely derived,
// regenerated on every request.
type RenderedDocument struct {
	FrontMatter string `json:"frontMatter"`
	Body        string `json:"body"`
}

// Bytes returns the full document as stored in the archive.
func (d RenderedDocument) Bytes() []byte {
	return []byte(d.FrontMatter + "\n" + d.Body)
}

// AccessLink is a time-limited capability URL for a stored artifact.
// Never cached past its expiry; a fresh link is issued per request.
type AccessLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CaptureResult is what the transport boundary receives after a successful
// pipeline run.
type CaptureResult struct {
	Message     string     `json:"message"`
	DownloadURL string     `json:"downloadUrl"`
	Content     string     `json:"renderedContent"`
	Path        string     `json:"path"`
	Link        AccessLink `json:"-"`
}

// EntryMetadata is a lightweight representation of an archived entry,
// returned by list operations.
type EntryMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
