// Package synthesis asks a generative-text provider to clean a raw
// transcription and synthesize document metadata in a single call.
//
// The resiliency contract: Synthesize never fails. Any provider, parse, or
// validation failure degrades to a fallback entry built from the raw
// transcription, so callers always receive a complete StructuredEntry.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kedbin/ai-devops-journal/internal/models"
	"github.com/kedbin/ai-devops-journal/internal/ocr"
)

const (
	// FallbackTitle marks entries that went through the degraded path.
	FallbackTitle = "Processing Error — Untitled"
	// fallbackTag is the diagnostic tag attached to degraded entries.
	fallbackTag = "processing-error"
	// defaultTitle is used when there was no usable text to enrich.
	defaultTitle = "Untitled Entry"
	// defaultTag is the single tag on default entries.
	defaultTag = "journal"

	maxTitleWords = 10
	maxTags       = 5
)

const systemPrompt = `You are an assistant that cleans up raw text transcribed from a person's handwritten journal and extracts metadata for publishing.

Respond with a single JSON object containing exactly these four keys and nothing else (no prose, no explanation):
- "cleanedText": the transcription with spelling, grammar, punctuation, and capitalization corrected. Keep the original meaning and preserve intentional line breaks.
- "title": a short descriptive title of at most 10 words.
- "date": the entry date in YYYY-MM-DD format if the text mentions one, otherwise an empty string.
- "tags": an array of 3 to 5 lowercase single-word topic tags.`

// Generator issues one generative-text call and returns the raw response.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Synthesizer coordinates the generative provider, response parsing,
// validation, and the fallback policy.
type Synthesizer struct {
	gen Generator
	now func() time.Time
}

// New creates a Synthesizer around a Generator.
func New(gen Generator) *Synthesizer {
	return &Synthesizer{gen: gen, now: time.Now}
}

// WithClock overrides the time source used for default and fallback dates.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Synthesize produces a StructuredEntry for the transcription. Empty and
// sentinel transcriptions skip the provider entirely and yield the default
// entry; failures yield the fallback entry carrying the raw transcription.
func (s *Synthesizer) Synthesize(ctx context.Context, transcription models.Transcription, subjectID string) models.StructuredEntry {
	raw := strings.TrimSpace(transcription.Text)

	// Defensive gate: nothing usable to enrich, and the provider must not
	// be called at all.
	if raw == "" || raw == ocr.NoTextSentinel {
		slog.Warn("synthesis: skipping, no usable text",
			slog.String("subject_id", subjectID))
		return s.defaultEntry()
	}

	slog.Info("synthesis: starting enrichment",
		slog.String("subject_id", subjectID),
		slog.Int("input_length", len(raw)))

	start := s.now()
	entry, err := s.synthesizeOnce(ctx, raw)
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("synthesis: enrichment failed, falling back to raw transcription",
			slog.String("subject_id", subjectID),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		return s.fallbackEntry(raw)
	}

	slog.Info("synthesis: enrichment complete",
		slog.String("subject_id", subjectID),
		slog.Duration("elapsed", elapsed),
		slog.Int("output_length", len(entry.CleanedText)))
	return entry
}

func (s *Synthesizer) synthesizeOnce(ctx context.Context, raw string) (models.StructuredEntry, error) {
	user := fmt.Sprintf("Raw transcription:\n---\n%s\n---", raw)

	response, err := s.gen.Generate(ctx, systemPrompt, user)
	if err != nil {
		return models.StructuredEntry{}, fmt.Errorf("provider call: %w", err)
	}

	parsed := extractJSON(response)
	if parsed == nil {
		return models.StructuredEntry{}, fmt.Errorf("no parseable JSON in response (%d bytes)", len(response))
	}

	entry := models.StructuredEntry{
		CleanedText: parsed.CleanedText,
		Title:       clampTitle(parsed.Title),
		Date:        normalizeDate(parsed.Date),
		Tags:        normalizeTags(parsed.Tags),
	}
	if entry.CleanedText == "" || entry.Title == "" || len(entry.Tags) == 0 {
		return models.StructuredEntry{}, fmt.Errorf("incomplete structured result")
	}
	return entry, nil
}

// defaultEntry is returned when there is no text to work with.
func (s *Synthesizer) defaultEntry() models.StructuredEntry {
	return models.StructuredEntry{
		CleanedText: "",
		Title:       defaultTitle,
		Date:        s.now().UTC().Format("2006-01-02"),
		Tags:        []string{defaultTag},
	}
}

// fallbackEntry preserves the raw transcription when enrichment fails:
// an unembellished document beats a hard failure.
func (s *Synthesizer) fallbackEntry(raw string) models.StructuredEntry {
	return models.StructuredEntry{
		CleanedText: raw,
		Title:       FallbackTitle,
		Date:        s.now().UTC().Format("2006-01-02"),
		Tags:        []string{fallbackTag},
	}
}

func clampTitle(title string) string {
	words := strings.Fields(title)
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	return strings.Join(words, " ")
}

func normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ""
	}
	return date
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, t := range tags {
		fields := strings.Fields(strings.ToLower(strings.TrimSpace(t)))
		if len(fields) == 0 {
			continue
		}
		tag := fields[0]
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
