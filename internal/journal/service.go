// Package journal implements the capture pipeline orchestrator: one image
// in, one published document with a retrievable link out.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
	"github.com/kedbin/ai-devops-journal/internal/checksum"
	"github.com/kedbin/ai-devops-journal/internal/document"
	"github.com/kedbin/ai-devops-journal/internal/index"
	"github.com/kedbin/ai-devops-journal/internal/models"
	"github.com/kedbin/ai-devops-journal/internal/ocr"
	"github.com/kedbin/ai-devops-journal/internal/storage"
)

// Synthesizer is the pipeline-facing contract for the enrichment stage.
// Implementations never fail; they degrade internally (see synthesis package).
type Synthesizer interface {
	Synthesize(ctx context.Context, transcription models.Transcription, subjectID string) models.StructuredEntry
}

// LinkIssuer produces fresh time-limited access links for stored artifacts.
type LinkIssuer interface {
	Issue(path string) (models.AccessLink, error)
}

// EventCallback is invoked after a successful pipeline run, outside the
// request's failure path.
type EventCallback func(kind, path string)

// Service sequences the pipeline stages and owns the failure policy.
// All provider clients are injected once at construction; Service holds no
// per-request state.
type Service struct {
	extractor ocr.Provider
	synth     Synthesizer
	store     storage.Provider
	idx       index.EntryIndex
	signer    LinkIssuer
	notify    EventCallback
	now       func() time.Time
}

// NewService creates the orchestrator. notify may be nil.
func NewService(extractor ocr.Provider, synth Synthesizer, store storage.Provider, idx index.EntryIndex, signer LinkIssuer, notify EventCallback) *Service {
	return &Service{
		extractor: extractor,
		synth:     synth,
		store:     store,
		idx:       idx,
		signer:    signer,
		notify:    notify,
		now:       time.Now,
	}
}

// WithClock overrides the time source used for paths and timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

var subjectIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Process runs the full pipeline for one capture request. Each invocation
// produces a new artifact at a fresh timestamped path; the pipeline is
// deliberately not idempotent across retries.
func (s *Service) Process(ctx context.Context, subjectID, imageBlob string) (*models.CaptureResult, error) {
	if !subjectIDRe.MatchString(subjectID) {
		return nil, fmt.Errorf("journal: bad subject id: %w", apperr.ErrInvalidInput)
	}

	start := s.now()
	slog.Info("pipeline: request received", slog.String("subject_id", subjectID))

	image, err := ocr.DecodeImageBlob(imageBlob)
	if err != nil {
		return nil, err
	}

	// Extract. Failure aborts: without a transcription there is nothing to
	// publish.
	transcription, err := s.extractor.Extract(ctx, image, subjectID)
	if err != nil {
		return nil, s.fail(StageExtract, subjectID, start, err)
	}

	// Synthesize. The adapter never fails; a degraded entry still moves the
	// pipeline forward (see stagePolicies).
	entry := s.synth.Synthesize(ctx, transcription, subjectID)

	// Assemble. Pure and deterministic.
	doc := document.Render(entry)
	content := doc.Bytes()

	// Store. Fatal on failure, and once started it is not cancelled: the
	// archive either holds the complete buffer or nothing.
	path := s.entryPath(subjectID)
	if err := s.store.Write(path, content); err != nil {
		return nil, s.fail(StageStore, subjectID, start, fmt.Errorf("%w: %v", apperr.ErrStorage, err))
	}

	// Index. Supplementary: a failed upsert is recovered by the next sync
	// pass and must not fail a request whose artifact is already durable.
	if err := s.idx.UpsertEntry(index.EntryRow{
		Path:      path,
		Subject:   subjectID,
		Title:     entry.Title,
		Date:      entry.Date,
		Tags:      entry.Tags,
		Checksum:  checksum.Sum(content),
		CreatedAt: s.now(),
	}, entry.CleanedText); err != nil {
		slog.Warn("pipeline: index upsert failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}

	// Issue link. Fatal on failure: a stored document the user cannot reach
	// is a failed request.
	link, err := s.signer.Issue(path)
	if err != nil {
		return nil, s.fail(StageLink, subjectID, start, fmt.Errorf("%w: %v", apperr.ErrStorage, err))
	}

	if s.notify != nil {
		s.notify("created", path)
	}

	slog.Info("pipeline: complete",
		slog.String("subject_id", subjectID),
		slog.String("path", path),
		slog.Duration("elapsed", time.Since(start)))

	return &models.CaptureResult{
		Message:     "Journal entry processed successfully.",
		DownloadURL: link.URL,
		Content:     string(content),
		Path:        path,
		Link:        link,
	}, nil
}

// fail records full diagnostic detail in logs and returns the error for the
// transport layer to map to a generic message.
func (s *Service) fail(stage Stage, subjectID string, start time.Time, err error) error {
	slog.Error("pipeline: stage failed",
		slog.String("stage", string(stage)),
		slog.String("subject_id", subjectID),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("error", err.Error()))
	return fmt.Errorf("journal: %s stage: %w", stage, err)
}

// entryPath builds the collision-resistant artifact path
// uploads/<subject>/journal-<sanitized ISO timestamp>.md.
func (s *Service) entryPath(subjectID string) string {
	ts := s.now().UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("uploads/%s/journal-%s.md", subjectID, ts)
}

// ListEntries returns a subject's indexed entries, newest first.
func (s *Service) ListEntries(_ context.Context, subjectID string, limit, offset int, tag string) ([]index.EntryRow, int, error) {
	return s.idx.ListEntries(subjectID, limit, offset, tag)
}

// Search runs full-text search over a subject's entries.
func (s *Service) Search(_ context.Context, subjectID, query string, limit int) ([]index.SearchResult, error) {
	return s.idx.Search(subjectID, query, limit)
}

// GetEntry reads one of the subject's archived documents. Paths outside the
// subject's namespace are treated as not found rather than forbidden, so the
// existence of other subjects' entries is not revealed.
func (s *Service) GetEntry(_ context.Context, subjectID, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "uploads/"+subjectID+"/") {
		return nil, apperr.ErrNotFound
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
