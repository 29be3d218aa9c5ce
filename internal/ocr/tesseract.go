package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
	"github.com/kedbin/ai-devops-journal/internal/models"
)

// TesseractEngine recognizes text with a local Tesseract installation.
// Useful for offline development where no Azure resource is available.
type TesseractEngine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed provider.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	return &TesseractEngine{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Extract runs local recognition on the image bytes.
func (e *TesseractEngine) Extract(ctx context.Context, image []byte, subjectID string) (models.Transcription, error) {
	slog.Info("ocr: starting text extraction",
		slog.String("provider", "tesseract"),
		slog.String("subject_id", subjectID),
		slog.Int("image_bytes", len(image)))

	start := time.Now()
	text, err := e.recognize(ctx, image)
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("ocr: extraction failed",
			slog.String("subject_id", subjectID),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		return models.Transcription{}, err
	}

	slog.Info("ocr: extraction complete",
		slog.String("subject_id", subjectID),
		slog.Duration("elapsed", elapsed),
		slog.Int("text_length", len(text)))

	return models.Transcription{Text: text, Duration: elapsed}, nil
}

func (e *TesseractEngine) recognize(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("ocr: set image: %w", apperr.ErrInvalidInput)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("ocr: set languages: %w", apperr.ErrUpstream)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: recognize: %w", apperr.ErrUpstream)
	}
	plain := strings.TrimSpace(text)
	if plain == "" {
		return NoTextSentinel, nil
	}
	return plain, nil
}
