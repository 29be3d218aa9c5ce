// Package ocr adapts external text recognition capabilities to the pipeline.
package ocr

import (
	"context"

	"github.com/kedbin/ai-devops-journal/internal/models"
)

// NoTextSentinel is returned instead of an empty transcription when the
// provider recognizes zero text blocks, so downstream stages can
// short-circuit deterministically.
const NoTextSentinel = "No text found in the image."

// Provider turns decoded image bytes into a plain-text transcription.
// Implementations make exactly one provider call per invocation, no retry.
type Provider interface {
	Extract(ctx context.Context, image []byte, subjectID string) (models.Transcription, error)
}
