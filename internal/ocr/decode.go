package ocr

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
)

var dataURIPrefixRe = regexp.MustCompile(`^data:image/\w+;base64,`)

// DecodeImageBlob turns the transport-level image blob (base64, optionally
// prefixed with a data-URI scheme tag) into raw image bytes.
func DecodeImageBlob(blob string) ([]byte, error) {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return nil, fmt.Errorf("ocr: empty image blob: %w", apperr.ErrInvalidInput)
	}
	trimmed = dataURIPrefixRe.ReplaceAllString(trimmed, "")
	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("ocr: malformed image blob: %w", apperr.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ocr: empty image payload: %w", apperr.ErrInvalidInput)
	}
	return data, nil
}
