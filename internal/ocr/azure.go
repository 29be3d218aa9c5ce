package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
	"github.com/kedbin/ai-devops-journal/internal/models"
)

const azureAPIVersion = "2023-10-01"

// AzureClient calls the Azure AI Vision image analysis endpoint with the
// "read" feature to recognize handwritten text.
type AzureClient struct {
	endpoint   string
	key        string
	language   string
	httpClient *http.Client
}

// NewAzureClient creates a client for the given resource endpoint and key.
func NewAzureClient(endpoint, key, language string, timeout time.Duration) (*AzureClient, error) {
	if endpoint == "" || key == "" {
		return nil, fmt.Errorf("ocr: azure endpoint and key are required")
	}
	if language == "" {
		language = "en"
	}
	return &AzureClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type azureReadResponse struct {
	ReadResult struct {
		Blocks []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"blocks"`
	} `json:"readResult"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract submits the image for analysis and linearizes the recognized
// blocks. Zero recognized blocks yield the NoTextSentinel transcription.
func (c *AzureClient) Extract(ctx context.Context, image []byte, subjectID string) (models.Transcription, error) {
	slog.Info("ocr: starting text extraction",
		slog.String("provider", "azure"),
		slog.String("subject_id", subjectID),
		slog.Int("image_bytes", len(image)))

	start := time.Now()
	text, err := c.analyze(ctx, image)
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

func (c *AzureClient) analyze(ctx context.Context, image []byte) (string, error) {
	q := url.Values{}
	q.Set("api-version", azureAPIVersion)
	q.Set("features", "read")
	q.Set("language", c.language)
	endpoint := c.endpoint + "/imageanalysis:analyze?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("ocr: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr: recognition provider unreachable: %w", apperr.ErrUpstream)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ocr: read response: %w", apperr.ErrUpstream)
	}

	var parsed azureReadResponse
	if resp.StatusCode != http.StatusOK {
		// Provider error detail goes to logs only; the sanitized sentinel
		// crosses back to the caller.
		_ = json.Unmarshal(body, &parsed)
		slog.Error("ocr: provider returned error",
			slog.Int("status", resp.StatusCode),
			slog.String("provider_code", parsed.Error.Code),
			slog.String("provider_message", parsed.Error.Message))
		return "", fmt.Errorf("ocr: recognition provider returned status %d: %w", resp.StatusCode, apperr.ErrUpstream)
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ocr: malformed provider response: %w", apperr.ErrUpstream)
	}

	if len(parsed.ReadResult.Blocks) == 0 {
		return NoTextSentinel, nil
	}

	blocks := make([]string, 0, len(parsed.ReadResult.Blocks))
	for _, block := range parsed.ReadResult.Blocks {
		lines := make([]string, 0, len(block.Lines))
		for _, line := range block.Lines {
			lines = append(lines, line.Text)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n"), nil
}
