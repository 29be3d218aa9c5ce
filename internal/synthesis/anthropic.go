package synthesis

import (
	"context"
	"fmt"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
)

// AnthropicGenerator implements Generator on top of llmkit's Anthropic client.
type AnthropicGenerator struct {
	apiKey   string
	settings types.RequestSettings
}

// NewAnthropicGenerator creates a generator bound to one model configuration.
// It is constructed once at process start and reused for the process lifetime.
func NewAnthropicGenerator(apiKey, model string, maxTokens int, temperature float64) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("synthesis: api key is required")
	}
	return &AnthropicGenerator{
		apiKey: apiKey,
		settings: types.RequestSettings{
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
	}, nil
}

// Generate issues exactly one prompt call and returns the raw response text.
func (g *AnthropicGenerator) Generate(_ context.Context, system, user string) (string, error) {
	response, err := anthropic.PromptWithSettings(system, user, "", g.apiKey, g.settings)
	if err != nil {
		return "", fmt.Errorf("synthesis: prompt call failed: %w", apperr.ErrUpstream)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("synthesis: empty response: %w", apperr.ErrUpstream)
	}
	return response.Content[0].Text, nil
}
