package insights

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	DefaultModel         = "gemini-2.0-flash"
	DefaultRatePerSecond = 1.0
)

// GeminiGenerator implements Generator on the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// GeminiOption configures a GeminiGenerator.
type GeminiOption func(*GeminiGenerator)

// WithModel sets the model to use.
func WithModel(model string) GeminiOption {
	return func(g *GeminiGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(requestsPerSecond float64) GeminiOption {
	return func(g *GeminiGenerator) {
		if requestsPerSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		}
	}
}

// NewGeminiGenerator creates a generator for the given API key.
func NewGeminiGenerator(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &GeminiGenerator{
		client:  client,
		model:   DefaultModel,
		limiter: rate.NewLimiter(rate.Limit(DefaultRatePerSecond), 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return extractText(result)
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in response")
	}
	return sb.String(), nil
}
