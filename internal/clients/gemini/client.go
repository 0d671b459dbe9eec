// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
)

const DefaultModel = "gemini-3-flash-preview"

// Client implements the GeminiClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close closes the client
func (c *Client) Close() error {
	// The genai client doesn't have a Close method
	return nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// GenerateFlowNarrative generates a desk-briefing narrative for an analysis result
func (c *Client) GenerateFlowNarrative(ctx context.Context, result *models.AnalysisResult) (string, error) {
	prompt := buildNarrativePrompt(result)
	return c.GenerateContent(ctx, prompt)
}

// buildNarrativePrompt creates a prompt for flow narrative generation
func buildNarrativePrompt(result *models.AnalysisResult) string {
	prompt := fmt.Sprintf(`Summarize the following options flow analysis in two or three short paragraphs for a trading desk briefing:
1. Lead with the overall sentiment and risk level
2. Call out the most significant insights and patterns
3. Flag any anomalies worth watching

Use only the numbers provided below.

Window: %s (%s to %s)

Summary:
- Records Analyzed: %d
- Market Sentiment: %s
- Risk Level: %s
`,
		result.Range,
		result.WindowStart.Format("2006-01-02 15:04"),
		result.WindowEnd.Format("2006-01-02 15:04"),
		result.Summary.TotalRecords,
		result.Summary.MarketSentiment,
		result.Summary.RiskLevel,
	)

	if len(result.Summary.TopTickers) > 0 {
		prompt += "\nMost Active Tickers:\n"
		for _, t := range result.Summary.TopTickers {
			prompt += fmt.Sprintf("- %s: %d trades\n", t.Ticker, t.Count)
		}
	}

	if len(result.Insights) > 0 {
		prompt += "\nInsights:\n"
		for _, in := range result.Insights {
			prompt += fmt.Sprintf("- %s (confidence %.0f%%): %s\n", in.Title, in.Confidence*100, in.Description)
		}
	}

	if len(result.Patterns) > 0 {
		prompt += "\nPatterns:\n"
		for _, p := range result.Patterns {
			prompt += fmt.Sprintf("- %s (%d occurrences): %s\n", p.Name, p.Occurrences, p.Description)
		}
	}

	if len(result.Anomalies) > 0 {
		prompt += "\nAnomalies:\n"
		for _, a := range result.Anomalies {
			prompt += fmt.Sprintf("- [%s] %s: %s\n", a.Severity, a.Ticker, a.Description)
		}
	}

	prompt += "\nKeep the narrative concise and factual."

	return prompt
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
