package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/flowlens/internal/models"
)

// GeminiClient provides access to Gemini API
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// GenerateFlowNarrative generates a prose narrative for an analysis result
	GenerateFlowNarrative(ctx context.Context, result *models.AnalysisResult) (string, error)

	// Close releases the underlying client
	Close() error
}

// Cache stores serialized analysis results keyed by user and range
type Cache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key; missing keys are not an error
	Delete(ctx context.Context, key string) error

	// Close releases cache resources
	Close() error
}
