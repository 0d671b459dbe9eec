// Package report renders analysis results as markdown documents
package report

import (
	"context"
	"fmt"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
)

// Compile-time interface check
var _ interfaces.ReportService = (*Service)(nil)

// Service implements ReportService
type Service struct {
	analysis interfaces.AnalysisService
	gemini   interfaces.GeminiClient
	logger   *common.Logger
}

// NewService creates a new report service. The gemini client is optional;
// without one reports carry no generated narrative.
func NewService(analysis interfaces.AnalysisService, gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{
		analysis: analysis,
		gemini:   gemini,
		logger:   logger,
	}
}

// BuildReport runs the analysis for the range and renders it as markdown,
// appending a generated narrative when a gemini client is configured.
func (s *Service) BuildReport(ctx context.Context, userID string, timeRange common.TimeRange) (string, error) {
	result, err := s.analysis.Analyze(ctx, userID, timeRange)
	if err != nil {
		return "", fmt.Errorf("failed to analyze flow: %w", err)
	}

	doc := formatReport(result)

	if s.gemini != nil {
		narrative, err := s.gemini.GenerateFlowNarrative(ctx, result)
		if err != nil {
			s.logger.Warn().Err(err).Str("user", userID).Msg("Narrative generation failed, returning report without it")
		} else if narrative != "" {
			doc += "\n## Narrative\n\n" + narrative + "\n"
		}
	}

	return doc, nil
}
