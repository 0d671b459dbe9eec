// Package analysis runs the flow engine over stored trades and caches results
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/flow"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
)

// Compile-time interface check
var _ interfaces.AnalysisService = (*Service)(nil)

// Service implements AnalysisService
type Service struct {
	storage interfaces.StorageManager
	cache   interfaces.Cache
	engine  *flow.Analyzer
	ttl     time.Duration
	days    int
	logger  *common.Logger
}

// NewService creates a new analysis service configured from the analysis
// section of the config.
func NewService(storage interfaces.StorageManager, cache interfaces.Cache, config *common.Config, logger *common.Logger) *Service {
	engine := flow.NewAnalyzer(
		flow.WithHistoricalDays(config.Analysis.HistoricalDays),
		flow.WithHighValueThreshold(config.Analysis.HighValueThreshold),
		flow.WithClampedRatio(config.Analysis.ClampCallPutRatio),
	)
	return &Service{
		storage: storage,
		cache:   cache,
		engine:  engine,
		ttl:     config.Cache.GetTTL(),
		days:    config.Analysis.HistoricalDays,
		logger:  logger,
	}
}

// CacheKey names the cached analysis result for a user and range.
func CacheKey(userID string, timeRange common.TimeRange) string {
	return fmt.Sprintf("flowlens:analysis:%s:%s", userID, timeRange)
}

// Analyze returns the cached result for the range when one exists, otherwise
// computes, persists and caches a fresh one.
func (s *Service) Analyze(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error) {
	key := CacheKey(userID, timeRange)
	if data, ok := s.cache.Get(ctx, key); ok {
		var cached models.AnalysisResult
		if err := json.Unmarshal(data, &cached); err == nil {
			s.logger.Debug().Str("user", userID).Str("range", string(timeRange)).Msg("Analysis served from cache")
			return &cached, nil
		}
		// Unreadable entry: drop it and recompute
		_ = s.cache.Delete(ctx, key)
	}
	return s.run(ctx, userID, timeRange)
}

// Refresh recomputes the analysis regardless of any cached result.
func (s *Service) Refresh(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error) {
	return s.run(ctx, userID, timeRange)
}

func (s *Service) run(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error) {
	window := timeRange.Window(time.Now())
	histWindow := common.HistoricalWindow(window, s.days)

	trades := s.storage.TradeStore()
	current, err := trades.FetchRecords(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current records: %w", err)
	}
	historical, err := trades.FetchRecords(ctx, userID, histWindow.Start, histWindow.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical records: %w", err)
	}

	result := s.engine.Analyze(current, historical)
	result.UserID = userID
	result.Range = string(timeRange)
	result.WindowStart = window.Start
	result.WindowEnd = window.End

	s.persist(ctx, userID, result)

	if data, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, CacheKey(userID, timeRange), data, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("user", userID).Msg("Failed to cache analysis result")
		}
	}

	s.logger.Info().
		Str("user", userID).
		Str("range", string(timeRange)).
		Int("records", result.Summary.TotalRecords).
		Int("insights", len(result.Insights)).
		Int("patterns", len(result.Patterns)).
		Int("anomalies", len(result.Anomalies)).
		Msg("Analysis completed")

	return result, nil
}

// persist writes insights and accumulates pattern counters. Persistence
// failures degrade to warnings; the computed result is still returned.
func (s *Service) persist(ctx context.Context, userID string, result *models.AnalysisResult) {
	if len(result.Insights) > 0 {
		if err := s.storage.InsightStore().Insert(ctx, userID, result.Insights); err != nil {
			s.logger.Warn().Err(err).Str("user", userID).Msg("Failed to store insights")
		}
	}
	for i := range result.Patterns {
		p := &result.Patterns[i]
		if err := s.storage.PatternStore().Upsert(ctx, userID, p); err != nil {
			s.logger.Warn().Err(err).Str("user", userID).Str("pattern", p.PatternType).Str("ticker", p.Ticker).Msg("Failed to store pattern")
		}
	}
}
