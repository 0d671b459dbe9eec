package app

import (
	"context"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
)

// startAnalysisScheduler re-runs analysis for recently active users at the
// configured interval. It blocks until ctx is cancelled.
func startAnalysisScheduler(ctx context.Context, analysisService interfaces.AnalysisService, storage interfaces.StorageManager, config *common.Config, logger *common.Logger) {
	interval := config.Scheduler.GetInterval()

	timeRange, err := common.ParseTimeRange(config.Scheduler.Range)
	if err != nil {
		logger.Warn().Err(err).Str("range", config.Scheduler.Range).Msg("Analysis scheduler: invalid range, using today")
		timeRange = common.RangeToday
	}

	logger.Info().
		Dur("interval", interval).
		Str("range", string(timeRange)).
		Msg("Analysis scheduler: started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Analysis scheduler: stopped")
			return
		case <-ticker.C:
			refreshAnalyses(ctx, analysisService, storage, timeRange, logger)
		}
	}
}

// refreshAnalyses recomputes the analysis for every user with trades ingested
// in the last 24 hours. Per-user failures are logged and skipped.
func refreshAnalyses(ctx context.Context, analysisService interfaces.AnalysisService, storage interfaces.StorageManager, timeRange common.TimeRange, logger *common.Logger) {
	start := time.Now()

	users, err := storage.TradeStore().ActiveUsers(ctx, start.Add(-24*time.Hour))
	if err != nil {
		logger.Warn().Err(err).Msg("Analysis refresh: failed to list active users")
		return
	}
	if len(users) == 0 {
		return
	}

	refreshed := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		if _, err := analysisService.Refresh(ctx, userID, timeRange); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("Analysis refresh: run failed")
			continue
		}
		refreshed++
	}

	logger.Info().
		Int("users", refreshed).
		Str("range", string(timeRange)).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis refresh: complete")
}
