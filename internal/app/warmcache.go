package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
)

// warmCache pre-computes today's analysis for recently active users on startup
// so the first query is fast. Analyze serves from cache when a fresh result
// already exists, so repeated startups are cheap.
func warmCache(ctx context.Context, analysisService interfaces.AnalysisService, storage interfaces.StorageManager, logger *common.Logger) {
	// Check env var override
	if os.Getenv("FLOWLENS_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via FLOWLENS_WARM_CACHE=off")
		return
	}

	start := time.Now()

	users, err := storage.TradeStore().ActiveUsers(ctx, start.Add(-24*time.Hour))
	if err != nil {
		logger.Warn().Err(err).Msg("Warm cache: failed to list active users")
		return
	}
	if len(users) == 0 {
		logger.Info().Msg("Warm cache: no recently active users, skipping")
		return
	}

	logger.Info().Int("users", len(users)).Msg("Warm cache: starting")

	warmed := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		if _, err := analysisService.Analyze(ctx, userID, common.RangeToday); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("Warm cache: analysis failed")
			continue
		}
		warmed++
	}

	logger.Info().
		Int("users", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
