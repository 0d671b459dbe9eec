package flow

import (
	"fmt"
	"math"

	"github.com/bobmcallan/flowlens/internal/models"
)

// Insights generates trend insights for the current window measured against
// the historical baseline.
func (a *Analyzer) Insights(current, historical []models.TradeRecord) []models.Insight {
	insights := make([]models.Insight, 0)
	if insight := a.highValueFlow(current, historical); insight != nil {
		insights = append(insights, *insight)
	}
	insights = append(insights, a.unusualVolume(current, historical)...)
	if insight := a.sentimentShift(current, historical); insight != nil {
		insights = append(insights, *insight)
	}
	return insights
}

// highValueFlow flags days with trades above the premium floor and reports
// how today's count compares against the baseline count. With no baseline
// the change reads as a flat +100%.
func (a *Analyzer) highValueFlow(current, historical []models.TradeRecord) *models.Insight {
	var qualifying []models.TradeRecord
	for _, r := range current {
		if r.Premium > a.highValueFloor {
			qualifying = append(qualifying, r)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	histCount := 0
	for _, r := range historical {
		if r.Premium > a.highValueFloor {
			histCount++
		}
	}

	change := 100.0
	if histCount > 0 {
		change = (float64(len(qualifying)) - float64(histCount)) / float64(histCount) * 100
	}
	direction := "up"
	if change < 0 {
		direction = "down"
	}

	points := make([]models.DataPoint, 0, len(qualifying))
	for _, r := range qualifying {
		points = append(points, models.DataPoint{
			"ticker":      r.Ticker,
			"premium":     r.Premium,
			"option_type": r.OptionType,
			"trade_type":  r.TradeType,
		})
	}

	return &models.Insight{
		InsightType: models.InsightTypeTrend,
		Title:       "High-Value Flow Detected",
		Description: fmt.Sprintf("%d trades above $%s premium, %s %.1f%% versus the %d-day baseline",
			len(qualifying), formatDollars(a.highValueFloor), direction, math.Abs(change), a.historicalDays),
		Confidence: highValueConfidence,
		DataPoints: points,
		Metadata: map[string]interface{}{
			"today_count":      len(qualifying),
			"historical_count": histCount,
			"percent_change":   change,
		},
	}
}

// unusualVolume flags tickers trading far above their historical daily
// average. Both the ratio and an absolute floor must be exceeded so thin
// tickers don't alarm on a handful of trades.
func (a *Analyzer) unusualVolume(current, historical []models.TradeRecord) []models.Insight {
	curGroups, order := groupByTicker(current)
	histGroups, _ := groupByTicker(historical)

	var insights []models.Insight
	for _, ticker := range order {
		todayCount := len(curGroups[ticker])
		histAvg := float64(len(histGroups[ticker])) / float64(a.historicalDays)
		ratio := float64(todayCount) / math.Max(histAvg, 1)
		if ratio <= volumeRatioFloor || todayCount <= volumeMinTrades {
			continue
		}

		confidence := math.Min(volumeMaxConfidence, volumeBaseConfidence+(ratio-volumeRatioFloor)*0.1)

		sample := curGroups[ticker]
		if len(sample) > 5 {
			sample = sample[:5]
		}
		points := make([]models.DataPoint, 0, len(sample))
		for _, r := range sample {
			points = append(points, models.DataPoint{
				"trade_time":  r.TradeTime,
				"premium":     r.Premium,
				"option_type": r.OptionType,
				"trade_type":  r.TradeType,
			})
		}

		insights = append(insights, models.Insight{
			InsightType: models.InsightTypeTrend,
			Ticker:      ticker,
			Title:       fmt.Sprintf("Unusual Volume: %s", ticker),
			Description: fmt.Sprintf("%s traded %d times today, %.1fx its daily average over the last %d days",
				ticker, todayCount, ratio, a.historicalDays),
			Confidence: confidence,
			DataPoints: points,
			Metadata: map[string]interface{}{
				"today_count":    todayCount,
				"historical_avg": histAvg,
				"ratio":          ratio,
			},
		})
	}
	return insights
}

// sentimentShift compares the call/put ratio of the current window against
// the baseline and flags moves beyond the shift floor.
func (a *Analyzer) sentimentShift(current, historical []models.TradeRecord) *models.Insight {
	todayRatio := a.callPutRatio(current)
	histRatio := a.callPutRatio(historical)
	if math.Abs(todayRatio-histRatio) <= sentimentShiftFloor {
		return nil
	}

	direction := models.SentimentBullish
	if todayRatio < histRatio {
		direction = models.SentimentBearish
	}

	return &models.Insight{
		InsightType: models.InsightTypeTrend,
		Title:       "Sentiment Shift",
		Description: fmt.Sprintf("Call/put ratio moved from %.2f to %.2f, a %s shift",
			histRatio, todayRatio, direction),
		Confidence: sentimentConfidence,
		Metadata: map[string]interface{}{
			"today_ratio":      todayRatio,
			"historical_ratio": histRatio,
			"direction":        direction,
		},
	}
}

// formatDollars renders a premium threshold compactly ("500K", "1.5M").
func formatDollars(v float64) string {
	switch {
	case v >= 1000000 && math.Mod(v, 1000000) == 0:
		return fmt.Sprintf("%.0fM", v/1000000)
	case v >= 1000000:
		return fmt.Sprintf("%.1fM", v/1000000)
	case v >= 1000:
		return fmt.Sprintf("%.0fK", v/1000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
