package flow

import (
	"sort"

	"github.com/bobmcallan/flowlens/internal/models"
)

// Summarize rolls one run up into headline numbers. Risk escalates to high
// only on multiple high-severity anomalies; a merely noisy run caps out at
// medium.
func (a *Analyzer) Summarize(current []models.TradeRecord, patterns []models.DetectedPattern, anomalies []models.FlowAnomaly) models.AnalysisSummary {
	groups, order := groupByTicker(current)

	activity := make([]models.TickerActivity, 0, len(order))
	for _, ticker := range order {
		activity = append(activity, models.TickerActivity{Ticker: ticker, Count: len(groups[ticker])})
	}
	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Count > activity[j].Count
	})
	if len(activity) > 5 {
		activity = activity[:5]
	}

	ratio := a.callPutRatio(current)
	sentiment := models.SentimentNeutral
	switch {
	case ratio > 1.2:
		sentiment = models.SentimentBullish
	case ratio < 0.8:
		sentiment = models.SentimentBearish
	}

	highCount := 0
	for _, an := range anomalies {
		if an.Severity == models.SeverityHigh {
			highCount++
		}
	}
	risk := models.SeverityLow
	if highCount > 2 {
		risk = models.SeverityHigh
	} else if len(anomalies) > 3 {
		risk = models.SeverityMedium
	}

	return models.AnalysisSummary{
		TotalRecords:    len(current),
		PatternCount:    len(patterns),
		AnomalyCount:    len(anomalies),
		TopTickers:      activity,
		MarketSentiment: sentiment,
		RiskLevel:       risk,
	}
}
