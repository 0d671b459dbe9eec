package flow

import (
	"fmt"
	"math"

	"github.com/bobmcallan/flowlens/internal/models"
)

// Anomalies detects deviations in the current window, using the historical
// baseline where one is needed. Anomalies are ephemeral per run.
func (a *Analyzer) Anomalies(current, historical []models.TradeRecord) []models.FlowAnomaly {
	anomalies := make([]models.FlowAnomaly, 0)
	if an := a.timingAnomaly(current); an != nil {
		anomalies = append(anomalies, *an)
	}
	if an := a.premiumAnomaly(current, historical); an != nil {
		anomalies = append(anomalies, *an)
	}
	return anomalies
}

// timingAnomaly flags windows where more than 30% of activity lands outside
// regular trading hours. Exactly 30% does not trip it.
func (a *Analyzer) timingAnomaly(current []models.TradeRecord) *models.FlowAnomaly {
	if len(current) == 0 {
		return nil
	}

	hourCounts := make(map[int]int)
	afterHours := 0
	for _, r := range current {
		hour := r.TradeTime.Hour()
		hourCounts[hour]++
		if hour < sessionOpenHour || hour > sessionCloseHour {
			afterHours++
		}
	}

	share := float64(afterHours) / float64(len(current))
	if share <= afterHoursShare {
		return nil
	}

	return &models.FlowAnomaly{
		AnomalyType: models.AnomalyTypeTiming,
		Ticker:      models.MarketTicker,
		Description: fmt.Sprintf("%.0f%% of trades executed outside regular hours (%d of %d)",
			share*100, afterHours, len(current)),
		Severity:   models.SeverityMedium,
		DataPoints: []models.DataPoint{{"hour_counts": hourCounts}},
		DetectedAt: a.nowFn(),
	}
}

// premiumAnomaly compares the mean premium of the current window against the
// baseline mean. Skipped when either window is empty or the baseline mean is
// zero, since no meaningful ratio exists.
func (a *Analyzer) premiumAnomaly(current, historical []models.TradeRecord) *models.FlowAnomaly {
	if len(current) == 0 || len(historical) == 0 {
		return nil
	}

	todayMean := meanPremium(current)
	histMean := meanPremium(historical)
	if histMean == 0 {
		return nil
	}

	change := (todayMean - histMean) / histMean
	if math.Abs(change) <= premiumShiftFloor {
		return nil
	}

	severity := models.SeverityMedium
	if math.Abs(change) > premiumSevereShift {
		severity = models.SeverityHigh
	}

	direction := "above"
	if change < 0 {
		direction = "below"
	}

	return &models.FlowAnomaly{
		AnomalyType: models.AnomalyTypePremium,
		Ticker:      models.MarketTicker,
		Description: fmt.Sprintf("Mean premium $%.0f is %.0f%% %s the %d-day baseline of $%.0f",
			todayMean, math.Abs(change)*100, direction, a.historicalDays, histMean),
		Severity:   severity,
		DataPoints: []models.DataPoint{{
			"current_mean":    todayMean,
			"historical_mean": histMean,
			"change":          change,
		}},
		DetectedAt: a.nowFn(),
	}
}
