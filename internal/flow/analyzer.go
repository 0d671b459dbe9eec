// Package flow implements the options-flow analysis engine. The analyzer is
// pure computation over two windows of trade records: the window under
// analysis ("current") and a trailing baseline ("historical"). It never
// touches storage, does not mutate its inputs, and produces identical output
// for identical input.
package flow

import (
	"math"
	"time"

	"github.com/bobmcallan/flowlens/internal/models"
)

// Detection thresholds. Values mirror the vendor dashboard this engine
// replaces; change them and stored pattern history stops being comparable.
const (
	defaultHighValuePremium = 500000.0
	highValueConfidence     = 0.85

	volumeRatioFloor     = 3.0
	volumeMinTrades      = 5
	volumeBaseConfidence = 0.6
	volumeMaxConfidence  = 0.9

	sentimentShiftFloor = 0.3
	sentimentConfidence = 0.75

	sweepMinTotal      = 3
	sweepPremiumFloor  = 100000.0
	sweepMinQualifying = 2

	blockMinTrades    = 2
	blockPremiumTotal = 1000000.0

	momentumMinTrades = 5
	momentumMinRises  = 3

	afterHoursShare    = 0.3
	premiumShiftFloor  = 0.5
	premiumSevereShift = 1.0
)

// Regular session hours, local time of each record. Everything outside
// [sessionOpenHour, sessionCloseHour] counts as after-hours.
const (
	sessionOpenHour  = 9
	sessionCloseHour = 16
)

// Analyzer computes insights, patterns and anomalies from trade records.
type Analyzer struct {
	historicalDays int
	highValueFloor float64
	clampRatio     bool
	nowFn          func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithHistoricalDays sets the baseline length used when deriving per-day
// averages. Defaults to 30.
func WithHistoricalDays(days int) AnalyzerOption {
	return func(a *Analyzer) {
		if days > 0 {
			a.historicalDays = days
		}
	}
}

// WithHighValueThreshold overrides the premium floor for high-value flow
// detection.
func WithHighValueThreshold(premium float64) AnalyzerOption {
	return func(a *Analyzer) {
		if premium > 0 {
			a.highValueFloor = premium
		}
	}
}

// WithClampedRatio switches the call/put ratio to calls/max(puts, 1)
// uniformly instead of substituting the raw call count when no puts traded.
func WithClampedRatio(clamp bool) AnalyzerOption {
	return func(a *Analyzer) { a.clampRatio = clamp }
}

// NewAnalyzer creates an analyzer with default thresholds.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		historicalDays: 30,
		highValueFloor: defaultHighValuePremium,
		nowFn:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full engine: insights and anomalies over the current
// window against its baseline, patterns over the union of both. UserID and
// Range on the result are the caller's to fill.
func (a *Analyzer) Analyze(current, historical []models.TradeRecord) *models.AnalysisResult {
	combined := make([]models.TradeRecord, 0, len(current)+len(historical))
	combined = append(combined, current...)
	combined = append(combined, historical...)

	patterns := a.Patterns(combined)
	anomalies := a.Anomalies(current, historical)

	return &models.AnalysisResult{
		Insights:    a.Insights(current, historical),
		Patterns:    patterns,
		Anomalies:   anomalies,
		Summary:     a.Summarize(current, patterns, anomalies),
		GeneratedAt: a.nowFn(),
	}
}

// groupByTicker buckets records by ticker, preserving first-occurrence order
// so detection output is deterministic for a given input ordering.
func groupByTicker(records []models.TradeRecord) (map[string][]models.TradeRecord, []string) {
	groups := make(map[string][]models.TradeRecord)
	var order []string
	for _, r := range records {
		if _, seen := groups[r.Ticker]; !seen {
			order = append(order, r.Ticker)
		}
		groups[r.Ticker] = append(groups[r.Ticker], r)
	}
	return groups, order
}

// callPutRatio computes calls over puts. With no puts traded the raw call
// count stands in for the ratio (zero when nothing traded at all); the
// clamped variant divides by max(puts, 1) instead, which keeps the value on
// the ratio scale.
func (a *Analyzer) callPutRatio(records []models.TradeRecord) float64 {
	var calls, puts int
	for _, r := range records {
		switch r.OptionType {
		case models.OptionTypeCall:
			calls++
		case models.OptionTypePut:
			puts++
		}
	}
	if a.clampRatio {
		return float64(calls) / math.Max(float64(puts), 1)
	}
	if puts == 0 {
		return float64(calls)
	}
	return float64(calls) / float64(puts)
}

func meanPremium(records []models.TradeRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var total float64
	for _, r := range records {
		total += r.Premium
	}
	return total / float64(len(records))
}
