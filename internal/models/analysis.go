package models

import "time"

// DataPoint carries supporting evidence for an insight or anomaly.
type DataPoint map[string]interface{}

// Insight represents a single finding produced by the flow analyzer.
type Insight struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	InsightType string                 `json:"insight_type"`
	Ticker      string                 `json:"ticker,omitempty"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Confidence  float64                `json:"confidence"`
	DataPoints  []DataPoint            `json:"data_points,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Insight type constants
const (
	InsightTypePattern    = "pattern"
	InsightTypeAnomaly    = "anomaly"
	InsightTypeTrend      = "trend"
	InsightTypePrediction = "prediction"
)

// ValidInsightTypes contains all valid insight types
var ValidInsightTypes = map[string]bool{
	InsightTypePattern:    true,
	InsightTypeAnomaly:    true,
	InsightTypeTrend:      true,
	InsightTypePrediction: true,
}

// DetectedPattern is a recurring flow structure tracked per user, ticker and
// pattern type. Occurrences accumulate across analysis runs. SuccessRate,
// AvgReturn and TimeHorizon are reserved for outcome tracking and are not
// populated by the analyzer.
type DetectedPattern struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	PatternType string                 `json:"pattern_type"`
	Ticker      string                 `json:"ticker"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Conditions  map[string]interface{} `json:"conditions,omitempty"`
	Occurrences int                    `json:"occurrences"`
	SuccessRate *float64               `json:"success_rate,omitempty"`
	AvgReturn   *float64               `json:"avg_return,omitempty"`
	TimeHorizon string                 `json:"time_horizon,omitempty"`
	FirstSeen   time.Time              `json:"first_seen"`
	LastSeen    time.Time              `json:"last_seen"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Pattern type constants
const (
	PatternTypeSweep         = "sweep"
	PatternTypeBlock         = "block"
	PatternTypeUnusualVolume = "unusual_volume"
	PatternTypePriceMovement = "price_movement"
	PatternTypeMomentum      = "momentum"
)

// ValidPatternTypes contains all valid pattern types
var ValidPatternTypes = map[string]bool{
	PatternTypeSweep:         true,
	PatternTypeBlock:         true,
	PatternTypeUnusualVolume: true,
	PatternTypePriceMovement: true,
	PatternTypeMomentum:      true,
}

// FlowAnomaly is a deviation from baseline behaviour detected during a run.
// Anomalies are reported inline with the analysis result and are not persisted.
type FlowAnomaly struct {
	AnomalyType string      `json:"anomaly_type"`
	Ticker      string      `json:"ticker"`
	Description string      `json:"description"`
	Severity    string      `json:"severity"`
	DataPoints  []DataPoint `json:"data_points,omitempty"`
	DetectedAt  time.Time   `json:"detected_at"`
}

// Anomaly type constants
const (
	AnomalyTypeVolume          = "volume"
	AnomalyTypePremium         = "premium"
	AnomalyTypeTiming          = "timing"
	AnomalyTypeUnusualActivity = "unusual_activity"
)

// Severity constants, shared by anomalies and the summary risk level
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// MarketTicker is the sentinel ticker for market-wide findings that are not
// attributable to a single symbol.
const MarketTicker = "MARKET"

// Sentiment constants
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// TickerActivity is one entry in the summary's most-active ranking.
type TickerActivity struct {
	Ticker string `json:"ticker"`
	Count  int    `json:"count"`
}

// AnalysisSummary condenses a run into headline numbers.
type AnalysisSummary struct {
	TotalRecords    int              `json:"total_records"`
	PatternCount    int              `json:"pattern_count"`
	AnomalyCount    int              `json:"anomaly_count"`
	TopTickers      []TickerActivity `json:"top_tickers"`
	MarketSentiment string           `json:"market_sentiment"`
	RiskLevel       string           `json:"risk_level"`
}

// AnalysisResult is the full output of one analysis run over a time range.
type AnalysisResult struct {
	UserID      string            `json:"user_id"`
	Range       string            `json:"range"`
	WindowStart time.Time         `json:"window_start"`
	WindowEnd   time.Time         `json:"window_end"`
	Insights    []Insight         `json:"insights"`
	Patterns    []DetectedPattern `json:"patterns"`
	Anomalies   []FlowAnomaly     `json:"anomalies"`
	Summary     AnalysisSummary   `json:"summary"`
	GeneratedAt time.Time         `json:"generated_at"`
}
