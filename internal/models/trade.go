package models

import "time"

// TradeRecord represents a single normalized options trade.
// Optional enrichment fields are pointers so that absent values survive
// round-trips through storage without collapsing to zero.
type TradeRecord struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	TradeTime         time.Time `json:"trade_time"`
	Ticker            string    `json:"ticker"`
	Premium           float64   `json:"premium"`
	OptionType        string    `json:"option_type"`
	TradeType         string    `json:"trade_type"`
	Score             *float64  `json:"score,omitempty"`
	SpotPrice         *float64  `json:"spot_price,omitempty"`
	StrikePrice       *float64  `json:"strike_price,omitempty"`
	ImpliedVolatility *float64  `json:"implied_volatility,omitempty"`
	OpenInterest      *int64    `json:"open_interest,omitempty"`
	Source            string    `json:"source,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Option type constants
const (
	OptionTypeCall = "call"
	OptionTypePut  = "put"
)

// Trade type constants
const (
	TradeTypeBuy   = "buy"
	TradeTypeSell  = "sell"
	TradeTypeBlock = "block"
	TradeTypeSweep = "sweep"
)

// ValidOptionTypes contains all valid option types
var ValidOptionTypes = map[string]bool{
	OptionTypeCall: true,
	OptionTypePut:  true,
}

// ValidTradeTypes contains all valid trade types
var ValidTradeTypes = map[string]bool{
	TradeTypeBuy:   true,
	TradeTypeSell:  true,
	TradeTypeBlock: true,
	TradeTypeSweep: true,
}

// TickerStats aggregates trade activity for a single ticker.
type TickerStats struct {
	Ticker       string  `json:"ticker"`
	TradeCount   int     `json:"trade_count"`
	TotalPremium float64 `json:"total_premium"`
	CallCount    int     `json:"call_count"`
	PutCount     int     `json:"put_count"`
}
