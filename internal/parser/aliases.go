package parser

import "strings"

// Canonical field names produced by header normalization.
const (
	FieldTimeOfTrade       = "time_of_trade"
	FieldTickerSymbol      = "ticker_symbol"
	FieldPremium           = "premium"
	FieldOptionType        = "option_type"
	FieldTradeType         = "trade_type"
	FieldScore             = "score"
	FieldSpotPrice         = "spot_price"
	FieldStrikePrice       = "strike_price"
	FieldImpliedVolatility = "implied_volatility"
	FieldOpenInterest      = "open_interest"
)

// requiredFields must all be present and non-empty for a row to produce a
// record. Listed in reporting order.
var requiredFields = []string{
	FieldTimeOfTrade,
	FieldTickerSymbol,
	FieldPremium,
	FieldOptionType,
	FieldTradeType,
}

// headerAliases maps normalized vendor column headings to canonical field
// names. Keys are the result of normalizeHeader, so lookups are insensitive
// to case and whitespace.
var headerAliases = map[string]string{
	// time_of_trade
	"time_of_trade":  FieldTimeOfTrade,
	"time":           FieldTimeOfTrade,
	"timestamp":      FieldTimeOfTrade,
	"trade_time":     FieldTimeOfTrade,
	"trade_date":     FieldTimeOfTrade,
	"date":           FieldTimeOfTrade,
	"datetime":       FieldTimeOfTrade,
	"date_time":      FieldTimeOfTrade,
	"executed_at":    FieldTimeOfTrade,
	"execution_time": FieldTimeOfTrade,

	// ticker_symbol
	"ticker_symbol":     FieldTickerSymbol,
	"ticker":            FieldTickerSymbol,
	"tickersymbol":      FieldTickerSymbol,
	"symbol":            FieldTickerSymbol,
	"sym":               FieldTickerSymbol,
	"underlying":        FieldTickerSymbol,
	"underlying_symbol": FieldTickerSymbol,
	"stock":             FieldTickerSymbol,

	// premium
	"premium":       FieldPremium,
	"prem":          FieldPremium,
	"total_premium": FieldPremium,
	"premium_value": FieldPremium,
	"dollar_value":  FieldPremium,
	"value":         FieldPremium,
	"notional":      FieldPremium,
	"cost":          FieldPremium,

	// option_type
	"option_type": FieldOptionType,
	"option":      FieldOptionType,
	"type":        FieldOptionType,
	"call_put":    FieldOptionType,
	"call/put":    FieldOptionType,
	"put_call":    FieldOptionType,
	"put/call":    FieldOptionType,
	"cp":          FieldOptionType,
	"contract":    FieldOptionType,

	// trade_type
	"trade_type":     FieldTradeType,
	"trade":          FieldTradeType,
	"side":           FieldTradeType,
	"order_type":     FieldTradeType,
	"order_side":     FieldTradeType,
	"execution_type": FieldTradeType,
	"flow_type":      FieldTradeType,

	// score
	"score":      FieldScore,
	"confidence": FieldScore,
	"conviction": FieldScore,
	"rating":     FieldScore,
	"signal":     FieldScore,

	// spot_price
	"spot_price":       FieldSpotPrice,
	"spot":             FieldSpotPrice,
	"stock_price":      FieldSpotPrice,
	"underlying_price": FieldSpotPrice,
	"ref_price":        FieldSpotPrice,
	"price":            FieldSpotPrice,

	// strike_price
	"strike_price": FieldStrikePrice,
	"strike":       FieldStrikePrice,
	"strike_px":    FieldStrikePrice,

	// implied_volatility
	"implied_volatility": FieldImpliedVolatility,
	"implied_vol":        FieldImpliedVolatility,
	"impl_vol":           FieldImpliedVolatility,
	"iv":                 FieldImpliedVolatility,
	"vol":                FieldImpliedVolatility,
	"volatility":         FieldImpliedVolatility,

	// open_interest
	"open_interest": FieldOpenInterest,
	"open_int":      FieldOpenInterest,
	"openinterest":  FieldOpenInterest,
	"oi":            FieldOpenInterest,
	"interest":      FieldOpenInterest,
}

// normalizeHeader lowercases a raw column heading, trims it and collapses
// internal whitespace runs to single underscores.
func normalizeHeader(raw string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	return strings.Join(fields, "_")
}

// canonicalField resolves a raw column heading to its canonical field name.
// Unrecognized headings return ok=false and the column is ignored.
func canonicalField(raw string) (string, bool) {
	name, ok := headerAliases[normalizeHeader(raw)]
	return name, ok
}
