package flow

import (
	"fmt"
	"sort"

	"github.com/bobmcallan/flowlens/internal/models"
)

// Patterns detects recurring flow structures over the combined record set
// (current plus historical, up to 31 days of trades). Emission order is
// sweeps, then blocks, then momentum, each in first-occurrence ticker order.
func (a *Analyzer) Patterns(records []models.TradeRecord) []models.DetectedPattern {
	groups, order := groupByTicker(records)

	patterns := make([]models.DetectedPattern, 0)
	for _, ticker := range order {
		if p := a.sweepPattern(ticker, groups[ticker]); p != nil {
			patterns = append(patterns, *p)
		}
	}
	for _, ticker := range order {
		if p := a.blockPattern(ticker, groups[ticker]); p != nil {
			patterns = append(patterns, *p)
		}
	}
	for _, ticker := range order {
		if p := a.momentumPattern(ticker, groups[ticker]); p != nil {
			patterns = append(patterns, *p)
		}
	}
	return patterns
}

// sweepPattern fires when a ticker shows repeated sweep orders with real
// money behind them. Occurrences counts only the sweeps above the premium
// floor, not every sweep seen.
func (a *Analyzer) sweepPattern(ticker string, records []models.TradeRecord) *models.DetectedPattern {
	var sweeps []models.TradeRecord
	for _, r := range records {
		if r.TradeType == models.TradeTypeSweep {
			sweeps = append(sweeps, r)
		}
	}
	if len(sweeps) < sweepMinTotal {
		return nil
	}

	qualifying := 0
	var total float64
	for _, r := range sweeps {
		if r.Premium > sweepPremiumFloor {
			qualifying++
			total += r.Premium
		}
	}
	if qualifying < sweepMinQualifying {
		return nil
	}

	return &models.DetectedPattern{
		PatternType: models.PatternTypeSweep,
		Ticker:      ticker,
		Name:        fmt.Sprintf("%s Sweep Activity", ticker),
		Description: fmt.Sprintf("%d sweeps above $%s, average premium $%.0f",
			qualifying, formatDollars(sweepPremiumFloor), total/float64(qualifying)),
		Conditions: map[string]interface{}{
			"min_sweeps":     sweepMinTotal,
			"premium_floor":  sweepPremiumFloor,
			"min_qualifying": sweepMinQualifying,
		},
		Occurrences: qualifying,
	}
}

// blockPattern fires when a ticker prints repeated block trades whose summed
// premium clears the total floor.
func (a *Analyzer) blockPattern(ticker string, records []models.TradeRecord) *models.DetectedPattern {
	blocks := 0
	var total float64
	for _, r := range records {
		if r.TradeType == models.TradeTypeBlock {
			blocks++
			total += r.Premium
		}
	}
	if blocks < blockMinTrades || total <= blockPremiumTotal {
		return nil
	}

	return &models.DetectedPattern{
		PatternType: models.PatternTypeBlock,
		Ticker:      ticker,
		Name:        fmt.Sprintf("%s Block Trades", ticker),
		Description: fmt.Sprintf("%d block trades totalling $%.0f in premium", blocks, total),
		Conditions: map[string]interface{}{
			"min_blocks":    blockMinTrades,
			"premium_total": blockPremiumTotal,
		},
		Occurrences: blocks,
	}
}

// momentumPattern fires when premiums rise across enough adjacent trades,
// time-ordered. Occurrences counts the strictly-increasing adjacent pairs.
func (a *Analyzer) momentumPattern(ticker string, records []models.TradeRecord) *models.DetectedPattern {
	if len(records) < momentumMinTrades {
		return nil
	}

	sorted := make([]models.TradeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TradeTime.Before(sorted[j].TradeTime)
	})

	rises := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Premium > sorted[i-1].Premium {
			rises++
		}
	}
	if rises < momentumMinRises {
		return nil
	}

	return &models.DetectedPattern{
		PatternType: models.PatternTypeMomentum,
		Ticker:      ticker,
		Name:        fmt.Sprintf("%s Premium Momentum", ticker),
		Description: fmt.Sprintf("%d premium increases across %d consecutive trades", rises, len(sorted)),
		Conditions: map[string]interface{}{
			"min_trades": momentumMinTrades,
			"min_rises":  momentumMinRises,
		},
		Occurrences: rises,
	}
}
