package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/flowlens/internal/models"
)

func sweep(ticker string, premium float64, hour int) models.TradeRecord {
	return trade(ticker, premium, models.OptionTypeCall, models.TradeTypeSweep, hour)
}

func block(ticker string, premium float64, hour int) models.TradeRecord {
	return trade(ticker, premium, models.OptionTypeCall, models.TradeTypeBlock, hour)
}

func TestSweepPattern(t *testing.T) {
	a := NewAnalyzer()

	t.Run("three sweeps two qualifying", func(t *testing.T) {
		records := []models.TradeRecord{
			sweep("XYZ", 150000, 10),
			sweep("XYZ", 200000, 11),
			sweep("XYZ", 50000, 12),
		}
		p := a.sweepPattern("XYZ", records)
		require.NotNil(t, p)
		assert.Equal(t, models.PatternTypeSweep, p.PatternType)
		assert.Equal(t, "XYZ", p.Ticker)
		assert.Equal(t, 2, p.Occurrences)
		assert.Contains(t, p.Description, "$175000")
	})

	t.Run("two qualifying but only two total", func(t *testing.T) {
		records := []models.TradeRecord{
			sweep("XYZ", 150000, 10),
			sweep("XYZ", 200000, 11),
		}
		assert.Nil(t, a.sweepPattern("XYZ", records))
	})

	t.Run("three sweeps one qualifying", func(t *testing.T) {
		records := []models.TradeRecord{
			sweep("XYZ", 150000, 10),
			sweep("XYZ", 90000, 11),
			sweep("XYZ", 50000, 12),
		}
		assert.Nil(t, a.sweepPattern("XYZ", records))
	})

	t.Run("premium floor is strict", func(t *testing.T) {
		records := []models.TradeRecord{
			sweep("XYZ", 100000, 10),
			sweep("XYZ", 100000, 11),
			sweep("XYZ", 100000, 12),
		}
		assert.Nil(t, a.sweepPattern("XYZ", records))
	})

	t.Run("non-sweep trades do not count", func(t *testing.T) {
		records := []models.TradeRecord{
			sweep("XYZ", 150000, 10),
			sweep("XYZ", 200000, 11),
			block("XYZ", 300000, 12),
		}
		assert.Nil(t, a.sweepPattern("XYZ", records))
	})
}

func TestBlockPattern(t *testing.T) {
	a := NewAnalyzer()

	t.Run("two blocks over a million", func(t *testing.T) {
		records := []models.TradeRecord{
			block("ABC", 700000, 10),
			block("ABC", 500000, 11),
		}
		p := a.blockPattern("ABC", records)
		require.NotNil(t, p)
		assert.Equal(t, models.PatternTypeBlock, p.PatternType)
		assert.Equal(t, 2, p.Occurrences)
	})

	t.Run("total at exactly a million", func(t *testing.T) {
		records := []models.TradeRecord{
			block("ABC", 500000, 10),
			block("ABC", 500000, 11),
		}
		assert.Nil(t, a.blockPattern("ABC", records))
	})

	t.Run("single large block", func(t *testing.T) {
		records := []models.TradeRecord{
			block("ABC", 2000000, 10),
		}
		assert.Nil(t, a.blockPattern("ABC", records))
	})
}

func TestMomentumPattern(t *testing.T) {
	a := NewAnalyzer()

	t.Run("rising premiums", func(t *testing.T) {
		// Deliberately out of time order; the detector must sort first.
		records := []models.TradeRecord{
			trade("MOM", 400, models.OptionTypeCall, models.TradeTypeBuy, 14),
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 10),
			trade("MOM", 300, models.OptionTypeCall, models.TradeTypeBuy, 12),
			trade("MOM", 200, models.OptionTypeCall, models.TradeTypeBuy, 11),
			trade("MOM", 150, models.OptionTypeCall, models.TradeTypeBuy, 13),
			trade("MOM", 500, models.OptionTypeCall, models.TradeTypeBuy, 15),
		}
		// Time-ordered premiums: 100, 200, 300, 150, 400, 500 -> 4 rises.
		p := a.momentumPattern("MOM", records)
		require.NotNil(t, p)
		assert.Equal(t, models.PatternTypeMomentum, p.PatternType)
		assert.Equal(t, 4, p.Occurrences)
	})

	t.Run("falling premiums", func(t *testing.T) {
		records := []models.TradeRecord{
			trade("MOM", 500, models.OptionTypeCall, models.TradeTypeBuy, 10),
			trade("MOM", 400, models.OptionTypeCall, models.TradeTypeBuy, 11),
			trade("MOM", 300, models.OptionTypeCall, models.TradeTypeBuy, 12),
			trade("MOM", 200, models.OptionTypeCall, models.TradeTypeBuy, 13),
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 14),
		}
		assert.Nil(t, a.momentumPattern("MOM", records))
	})

	t.Run("too few records", func(t *testing.T) {
		records := []models.TradeRecord{
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 10),
			trade("MOM", 200, models.OptionTypeCall, models.TradeTypeBuy, 11),
			trade("MOM", 300, models.OptionTypeCall, models.TradeTypeBuy, 12),
			trade("MOM", 400, models.OptionTypeCall, models.TradeTypeBuy, 13),
		}
		assert.Nil(t, a.momentumPattern("MOM", records))
	})

	t.Run("flat premiums do not rise", func(t *testing.T) {
		records := []models.TradeRecord{
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 10),
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 11),
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 12),
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 13),
			trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 14),
		}
		assert.Nil(t, a.momentumPattern("MOM", records))
	})
}

func TestPatterns_TickerOrdering(t *testing.T) {
	a := NewAnalyzer()

	records := []models.TradeRecord{
		sweep("BBB", 150000, 10),
		sweep("AAA", 150000, 10),
		sweep("BBB", 150000, 11),
		sweep("AAA", 150000, 11),
		sweep("BBB", 150000, 12),
		sweep("AAA", 150000, 12),
	}

	patterns := a.Patterns(records)
	require.Len(t, patterns, 2)
	assert.Equal(t, "BBB", patterns[0].Ticker)
	assert.Equal(t, "AAA", patterns[1].Ticker)
}

func TestPatterns_DoesNotMutateInput(t *testing.T) {
	a := NewAnalyzer()

	records := []models.TradeRecord{
		trade("MOM", 500, models.OptionTypeCall, models.TradeTypeBuy, 14),
		trade("MOM", 100, models.OptionTypeCall, models.TradeTypeBuy, 10),
		trade("MOM", 400, models.OptionTypeCall, models.TradeTypeBuy, 13),
		trade("MOM", 200, models.OptionTypeCall, models.TradeTypeBuy, 11),
		trade("MOM", 300, models.OptionTypeCall, models.TradeTypeBuy, 12),
	}
	first := records[0]

	a.Patterns(records)
	assert.Equal(t, first, records[0])
}
