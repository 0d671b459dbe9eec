// Package parser normalizes vendor options-flow exports into trade records.
// Input arrives as CSV or XLSX with wildly inconsistent column headings; the
// normalizer maps known heading aliases onto canonical fields, validates each
// row independently and reports per-row failures without aborting the batch.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/flowlens/internal/models"
)

// Result is the outcome of normalizing one export. RowCount covers every data
// row seen; rows that fail validation land in Errors and produce no record.
type Result struct {
	Records  []models.TradeRecord
	Errors   []string
	RowCount int
}

// Normalizer converts raw tabular exports into trade records.
type Normalizer struct {
	nowFn func() time.Time
}

// NewNormalizer creates a normalizer using the system clock for bare
// time-of-day values.
func NewNormalizer() *Normalizer {
	return &Normalizer{nowFn: time.Now}
}

// NormalizeCSV reads a CSV export. Only structural failures (unreadable
// input, malformed CSV framing) return an error; row-level problems are
// collected in the result.
func (n *Normalizer) NormalizeCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, row)
	}

	return n.normalizeRows(header, rows), nil
}

// NormalizeXLSX reads the first sheet of an XLSX workbook. The first row is
// treated as the header.
func (n *Normalizer) NormalizeXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	return n.normalizeRows(rows[0], rows[1:]), nil
}

type boundColumn struct {
	index int
	field string
}

func (n *Normalizer) normalizeRows(header []string, rows [][]string) *Result {
	var columns []boundColumn
	for i, h := range header {
		if name, ok := canonicalField(h); ok {
			columns = append(columns, boundColumn{index: i, field: name})
		}
	}

	result := &Result{RowCount: len(rows)}
	for i, row := range rows {
		// When two columns alias the same field, the first non-empty
		// value wins.
		fields := make(map[string]string)
		for _, col := range columns {
			if col.index >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[col.index])
			if v == "" {
				continue
			}
			if _, seen := fields[col.field]; !seen {
				fields[col.field] = v
			}
		}

		record, err := n.buildRecord(fields)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result
}

// buildRecord validates and converts one row's canonical fields. Identity
// fields (ID, UserID, CreatedAt) are left for the storage layer to stamp.
func (n *Normalizer) buildRecord(fields map[string]string) (models.TradeRecord, error) {
	var missing []string
	for _, name := range requiredFields {
		if fields[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return models.TradeRecord{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	tradeTime, err := n.parseTradeTime(fields[FieldTimeOfTrade])
	if err != nil {
		return models.TradeRecord{}, err
	}

	optionType := normalizeOptionType(fields[FieldOptionType])
	if !models.ValidOptionTypes[optionType] {
		return models.TradeRecord{}, fmt.Errorf("invalid option type %q", fields[FieldOptionType])
	}

	tradeType := normalizeTradeType(fields[FieldTradeType])
	if !models.ValidTradeTypes[tradeType] {
		return models.TradeRecord{}, fmt.Errorf("invalid trade type %q", fields[FieldTradeType])
	}

	// Premium is required but tolerates junk values; an unparseable premium
	// records as zero rather than dropping the row.
	premium, ok := parseNumber(fields[FieldPremium])
	if !ok {
		premium = 0
	}

	record := models.TradeRecord{
		TradeTime:  tradeTime,
		Ticker:     strings.ToUpper(fields[FieldTickerSymbol]),
		Premium:    premium,
		OptionType: optionType,
		TradeType:  tradeType,
	}

	if v, ok := parseNumber(fields[FieldScore]); ok {
		record.Score = &v
	}
	if v, ok := parseNumber(fields[FieldSpotPrice]); ok {
		record.SpotPrice = &v
	}
	if v, ok := parseNumber(fields[FieldStrikePrice]); ok {
		record.StrikePrice = &v
	}
	if v, ok := parseNumber(fields[FieldImpliedVolatility]); ok {
		record.ImpliedVolatility = &v
	}
	if v, ok := parseNumber(fields[FieldOpenInterest]); ok {
		oi := int64(v)
		record.OpenInterest = &oi
	}

	return record, nil
}

// tradeTimeLayouts are tried in order for full date or datetime values.
var tradeTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// clockLayouts are bare time-of-day values. Intraday feeds often carry no
// date column, so these combine with the current date.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

func (n *Normalizer) parseTradeTime(raw string) (time.Time, error) {
	for _, layout := range tradeTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			now := n.nowFn()
			return time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, now.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time_of_trade %q", raw)
}

// numberCleaner strips currency symbols and separators vendors embed in
// numeric columns ("$1,234.50", "45%").
var numberCleaner = strings.NewReplacer("$", "", ",", "", "%", "", " ", "")

func parseNumber(raw string) (float64, bool) {
	v := numberCleaner.Replace(raw)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func normalizeOptionType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "c" || strings.Contains(v, "call"):
		return models.OptionTypeCall
	case v == "p" || strings.Contains(v, "put"):
		return models.OptionTypePut
	default:
		return v
	}
}

func normalizeTradeType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "b" || strings.Contains(v, "buy"):
		return models.TradeTypeBuy
	case v == "s" || strings.Contains(v, "sell"):
		return models.TradeTypeSell
	default:
		return v
	}
}
