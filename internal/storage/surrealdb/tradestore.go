package surrealdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
)

// tradeSelectFields lists the fields to select from trade, aliasing trade_id to id for struct mapping.
const tradeSelectFields = `trade_id as id, user_id, trade_time, ticker, premium, option_type, trade_type,
	score, spot_price, strike_price, implied_volatility, open_interest, source, created_at`

// insertBatchSize bounds how many records a single insert statement carries.
const insertBatchSize = 500

// TradeStore implements interfaces.TradeStore using SurrealDB.
type TradeStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(db *surrealdb.DB, logger *common.Logger) *TradeStore {
	return &TradeStore{db: db, logger: logger}
}

func (s *TradeStore) InsertTrades(ctx context.Context, userID string, records []models.TradeRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now()
	rows := make([]map[string]any, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = fmt.Sprintf("tr_%s", uuid.New().String()[:8])
		}
		r.UserID = userID
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		rows = append(rows, tradeRow(r))
	}

	sql := "FOR $row IN $rows { UPSERT type::record('trade', $row.trade_id) CONTENT $row }"

	written := 0
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		vars := map[string]any{"rows": rows[start:end]}

		var lastErr error
		for attempt := 1; attempt <= 3; attempt++ {
			_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
			if err == nil {
				lastErr = nil
				break
			}
			lastErr = err
		}
		if lastErr != nil {
			return written, fmt.Errorf("failed to insert trades after retries: %w", lastErr)
		}
		written += end - start
	}
	return written, nil
}

// tradeRow maps a record to its stored fields. The record key lives in
// trade_id; SurrealDB record ids do not round-trip into string fields.
func tradeRow(r *models.TradeRecord) map[string]any {
	return map[string]any{
		"trade_id":           r.ID,
		"user_id":            r.UserID,
		"trade_time":         r.TradeTime,
		"ticker":             r.Ticker,
		"premium":            r.Premium,
		"option_type":        r.OptionType,
		"trade_type":         r.TradeType,
		"score":              r.Score,
		"spot_price":         r.SpotPrice,
		"strike_price":       r.StrikePrice,
		"implied_volatility": r.ImpliedVolatility,
		"open_interest":      r.OpenInterest,
		"source":             r.Source,
		"created_at":         r.CreatedAt,
	}
}

func (s *TradeStore) FetchRecords(ctx context.Context, userID string, start, end time.Time) ([]models.TradeRecord, error) {
	sql := "SELECT " + tradeSelectFields + " FROM trade WHERE user_id = $user_id AND trade_time >= $from AND trade_time < $to ORDER BY trade_time DESC"
	vars := map[string]any{
		"user_id": userID,
		"from":    start,
		"to":      end,
	}

	results, err := surrealdb.Query[[]models.TradeRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trade records: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

func (s *TradeStore) List(ctx context.Context, userID string, opts interfaces.TradeListOptions) ([]*models.TradeRecord, int, error) {
	// Build WHERE clauses
	where := " WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}

	if opts.Ticker != "" {
		where += " AND ticker = $ticker"
		vars["ticker"] = opts.Ticker
	}
	if opts.TradeType != "" {
		where += " AND trade_type = $trade_type"
		vars["trade_type"] = opts.TradeType
	}
	if opts.Start != nil {
		where += " AND trade_time >= $from"
		vars["from"] = *opts.Start
	}
	if opts.End != nil {
		where += " AND trade_time < $to"
		vars["to"] = *opts.End
	}

	// Count query
	countSQL := "SELECT count() AS cnt FROM trade" + where + " GROUP ALL"
	type countResult struct {
		Cnt int `json:"cnt"`
	}
	total := 0
	countResults, err := surrealdb.Query[[]countResult](ctx, s.db, countSQL, vars)
	if err == nil && countResults != nil && len(*countResults) > 0 && len((*countResults)[0].Result) > 0 {
		total = (*countResults)[0].Result[0].Cnt
	}

	// Pagination
	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage

	// Data query — trade_id as tiebreaker for deterministic ordering when timestamps are equal
	dataSQL := "SELECT " + tradeSelectFields + " FROM trade" + where + " ORDER BY trade_time DESC, trade_id DESC LIMIT $limit START $start"
	vars["limit"] = perPage
	vars["start"] = offset

	results, err := surrealdb.Query[[]models.TradeRecord](ctx, s.db, dataSQL, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trades: %w", err)
	}

	items := make([]*models.TradeRecord, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			items = append(items, &(*results)[0].Result[i])
		}
	}

	return items, total, nil
}

func (s *TradeStore) Stats(ctx context.Context, userID string, since time.Time) ([]models.TickerStats, error) {
	sql := `SELECT ticker, count() AS trade_count, math::sum(premium) AS total_premium,
		count(option_type = $call) AS call_count, count(option_type = $put) AS put_count
		FROM trade WHERE user_id = $user_id AND trade_time >= $since GROUP BY ticker`
	vars := map[string]any{
		"user_id": userID,
		"since":   since,
		"call":    models.OptionTypeCall,
		"put":     models.OptionTypePut,
	}

	results, err := surrealdb.Query[[]models.TickerStats](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ticker stats: %w", err)
	}

	var stats []models.TickerStats
	if results != nil && len(*results) > 0 {
		stats = (*results)[0].Result
	}

	// SurrealDB group results come back in group-key order; rank by premium here
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalPremium > stats[j].TotalPremium
	})
	return stats, nil
}

func (s *TradeStore) ActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	sql := "SELECT user_id FROM trade WHERE created_at >= $since GROUP BY user_id"
	vars := map[string]any{"since": since}

	type userResult struct {
		UserID string `json:"user_id"`
	}

	results, err := surrealdb.Query[[]userResult](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	var users []string
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			users = append(users, r.UserID)
		}
	}
	return users, nil
}

// Compile-time check
var _ interfaces.TradeStore = (*TradeStore)(nil)
