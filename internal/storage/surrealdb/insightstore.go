package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
)

// insightSelectFields lists the fields to select from insight, aliasing insight_id to id for struct mapping.
const insightSelectFields = `insight_id as id, user_id, insight_type, ticker, title, description,
	confidence, data_points, metadata, created_at`

// InsightStore implements interfaces.InsightStore using SurrealDB.
type InsightStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewInsightStore creates a new InsightStore.
func NewInsightStore(db *surrealdb.DB, logger *common.Logger) *InsightStore {
	return &InsightStore{db: db, logger: logger}
}

func (s *InsightStore) Insert(ctx context.Context, userID string, insights []models.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]map[string]any, 0, len(insights))
	for i := range insights {
		in := &insights[i]
		if in.ID == "" {
			in.ID = fmt.Sprintf("in_%s", uuid.New().String()[:8])
		}
		in.UserID = userID
		if in.CreatedAt.IsZero() {
			in.CreatedAt = now
		}
		rows = append(rows, map[string]any{
			"insight_id":   in.ID,
			"user_id":      in.UserID,
			"insight_type": in.InsightType,
			"ticker":       in.Ticker,
			"title":        in.Title,
			"description":  in.Description,
			"confidence":   in.Confidence,
			"data_points":  in.DataPoints,
			"metadata":     in.Metadata,
			"created_at":   in.CreatedAt,
		})
	}

	sql := "FOR $row IN $rows { UPSERT type::record('insight', $row.insight_id) CONTENT $row }"
	vars := map[string]any{"rows": rows}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to insert insights after retries: %w", lastErr)
}

func (s *InsightStore) List(ctx context.Context, userID string, opts interfaces.InsightListOptions) ([]*models.Insight, int, error) {
	// Build WHERE clauses
	where := " WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}

	if opts.InsightType != "" {
		where += " AND insight_type = $insight_type"
		vars["insight_type"] = opts.InsightType
	}
	if opts.Ticker != "" {
		where += " AND ticker = $ticker"
		vars["ticker"] = opts.Ticker
	}

	// Count query
	countSQL := "SELECT count() AS cnt FROM insight" + where + " GROUP ALL"
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

	// Data query — insight_id as tiebreaker for deterministic ordering when timestamps are equal
	dataSQL := "SELECT " + insightSelectFields + " FROM insight" + where + " ORDER BY created_at DESC, insight_id DESC LIMIT $limit START $start"
	vars["limit"] = perPage
	vars["start"] = offset

	results, err := surrealdb.Query[[]models.Insight](ctx, s.db, dataSQL, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list insights: %w", err)
	}

	items := make([]*models.Insight, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			items = append(items, &(*results)[0].Result[i])
		}
	}

	return items, total, nil
}

// Compile-time check
var _ interfaces.InsightStore = (*InsightStore)(nil)
