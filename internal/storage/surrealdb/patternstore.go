package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// patternSelectFields lists the fields to select from pattern, aliasing pattern_id to id for struct mapping.
const patternSelectFields = `pattern_id as id, user_id, pattern_type, ticker, name, description,
	conditions, occurrences, success_rate, avg_return, time_horizon,
	first_seen, last_seen, created_at, updated_at`

// PatternStore implements interfaces.PatternStore using SurrealDB.
type PatternStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewPatternStore creates a new PatternStore.
func NewPatternStore(db *surrealdb.DB, logger *common.Logger) *PatternStore {
	return &PatternStore{db: db, logger: logger}
}

func patternID(userID, ticker, patternType string) string {
	return userID + "_" + ticker + "_" + patternType
}

func (s *PatternStore) Upsert(ctx context.Context, userID string, pattern *models.DetectedPattern) error {
	if pattern.Occurrences < 1 {
		pattern.Occurrences = 1
	}
	pattern.UserID = userID
	pattern.ID = patternID(userID, pattern.Ticker, pattern.PatternType)

	// Single statement so occurrence accumulation stays atomic under
	// concurrent analysis runs. ?? keeps the stored first_seen/created_at.
	sql := `UPSERT type::record('pattern', $id) SET
		pattern_id = $id, user_id = $user_id, pattern_type = $pattern_type, ticker = $ticker,
		name = $name, description = $description, conditions = $conditions,
		occurrences += $occurrences,
		success_rate = $success_rate, avg_return = $avg_return, time_horizon = $time_horizon,
		first_seen = first_seen ?? $now, last_seen = $now,
		created_at = created_at ?? $now, updated_at = $now`
	vars := map[string]any{
		"id":           pattern.ID,
		"user_id":      pattern.UserID,
		"pattern_type": pattern.PatternType,
		"ticker":       pattern.Ticker,
		"name":         pattern.Name,
		"description":  pattern.Description,
		"conditions":   pattern.Conditions,
		"occurrences":  pattern.Occurrences,
		"success_rate": pattern.SuccessRate,
		"avg_return":   pattern.AvgReturn,
		"time_horizon": pattern.TimeHorizon,
		"now":          time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to upsert pattern after retries: %w", lastErr)
}

func (s *PatternStore) Get(ctx context.Context, userID, ticker, patternType string) (*models.DetectedPattern, error) {
	sql := "SELECT " + patternSelectFields + " FROM $rid"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("pattern", patternID(userID, ticker, patternType)),
	}

	results, err := surrealdb.Query[[]models.DetectedPattern](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

func (s *PatternStore) List(ctx context.Context, userID string, opts interfaces.PatternListOptions) ([]*models.DetectedPattern, error) {
	// Build WHERE clauses
	where := " WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}

	if opts.Ticker != "" {
		where += " AND ticker = $ticker"
		vars["ticker"] = opts.Ticker
	}
	if opts.PatternType != "" {
		where += " AND pattern_type = $pattern_type"
		vars["pattern_type"] = opts.PatternType
	}

	sql := "SELECT " + patternSelectFields + " FROM pattern" + where + " ORDER BY last_seen DESC, pattern_id DESC"

	results, err := surrealdb.Query[[]models.DetectedPattern](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}

	items := make([]*models.DetectedPattern, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			items = append(items, &(*results)[0].Result[i])
		}
	}
	return items, nil
}

// Compile-time check
var _ interfaces.PatternStore = (*PatternStore)(nil)
