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
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ingestSelectFields lists the fields to select from ingest_log, aliasing ingest_id to id for struct mapping.
const ingestSelectFields = `ingest_id as id, user_id, source, format, row_count,
	imported_count, failed_count, errors, created_at`

// IngestLogStore implements interfaces.IngestLogStore using SurrealDB.
type IngestLogStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewIngestLogStore creates a new IngestLogStore.
func NewIngestLogStore(db *surrealdb.DB, logger *common.Logger) *IngestLogStore {
	return &IngestLogStore{db: db, logger: logger}
}

func (s *IngestLogStore) Insert(ctx context.Context, report *models.IngestReport) error {
	if report.ID == "" {
		report.ID = fmt.Sprintf("ing_%s", uuid.New().String()[:8])
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	sql := `UPSERT $rid SET
		ingest_id = $ingest_id, user_id = $user_id, source = $source, format = $format,
		row_count = $row_count, imported_count = $imported_count, failed_count = $failed_count,
		errors = $errors, created_at = $created_at`
	vars := map[string]any{
		"rid":            surrealmodels.NewRecordID("ingest_log", report.ID),
		"ingest_id":      report.ID,
		"user_id":        report.UserID,
		"source":         report.Source,
		"format":         report.Format,
		"row_count":      report.RowCount,
		"imported_count": report.ImportedCount,
		"failed_count":   report.FailedCount,
		"errors":         report.Errors,
		"created_at":     report.CreatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to insert ingest log: %w", err)
	}
	return nil
}

func (s *IngestLogStore) List(ctx context.Context, userID string, page, perPage int) ([]*models.IngestReport, int, error) {
	vars := map[string]any{"user_id": userID}

	// Count query
	countSQL := "SELECT count() AS cnt FROM ingest_log WHERE user_id = $user_id GROUP ALL"
	type countResult struct {
		Cnt int `json:"cnt"`
	}
	total := 0
	countResults, err := surrealdb.Query[[]countResult](ctx, s.db, countSQL, vars)
	if err == nil && countResults != nil && len(*countResults) > 0 && len((*countResults)[0].Result) > 0 {
		total = (*countResults)[0].Result[0].Cnt
	}

	// Pagination
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage

	// Data query — ingest_id as tiebreaker for deterministic ordering when timestamps are equal
	dataSQL := "SELECT " + ingestSelectFields + " FROM ingest_log WHERE user_id = $user_id ORDER BY created_at DESC, ingest_id DESC LIMIT $limit START $start"
	vars["limit"] = perPage
	vars["start"] = offset

	results, err := surrealdb.Query[[]models.IngestReport](ctx, s.db, dataSQL, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ingest logs: %w", err)
	}

	items := make([]*models.IngestReport, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			items = append(items, &(*results)[0].Result[i])
		}
	}

	return items, total, nil
}

// Compile-time check
var _ interfaces.IngestLogStore = (*IngestLogStore)(nil)
