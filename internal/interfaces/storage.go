// Package interfaces defines service contracts for Flowlens
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/flowlens/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	// Storage accessors
	TradeStore() TradeStore
	InsightStore() InsightStore
	PatternStore() PatternStore
	IngestLogStore() IngestLogStore

	// Lifecycle
	Close() error
}

// TradeStore persists normalized trade records
type TradeStore interface {
	// InsertTrades persists a batch of records for a user, stamping ids and
	// ownership. Returns the number of records written.
	InsertTrades(ctx context.Context, userID string, records []models.TradeRecord) (int, error)

	// FetchRecords returns a user's trades with trade time in [start, end),
	// ordered by trade time descending.
	FetchRecords(ctx context.Context, userID string, start, end time.Time) ([]models.TradeRecord, error)

	// List returns a filtered page of trades and the total match count.
	List(ctx context.Context, userID string, opts TradeListOptions) ([]*models.TradeRecord, int, error)

	// Stats aggregates per-ticker activity for trades since the given time.
	Stats(ctx context.Context, userID string, since time.Time) ([]models.TickerStats, error)

	// ActiveUsers returns ids of users with trades recorded since the given time.
	ActiveUsers(ctx context.Context, since time.Time) ([]string, error)
}

// TradeListOptions configures filtering and pagination for trade queries.
type TradeListOptions struct {
	Ticker    string
	TradeType string
	Start     *time.Time
	End       *time.Time
	Page      int
	PerPage   int
}

// InsightStore persists analysis insights. Insights are append-only; every
// analysis run adds fresh rows.
type InsightStore interface {
	Insert(ctx context.Context, userID string, insights []models.Insight) error
	List(ctx context.Context, userID string, opts InsightListOptions) ([]*models.Insight, int, error) // items, total, error
}

// InsightListOptions configures filtering and pagination for insight queries.
type InsightListOptions struct {
	InsightType string
	Ticker      string
	Page        int
	PerPage     int
}

// PatternStore persists detected patterns keyed by (user, ticker, pattern type).
type PatternStore interface {
	// Upsert accumulates a detection: occurrences add onto any stored count
	// for the same key and the last-seen timestamp refreshes. Atomic, so
	// concurrent analysis runs for one user never lose counts.
	Upsert(ctx context.Context, userID string, pattern *models.DetectedPattern) error

	// Get returns the stored pattern for a key, or nil when absent.
	Get(ctx context.Context, userID, ticker, patternType string) (*models.DetectedPattern, error)

	// List returns a user's patterns, most recently seen first.
	List(ctx context.Context, userID string, opts PatternListOptions) ([]*models.DetectedPattern, error)
}

// PatternListOptions configures filtering for pattern queries.
type PatternListOptions struct {
	Ticker      string
	PatternType string
}

// IngestLogStore persists ingest reports
type IngestLogStore interface {
	Insert(ctx context.Context, report *models.IngestReport) error
	List(ctx context.Context, userID string, page, perPage int) ([]*models.IngestReport, int, error) // items, total, error
}
