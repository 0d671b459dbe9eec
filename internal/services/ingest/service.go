// Package ingest turns uploaded flow exports into stored trade records
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
	"github.com/bobmcallan/flowlens/internal/parser"
	"github.com/bobmcallan/flowlens/internal/services/analysis"
)

// Compile-time interface check
var _ interfaces.IngestService = (*Service)(nil)

// ErrMalformedInput marks structural parse failures (unreadable file, missing
// header) so the transport layer can report a client error rather than a
// server fault.
var ErrMalformedInput = errors.New("malformed ingest input")

// Service implements IngestService
type Service struct {
	storage    interfaces.StorageManager
	cache      interfaces.Cache
	normalizer *parser.Normalizer
	logger     *common.Logger
}

// NewService creates a new ingest service
func NewService(storage interfaces.StorageManager, cache interfaces.Cache, logger *common.Logger) *Service {
	return &Service{
		storage:    storage,
		cache:      cache,
		normalizer: parser.NewNormalizer(),
		logger:     logger,
	}
}

// IngestCSV normalizes a CSV export and stores the clean records.
func (s *Service) IngestCSV(ctx context.Context, userID string, r io.Reader, source string) (*models.IngestReport, error) {
	result, err := s.normalizer.NormalizeCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return s.finish(ctx, userID, source, models.IngestFormatCSV, result)
}

// IngestXLSX normalizes the first worksheet of an XLSX export and stores the
// clean records.
func (s *Service) IngestXLSX(ctx context.Context, userID string, r io.Reader, source string) (*models.IngestReport, error) {
	result, err := s.normalizer.NormalizeXLSX(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return s.finish(ctx, userID, source, models.IngestFormatXLSX, result)
}

// finish stamps provenance on the normalized records, stores them, records
// the ingest outcome and drops cached analyses the new trades invalidate.
// Failing to store the trades fails the ingest; failing to record the log
// entry does not.
func (s *Service) finish(ctx context.Context, userID, source, format string, result *parser.Result) (*models.IngestReport, error) {
	records := result.Records
	for i := range records {
		records[i].Source = source
	}

	inserted := 0
	if len(records) > 0 {
		n, err := s.storage.TradeStore().InsertTrades(ctx, userID, records)
		if err != nil {
			return nil, fmt.Errorf("failed to store trades: %w", err)
		}
		inserted = n
	}

	report := &models.IngestReport{
		UserID:        userID,
		Source:        source,
		Format:        format,
		RowCount:      result.RowCount,
		ImportedCount: inserted,
		FailedCount:   len(result.Errors),
		Errors:        sampleErrors(result.Errors),
		CreatedAt:     time.Now(),
	}

	if err := s.storage.IngestLogStore().Insert(ctx, report); err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("Failed to record ingest log")
	}

	s.invalidateAnalyses(ctx, userID)

	s.logger.Info().
		Str("user", userID).
		Str("source", source).
		Str("format", format).
		Int("rows", report.RowCount).
		Int("imported", report.ImportedCount).
		Int("failed", report.FailedCount).
		Msg("Ingest completed")

	return report, nil
}

// sampleErrors caps the error strings carried on a report; FailedCount keeps
// the full tally.
func sampleErrors(errs []string) []string {
	if len(errs) <= models.IngestErrorSample {
		return errs
	}
	return errs[:models.IngestErrorSample]
}

// invalidateAnalyses drops every cached range for the user. New trades can
// land anywhere in time, so all windows are suspect.
func (s *Service) invalidateAnalyses(ctx context.Context, userID string) {
	for _, r := range []common.TimeRange{common.RangeToday, common.RangeWeek, common.RangeMonth} {
		if err := s.cache.Delete(ctx, analysis.CacheKey(userID, r)); err != nil {
			s.logger.Warn().Err(err).Str("user", userID).Str("range", string(r)).Msg("Failed to invalidate cached analysis")
		}
	}
}
