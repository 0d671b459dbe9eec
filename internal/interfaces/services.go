package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/models"
)

// IngestService normalizes uploaded flow exports and persists them
type IngestService interface {
	// IngestCSV normalizes a CSV export and stores the clean records.
	// The source label is recorded on every stored trade.
	IngestCSV(ctx context.Context, userID string, r io.Reader, source string) (*models.IngestReport, error)

	// IngestXLSX normalizes the first worksheet of an XLSX export and
	// stores the clean records.
	IngestXLSX(ctx context.Context, userID string, r io.Reader, source string) (*models.IngestReport, error)
}

// AnalysisService runs the flow analysis pipeline
type AnalysisService interface {
	// Analyze computes insights, patterns, anomalies and a summary for a
	// user's trades over the given range. Results are cached; repeated
	// calls inside the cache window return the stored result.
	Analyze(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error)

	// Refresh recomputes the analysis regardless of any cached result.
	Refresh(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error)
}

// ReportService renders analysis results for human consumption
type ReportService interface {
	// BuildReport runs the analysis for the range and renders it as a
	// markdown document.
	BuildReport(ctx context.Context, userID string, timeRange common.TimeRange) (string, error)
}
