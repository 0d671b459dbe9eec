package models

import "time"

// IngestReport records the outcome of a single file ingestion.
type IngestReport struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Source        string    `json:"source"`
	Format        string    `json:"format"`
	RowCount      int       `json:"row_count"`
	ImportedCount int       `json:"imported_count"`
	FailedCount   int       `json:"failed_count"`
	Errors        []string  `json:"errors,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Ingest format constants
const (
	IngestFormatCSV  = "csv"
	IngestFormatXLSX = "xlsx"
)

// IngestErrorSample caps how many row-level error messages are kept on a
// report; the full failure count is always recorded in FailedCount.
const IngestErrorSample = 10
