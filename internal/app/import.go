package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
)

// IngestFile reads a local flow export and ingests it for the given user.
// The format is chosen by file extension (.csv or .xlsx). When source is
// empty the file name is used as the source label.
func IngestFile(ctx context.Context, ingestService interfaces.IngestService, logger *common.Logger, filePath, userID, source string) (*models.IngestReport, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow file %s: %w", filePath, err)
	}
	defer file.Close()

	if userID == "" {
		userID = common.DefaultUserID
	}
	if source == "" {
		source = filepath.Base(filePath)
	}

	var report *models.IngestReport
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		report, err = ingestService.IngestCSV(ctx, userID, file, source)
	case ".xlsx":
		report, err = ingestService.IngestXLSX(ctx, userID, file, source)
	default:
		return nil, fmt.Errorf("unsupported file extension %q (expected .csv or .xlsx)", filepath.Ext(filePath))
	}
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", userID).
		Str("source", source).
		Int("imported", report.ImportedCount).
		Int("failed", report.FailedCount).
		Msg("Flow file ingested")

	return report, nil
}
