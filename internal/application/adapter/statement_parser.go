package adapter

import (
	"context"
	"time"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// StatementParser turns raw statement bytes into ordered entries.
// Fatal problems are returned as *domainerror.ImportError, row-level problems are left
// on the entries (nil Date or Amount) for the caller to report.
type StatementParser interface {
	Parse(ctx context.Context, content []byte, cfg *entity.ImportConfiguration, loc *time.Location) ([]entity.ImportedEntry, error)
}

// FormatDetector resolves the statement format from the configured preference and the content.
type FormatDetector interface {
	Detect(preference entity.ImportFormat, fileName string, content []byte) (entity.ImportFormat, error)
}
