package mcp

import (
	"context"
	"time"

	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySessions(ctx context.Context, start, end time.Time, limit int) ([]models.SessionRow, error)
	QuerySetLogs(ctx context.Context, f storage.SetLogFilter) ([]models.SetLogRow, error)
	GetTemplatesForWeek(ctx context.Context) ([]models.Template, error)
	GetStats(ctx context.Context) (*storage.TrainingStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
