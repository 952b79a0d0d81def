package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/reprx/internal/ingest"
)

// Ingester turns one export file into stored history.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsInserted int
	SetsInserted     int64
	WarmupsSkipped   int
}

// Importer walks a directory of Alpha Progression CSV exports and feeds each
// new or changed file to the ingester.
type Importer struct {
	ingester Ingester
	state    *StateDB
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. state may be nil to import every file.
func New(ingester Ingester, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{ingester: ingester, state: state, log: log, dryRun: dryRun}
}

// Import processes every .csv file under dir in lexical order. A file the
// ingester rejects is logged and counted, and the run moves on. Files that
// failed are not marked, so the next run retries them.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := exportFiles(dir)
	if err != nil {
		return &imp.stats, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, dir, path); err != nil {
			return &imp.stats, err
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, dir, path string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", rel, err)
	}

	if imp.state != nil {
		done, err := imp.state.IsImported(rel, info.Size(), hash)
		if err != nil {
			return err
		}
		if done {
			imp.log.Debug("already imported", "file", rel)
			imp.stats.FilesSkipped++
			return nil
		}
	}

	if imp.dryRun {
		imp.log.Info("would import", "file", rel, "size", info.Size())
		imp.stats.FilesProcessed++
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", rel, err)
	}
	defer f.Close()

	res, err := imp.ingester.Ingest(ctx, f)
	if err != nil {
		imp.log.Warn("import failed", "file", rel, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	imp.stats.FilesProcessed++
	imp.stats.SessionsInserted += res.SessionsInserted
	imp.stats.SetsInserted += res.SetsInserted
	imp.stats.WarmupsSkipped += res.WarmupsSkipped
	imp.log.Info("imported", "file", rel, "sessions", res.SessionsInserted, "sets", res.SetsInserted)

	if imp.state != nil {
		if err := imp.state.MarkImported(rel, info.Size(), hash, res.SessionsInserted); err != nil {
			return err
		}
	}
	return nil
}

// exportFiles lists .csv files under dir, sorted.
func exportFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
