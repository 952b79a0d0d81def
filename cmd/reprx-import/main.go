package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/claude/reprx/internal/config"
	"github.com/claude/reprx/internal/importer"
	"github.com/claude/reprx/internal/ingest/alpha"
	"github.com/claude/reprx/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "directory of Alpha Progression CSV exports (required)")
	stateDir := flag.String("state-dir", ".reprx-import", "directory for the import state database")
	force := flag.Bool("force", false, "re-import files even if unchanged")
	dryRun := flag.Bool("dry-run", false, "list files that would be imported without touching the database")
	list := flag.Bool("list", false, "print previously imported files from the state database and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *list {
		if err := listImports(*stateDir); err != nil {
			log.Error("failed to list imports", "error", err)
			os.Exit(1)
		}
		return
	}

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: reprx-import -config config.yaml -path /path/to/exports [-state-dir dir] [-force] [-dry-run]\n       reprx-import -list [-state-dir dir]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	var state *importer.StateDB
	if !*force {
		state, err = importer.OpenStateDB(*stateDir)
		if err != nil {
			log.Error("failed to open state db", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	}

	imp := importer.New(alpha.NewProvider(db, log), state, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_inserted", stats.SessionsInserted,
		"sets_inserted", stats.SetsInserted,
		"warmups_skipped", stats.WarmupsSkipped,
	)
}

func listImports(stateDir string) error {
	state, err := importer.OpenStateDB(stateDir)
	if err != nil {
		return err
	}
	defer state.Close()

	files, err := state.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("no imports recorded in", stateDir)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IMPORTED\tSESSIONS\tSIZE\tFILE")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", f.ImportedAt.Local().Format("2006-01-02 15:04"), f.Sessions, f.Size, f.Path)
	}
	return w.Flush()
}
