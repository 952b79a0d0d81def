package importer

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// StateDB remembers which export files were imported so reruns over the
// same directory only pick up new or changed files.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/import-state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "import-state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS imported_files (
		path        TEXT PRIMARY KEY,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		sessions    INTEGER NOT NULL DEFAULT 0,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsImported reports whether relPath was imported with the same size and hash.
func (s *StateDB) IsImported(relPath string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM imported_files WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", relPath, err)
	}
	return count > 0, nil
}

// MarkImported records a successful import of relPath.
func (s *StateDB) MarkImported(relPath string, size int64, hash string, sessions int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO imported_files (path, size, hash, sessions) VALUES (?, ?, ?, ?)`,
		relPath, size, hash, sessions,
	)
	if err != nil {
		return fmt.Errorf("marking %s: %w", relPath, err)
	}
	return nil
}

// ImportedFile is one row of import history.
type ImportedFile struct {
	Path       string
	Size       int64
	Sessions   int
	ImportedAt time.Time
}

// sqliteTimestamp is the layout SQLite uses for CURRENT_TIMESTAMP (UTC).
const sqliteTimestamp = "2006-01-02 15:04:05"

// List returns every recorded import, newest first.
func (s *StateDB) List() ([]ImportedFile, error) {
	rows, err := s.db.Query(
		`SELECT path, size, sessions, CAST(imported_at AS TEXT)
		 FROM imported_files ORDER BY imported_at DESC, path`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing imports: %w", err)
	}
	defer rows.Close()

	var files []ImportedFile
	for rows.Next() {
		var f ImportedFile
		var at string
		if err := rows.Scan(&f.Path, &f.Size, &f.Sessions, &at); err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		f.ImportedAt, err = time.Parse(sqliteTimestamp, at)
		if err != nil {
			return nil, fmt.Errorf("import %s: bad timestamp %q: %w", f.Path, at, err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
