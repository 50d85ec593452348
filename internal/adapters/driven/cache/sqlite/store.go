package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/repoqa/internal/adapters/driven/cache/sqlite/migrations"
	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.FetchCache = (*Store)(nil)

// Store is a SQLite-backed fetch cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the cache database in dataDir.
// If dataDir is empty, defaults to ~/.repoqa/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".repoqa", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached files for a repository key.
func (s *Store) Get(ctx context.Context, key string) (domain.FileMap, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT file_count FROM fetch_cache_entries WHERE repo = ?", key).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT path, content FROM fetch_cache_files WHERE repo = ?", key)
	if err != nil {
		return nil, false, fmt.Errorf("querying cached files: %w", err)
	}
	defer rows.Close()

	files := make(domain.FileMap, count)
	for rows.Next() {
		var path, content string
		if err := rows.Scan(&path, &content); err != nil {
			return nil, false, fmt.Errorf("scanning cached file: %w", err)
		}
		files[path] = content
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating cached files: %w", err)
	}

	return files, true, nil
}

// Put replaces the cached files for a repository key.
func (s *Store) Put(ctx context.Context, key string, files domain.FileMap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM fetch_cache_entries WHERE repo = ?", key); err != nil {
		return fmt.Errorf("clearing cache entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO fetch_cache_entries (repo, file_count, stored_at) VALUES (?, ?, ?)",
		key, len(files), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO fetch_cache_files (repo, path, content) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, path := range files.Paths() {
		if _, err := stmt.ExecContext(ctx, key, path, files[path]); err != nil {
			return fmt.Errorf("saving cached file %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}

// Invalidate removes one repository. File rows cascade.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fetch_cache_entries WHERE repo = ?", key); err != nil {
		return fmt.Errorf("invalidating cache entry: %w", err)
	}
	return nil
}

// Clear removes every cached repository.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fetch_cache_entries"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_fetch_cache.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
