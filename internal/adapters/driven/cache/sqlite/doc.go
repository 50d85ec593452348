// Package sqlite provides a disk-backed driven.FetchCache.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Fetched repositories survive restarts, so repeat runs of
// `repoqa ask` against the same repository skip the GitHub walk.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.repoqa/data/cache.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on
// database-level locking provided by SQLite in WAL mode.
package sqlite
