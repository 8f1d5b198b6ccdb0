package pathcache

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

const createPathsTable = `
	CREATE TABLE IF NOT EXISTS wiki_paths (
		title      TEXT PRIMARY KEY,
		path       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// jsonPath stores a Path as a JSONB value.
type jsonPath domain.Path

// Value implements driver.Valuer.
func (p jsonPath) Value() (driver.Value, error) {
	return json.Marshal(domain.Path(p))
}

type pathRow struct {
	Title string `db:"title"`
	Path  []byte `db:"path"`
}

// PostgresStore keeps the mapping in the wiki_paths table, one row per title.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore returns a store over db.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the wiki_paths table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createPathsTable); err != nil {
		return fmt.Errorf("failed to create wiki_paths table: %w", err)
	}
	return nil
}

// Load reads every row. Rows whose path is not a JSON array come back as
// nil paths.
func (s *PostgresStore) Load(ctx context.Context) (map[string]domain.Path, error) {
	var rows []pathRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT title, path FROM wiki_paths`); err != nil {
		return nil, fmt.Errorf("failed to load wiki paths: %w", err)
	}

	paths := make(map[string]domain.Path, len(rows))
	for _, row := range rows {
		paths[row.Title] = decodePath(row.Path)
	}
	return paths, nil
}

// Save replaces all rows in one transaction.
func (s *PostgresStore) Save(ctx context.Context, paths map[string]domain.Path) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err = tx.ExecContext(ctx, `DELETE FROM wiki_paths`); err != nil {
		return fmt.Errorf("failed to clear wiki paths: %w", err)
	}

	if len(paths) > 0 {
		stmt, prepErr := tx.PreparexContext(ctx,
			`INSERT INTO wiki_paths (title, path, updated_at) VALUES ($1, $2, NOW())`)
		if prepErr != nil {
			return fmt.Errorf("failed to prepare path insert: %w", prepErr)
		}
		defer stmt.Close()

		for _, title := range slices.Sorted(maps.Keys(paths)) {
			if _, err = stmt.ExecContext(ctx, title, jsonPath(paths[title])); err != nil {
				return fmt.Errorf("failed to insert path for %q: %w", title, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
