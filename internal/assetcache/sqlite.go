package assetcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStorage keeps cache generations in the asset_cache table of the
// shared application database. SQLite serializes writers, which gives the
// atomic put semantics concurrent handlers rely on.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

func (s *SQLiteStorage) Put(ctx context.Context, cache, url string, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO asset_cache (cache_name, url, status, content_type, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (cache_name, url) DO UPDATE SET
		 status = excluded.status, content_type = excluded.content_type,
		 body = excluded.body, stored_at = CURRENT_TIMESTAMP`,
		cache, url, e.Status, e.ContentType, e.Body)
	if err != nil {
		return fmt.Errorf("put cached asset: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Match(ctx context.Context, cache, url string) (Entry, bool, error) {
	var e Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT status, content_type, body FROM asset_cache WHERE cache_name = ? AND url = ?`,
		cache, url).Scan(&e.Status, &e.ContentType, &e.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("match cached asset: %w", err)
	}
	return e, true, nil
}

func (s *SQLiteStorage) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT cache_name FROM asset_cache`)
	if err != nil {
		return nil, fmt.Errorf("list cache names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan cache name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStorage) Delete(ctx context.Context, cache string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM asset_cache WHERE cache_name = ?`, cache); err != nil {
		return fmt.Errorf("delete cache generation: %w", err)
	}
	return nil
}
