package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS mapping_configs (
	id         TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	created_at INTEGER NOT NULL
)`

// SQLite stores configurations in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(ctx context.Context, cfg Config) error {
	data, err := encode(cfg)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO mapping_configs (id, body, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		cfg.ID, data, cfg.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: sqlite save %s: %v", ErrUnavailable, cfg.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: sqlite save %s: %v", ErrUnavailable, cfg.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrConflict, cfg.ID)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (Config, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM mapping_configs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: sqlite get %s: %v", ErrUnavailable, id, err)
	}
	return decode(id, data)
}
