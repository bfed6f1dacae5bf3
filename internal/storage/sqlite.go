package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/topfiveapp/topfive/internal/task"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	collection TEXT NOT NULL,
	field      TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (collection, field)
);
`

// SQLiteBackend stores collections in a local sqlite file using the same
// hash semantics as redis: one row per (collection, field). Useful for
// running without a redis server.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (and if needed initializes) the database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// A pooled second connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// GetAll implements Backend.
func (b *SQLiteBackend) GetAll(ctx context.Context, collection string) (map[string]*task.Task, bool, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT field, value FROM kv WHERE collection = ?`, collection)
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", collection, err)
	}
	defer rows.Close()

	tasks := make(map[string]*task.Task)
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, false, fmt.Errorf("scan %s: %w", collection, err)
		}
		tasks[id] = task.Decode(id, value)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate %s: %w", collection, err)
	}
	if len(tasks) == 0 {
		return nil, false, nil
	}
	return tasks, true, nil
}

// SetFields implements Backend. All upserts run in one transaction.
func (b *SQLiteBackend) SetFields(ctx context.Context, collection string, fields map[string]*task.Task) error {
	if len(fields) == 0 {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for id, t := range fields {
		encoded, err := task.Encode(t)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kv (collection, field, value) VALUES (?, ?, ?)
			 ON CONFLICT (collection, field) DO UPDATE SET value = excluded.value`,
			collection, id, encoded)
		if err != nil {
			return fmt.Errorf("upsert %s %s: %w", collection, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteField implements Backend.
func (b *SQLiteBackend) DeleteField(ctx context.Context, collection, id string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM kv WHERE collection = ? AND field = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", collection, id, err)
	}
	return nil
}

// Ping implements Backend.
func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
