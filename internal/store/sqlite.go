package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists collections in a single database file, one
// table per collection holding the document JSON. Field filters use
// json_extract so callers can filter on nested fields the same way
// the memory store does.
type SQLiteStore struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]bool
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("data", "fieldops.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLiteStore{db: db, tables: map[string]bool{}}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Collection(name string) Collection {
	return &sqliteCollection{store: s, table: "col_" + sanitizeName(name)}
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (s *SQLiteStore) ensureTable(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tables[table] {
		return nil
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`, table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	s.tables[table] = true
	return nil
}

type sqliteCollection struct {
	store *SQLiteStore
	table string
}

func (c *sqliteCollection) Put(ctx context.Context, id string, data []byte) error {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return err
	}
	now := time.Now().UnixNano()
	_, err := c.store.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		c.table), id, string(data), now, now)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", c.table, id, err)
	}
	return nil
}

func (c *sqliteCollection) Get(ctx context.Context, id string) (Doc, error) {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return Doc{}, err
	}
	row := c.store.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT id, data, created_at, updated_at FROM %s WHERE id = ?`, c.table), id)
	return scanDoc(row)
}

func (c *sqliteCollection) Delete(ctx context.Context, id string) error {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return err
	}
	res, err := c.store.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE id = ?`, c.table), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *sqliteCollection) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := c.store.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE id IN (%s)`, c.table, placeholders), args...)
	if err != nil {
		return fmt.Errorf("delete many %s: %w", c.table, err)
	}
	return nil
}

func (c *sqliteCollection) List(ctx context.Context, filters ...Filter) ([]Doc, error) {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	for _, f := range filters {
		where = append(where, `json_extract(data, ?) = ?`)
		args = append(args, "$."+f.Field, f.Value)
	}
	query := fmt.Sprintf(`SELECT id, data, created_at, updated_at FROM %s`, c.table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id ASC"

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if out == nil {
		out = []Doc{}
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc(row rowScanner) (Doc, error) {
	var (
		doc     Doc
		data    string
		created int64
		updated int64
	)
	if err := row.Scan(&doc.ID, &data, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return Doc{}, ErrNotFound
		}
		return Doc{}, err
	}
	doc.Data = []byte(data)
	doc.CreatedAt = time.Unix(0, created)
	doc.UpdatedAt = time.Unix(0, updated)
	return doc, nil
}
