// Package store persists documents in SQLite. A document is stored as the
// JSON array of its root-level nodes, ids included.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dshills/inkwell/internal/tree"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrInvalidID = errors.New("store: invalid document id")
)

// Summary describes a stored document.
type Summary struct {
	ID        string
	Title     string
	UpdatedAt time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the document under id, replacing any previous version.
func (s *Store) Save(ctx context.Context, id string, nodes []tree.Node) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	body, err := tree.MarshalNodes(nodes)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO documents(document_id, title, body_json, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(document_id) DO UPDATE SET
	title=excluded.title,
	body_json=excluded.body_json,
	updated_at=excluded.updated_at
`, id, Title(nodes), string(body), ts(s.now()))
	if err != nil {
		return fmt.Errorf("save document %s: %w", id, err)
	}
	return nil
}

// Load reads the document stored under id.
func (s *Store) Load(ctx context.Context, id string) ([]tree.Node, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body_json FROM documents WHERE document_id = ?`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	nodes, err := tree.UnmarshalNodes([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return nodes, nil
}

// List returns every stored document, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_id, title, updated_at FROM documents ORDER BY updated_at DESC, document_id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated string
		if err := rows.Scan(&sum.ID, &sum.Title, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if sum.UpdatedAt, err = parseTS(updated); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the document stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Title is the first non-blank root text, trimmed to one line.
func Title(nodes []tree.Node) string {
	for _, n := range nodes {
		s := strings.TrimSpace(tree.String(n))
		if s == "" {
			continue
		}
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[:i]
		}
		return s
	}
	return ""
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
