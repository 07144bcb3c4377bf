package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"quizverse/internal/domain"
)

// RecordStore keeps content records in a single SQLite table.
type RecordStore struct {
	db *sqlx.DB
}

type recordRow struct {
	Data []byte `db:"data"`
}

// Open connects to the database file at path (":memory:" for tests) and
// ensures the schema exists.
func Open(path string) (*RecordStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// SQLite doesn't support multiple writers; one connection also keeps
	// an in-memory database alive for the store's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &RecordStore{db: db}
	if err := store.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *RecordStore) initializeSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (kind, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

func (s *RecordStore) Close() error {
	return s.db.Close()
}

func (s *RecordStore) Put(ctx context.Context, kind, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (kind, id, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (kind, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		kind, id, data)
	if err != nil {
		return fmt.Errorf("put %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *RecordStore) Get(ctx context.Context, kind, id string) ([]byte, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, `SELECT data FROM records WHERE kind = ? AND id = ?`, kind, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return row.Data, nil
}

func (s *RecordStore) Delete(ctx context.Context, kind, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *RecordStore) List(ctx context.Context, kind string) ([][]byte, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT data FROM records WHERE kind = ? ORDER BY id`, kind); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	out := make([][]byte, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Data)
	}
	return out, nil
}
