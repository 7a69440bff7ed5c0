package stage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps artifacts in a SQLite database. Every saved row records
// the run id of the store instance that wrote it.
type SQLiteStore struct {
	db        *sql.DB
	runID     string
	closeOnce sync.Once
	closeErr  error
}

// Record describes one stored artifact.
type Record struct {
	Name      string
	RunID     string
	CreatedAt time.Time
	Size      int
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("stage: sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("stage: create database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("stage: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("stage: connect to database: %w", err)
	}
	s := &SQLiteStore{db: db, runID: uuid.NewString()}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("stage: migrate: %w", err)
	}

	return s, nil
}

// RunID returns the id stamped on rows saved through this instance.
func (s *SQLiteStore) RunID() string { return s.runID }

// Close closes the database. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		s.closeErr = s.db.Close()
	})

	return s.closeErr
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	current := 0
	row := s.db.QueryRowContext(ctx, `SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1`)
	if err := row.Scan(&current); err != nil {
		if !errors.Is(err, sql.ErrNoRows) && !strings.Contains(err.Error(), "no such table") {
			return fmt.Errorf("read schema version: %w", err)
		}
		current = 0
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d: %w", m.version, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms) VALUES (?, ?)`,
			m.version, time.Now().UnixMilli()); err != nil {
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stages (
  name TEXT PRIMARY KEY,
  run_id TEXT NOT NULL,
  created_at_unix_ms INTEGER NOT NULL,
  data BLOB NOT NULL
);
`

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM stages WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stages (name, run_id, created_at_unix_ms, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		  run_id = excluded.run_id,
		  created_at_unix_ms = excluded.created_at_unix_ms,
		  data = excluded.data
	`, name, s.runID, time.Now().UnixMilli(), data)

	return err
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM stages WHERE name = ?`, name)
	return err
}

// Records lists the stored artifacts ordered by name.
func (s *SQLiteStore) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, run_id, created_at_unix_ms, length(data) FROM stages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var ms int64
		if err := rows.Scan(&r.Name, &r.RunID, &ms, &r.Size); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(ms)
		out = append(out, r)
	}

	return out, rows.Err()
}
