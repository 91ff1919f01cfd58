package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/aquaassist/internal/advisory"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS classification_history (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp        TEXT    NOT NULL,
	ph               REAL    NOT NULL,
	salinity         REAL    NOT NULL,
	dissolved_oxygen REAL    NOT NULL,
	ammonia          REAL    NOT NULL,
	prediction       TEXT    NOT NULL
)`

// SQLiteStore keeps history in a SQLite table. Insertion order is the
// AUTOINCREMENT id.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens the database at dsn and applies the pragmas. The table is
// created by Initialize.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storeErr("open", fmt.Errorf("open database: %w", err))
	}
	// One connection keeps :memory: databases coherent and serialises
	// writers inside the process.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, storeErr("open", fmt.Errorf("apply pragmas: %w", err))
	}
	return &SQLiteStore{db: db}, nil
}

// applyPragmas configures SQLite for a small single-writer log.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = FULL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return storeErr("initialize", err)
}

func (s *SQLiteStore) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classification_history (timestamp, ph, salinity, dissolved_oxygen, ammonia, prediction)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(time.RFC3339Nano), r.PH, r.Salinity, r.DissolvedOxygen, r.Ammonia, string(r.Label),
	)
	return storeErr("append", err)
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, ph, salinity, dissolved_oxygen, ammonia, prediction
		 FROM classification_history ORDER BY id`)
	if err != nil {
		return nil, storeErr("read", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r     Record
			ts    string
			label string
		)
		if err := rows.Scan(&ts, &r.PH, &r.Salinity, &r.DissolvedOxygen, &r.Ammonia, &label); err != nil {
			return nil, storeErr("read", err)
		}
		if r.Timestamp, err = parseTime(ts); err != nil {
			return nil, storeErr("read", err)
		}
		r.Label = advisory.Label(label)
		out = append(out, r)
	}
	return out, storeErr("read", rows.Err())
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classification_history`).Scan(&n)
	if err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
