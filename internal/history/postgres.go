package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/aquaassist/internal/advisory"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS classification_history (
	id               BIGSERIAL PRIMARY KEY,
	recorded_at      TIMESTAMPTZ      NOT NULL,
	ph               DOUBLE PRECISION NOT NULL,
	salinity         DOUBLE PRECISION NOT NULL,
	dissolved_oxygen DOUBLE PRECISION NOT NULL,
	ammonia          DOUBLE PRECISION NOT NULL,
	prediction       TEXT             NOT NULL
)`

// PostgresStore keeps history in a shared PostgreSQL table so several
// hosts can log to one place.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, storeErr("open", fmt.Errorf("create pool: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeErr("open", fmt.Errorf("ping: %w", err))
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool. The caller keeps ownership only
// until Close.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Initialize(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return storeErr("initialize", err)
}

// appendLockKey names the advisory lock that serialises appenders across
// every connection and host sharing the table.
const appendLockKey int64 = 0x61717561

// Append takes the append lock for the length of its transaction, so ids
// are handed out in commit order and ORDER BY id is insertion order.
// BIGSERIAL alone can commit a lower id after a higher one.
func (s *PostgresStore) Append(ctx context.Context, r Record) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
			return fmt.Errorf("append lock: %w", err)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO classification_history (recorded_at, ph, salinity, dissolved_oxygen, ammonia, prediction)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.Timestamp.UTC(), r.PH, r.Salinity, r.DissolvedOxygen, r.Ammonia, string(r.Label),
		)
		return err
	})
	return storeErr("append", err)
}

func (s *PostgresStore) ReadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT recorded_at, ph, salinity, dissolved_oxygen, ammonia, prediction
		 FROM classification_history ORDER BY id`)
	if err != nil {
		return nil, storeErr("read", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			r     Record
			label string
		)
		err := row.Scan(&r.Timestamp, &r.PH, &r.Salinity, &r.DissolvedOxygen, &r.Ammonia, &label)
		r.Label = advisory.Label(label)
		return r, err
	})
	if err != nil {
		return nil, storeErr("read", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM classification_history`).Scan(&n); err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
