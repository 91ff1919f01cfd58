// Package history is the append-only log of classifications.
//
// Records are never updated or deleted. Counts are always derived from what
// is stored; nothing is cached in memory.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/aquaassist/internal/advisory"
)

// Header is the fixed CSV header, written once when the file is created.
var Header = []string{"timestamp", "pH", "salinity", "DO", "ammonia", "prediction"}

// Record is the flattened, persisted projection of a classification.
type Record struct {
	Timestamp       time.Time      `json:"timestamp"`
	PH              float64        `json:"ph"`
	Salinity        float64        `json:"salinity"`
	DissolvedOxygen float64        `json:"dissolved_oxygen"`
	Ammonia         float64        `json:"ammonia"`
	Label           advisory.Label `json:"prediction"`
}

// Store is an append-only history backend. Implementations serialise
// writers within the process and across processes.
type Store interface {
	// Initialize creates the backing store when absent. It is idempotent.
	Initialize(ctx context.Context) error
	// Append durably adds one record, or nothing at all.
	Append(ctx context.Context, r Record) error
	// ReadAll returns every record in insertion order.
	ReadAll(ctx context.Context) ([]Record, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	Close() error
}

// ErrStore wraps any failure reading or writing history.
type ErrStore struct {
	Op  string
	Err error
}

func (e *ErrStore) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *ErrStore) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *ErrStore
	if errors.As(err, &se) {
		return err
	}
	return &ErrStore{Op: op, Err: err}
}

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown history backend")

// Config selects the history backend.
type Config struct {
	// Backend is one of "csv", "sqlite", "postgres".
	Backend string `yaml:"backend" env:"AQUA_HISTORY_BACKEND" env-default:"csv"`
	// Path is the CSV file or SQLite database. Empty means DefaultPath.
	Path string `yaml:"path" env:"AQUA_HISTORY_PATH"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"-" env:"AQUA_HISTORY_DSN"`
}

func (c Config) Validate() error {
	switch c.Backend {
	case "csv", "sqlite":
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("AQUA_HISTORY_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

// DefaultPath resolves the history file path for backend in priority order:
// 1. AQUA_HISTORY_PATH environment variable
// 2. $XDG_DATA_HOME/aquaassist/pond_history.csv (or history.db for sqlite)
// 3. ~/.local/share/aquaassist/pond_history.csv
func DefaultPath(backend string) (string, error) {
	if p := os.Getenv("AQUA_HISTORY_PATH"); p != "" {
		return p, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	name := "pond_history.csv"
	if backend == "sqlite" {
		name = "history.db"
	}
	return filepath.Join(dataHome, "aquaassist", name), nil
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
