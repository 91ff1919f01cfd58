package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/advisory"
)

type storeFactory func(t *testing.T) Store

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"csv": func(t *testing.T) Store {
			return NewCSVStore(filepath.Join(t.TempDir(), "pond_history.csv"), zap.NewNop())
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func sampleRecord(i int) Record {
	return Record{
		Timestamp:       time.Date(2025, 3, 1, 9, 0, i, 123456789, time.UTC),
		PH:              7.0 + float64(i%10)/10,
		Salinity:        15,
		DissolvedOxygen: 6.1,
		Ammonia:         0.35,
		Label:           advisory.LabelSafe,
	}
}

func TestStore_InitializeIdempotent(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			require.NoError(t, s.Initialize(ctx))
			require.NoError(t, s.Append(ctx, sampleRecord(1)))
			require.NoError(t, s.Initialize(ctx))

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n, "second Initialize must not truncate")
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			require.NoError(t, s.Initialize(ctx))

			want := Record{
				Timestamp:       time.Date(2025, 3, 1, 9, 30, 0, 1, time.UTC),
				PH:              6.55,
				Salinity:        22,
				DissolvedOxygen: 3.1,
				Ammonia:         1.999,
				Label:           advisory.LabelModerate,
			}
			require.NoError(t, s.Append(ctx, want))

			got, err := s.ReadAll(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.True(t, want.Timestamp.Equal(got[0].Timestamp))
			got[0].Timestamp = want.Timestamp
			assert.Equal(t, want, got[0])
		})
	}
}

func TestStore_AppendOnlyOrder(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			require.NoError(t, s.Initialize(ctx))

			for i := range 5 {
				require.NoError(t, s.Append(ctx, sampleRecord(i)))
				n, err := s.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, i+1, n)
			}

			got, err := s.ReadAll(ctx)
			require.NoError(t, err)
			for i, r := range got {
				assert.True(t, sampleRecord(i).Timestamp.Equal(r.Timestamp), "record %d out of order", i)
			}
		})
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			require.NoError(t, s.Initialize(ctx))

			const writers, each = 8, 10
			var wg sync.WaitGroup
			errs := make(chan error, writers*each)
			for w := range writers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range each {
						r := sampleRecord(i)
						r.Salinity = float64(5 + w)
						errs <- s.Append(ctx, r)
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			got, err := s.ReadAll(ctx)
			require.NoError(t, err)
			require.Len(t, got, writers*each)

			perWriter := map[float64]int{}
			for _, r := range got {
				perWriter[r.Salinity]++
			}
			for w := range writers {
				assert.Equal(t, each, perWriter[float64(5+w)], "writer %d", w)
			}
		})
	}
}

func TestStore_EmptyCount(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			require.NoError(t, s.Initialize(ctx))
			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestErrStore(t *testing.T) {
	cause := errors.New("disk full")
	err := storeErr("append", cause)

	var se *ErrStore
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "append", se.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "history append: disk full", err.Error())

	assert.Same(t, err, storeErr("read", err), "already wrapped errors pass through")
	assert.NoError(t, storeErr("read", nil))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Backend: "csv"}.Validate())
	assert.NoError(t, Config{Backend: "sqlite"}.Validate())
	assert.Error(t, Config{Backend: "postgres"}.Validate())
	assert.NoError(t, Config{Backend: "postgres", DSN: "postgres://x"}.Validate())
	assert.ErrorIs(t, Config{Backend: "parquet"}.Validate(), ErrUnknownBackend)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("AQUA_HISTORY_PATH", "")
	t.Setenv("XDG_DATA_HOME", "/data")

	p, err := DefaultPath("csv")
	require.NoError(t, err)
	assert.Equal(t, "/data/aquaassist/pond_history.csv", p)

	p, err = DefaultPath("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "/data/aquaassist/history.db", p)

	t.Setenv("AQUA_HISTORY_PATH", "/tmp/h.csv")
	p, err = DefaultPath("csv")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.csv", p)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{"csv", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", fmt.Sprintf("h.%s", backend))
			s, err := Open(ctx, Config{Backend: backend, Path: path}, zap.NewNop())
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Append(ctx, sampleRecord(0)))
			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}

	_, err := Open(ctx, Config{Backend: "parquet"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

// Each store gets its own handle on the same file, as separate processes do.
func TestStore_ConcurrentHandlesShareOneFile(t *testing.T) {
	openers := map[string]func(t *testing.T, path string) Store{
		"csv": func(t *testing.T, path string) Store {
			return NewCSVStore(path, zap.NewNop())
		},
		"sqlite": func(t *testing.T, path string) Store {
			s, err := OpenSQLite(path)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
	handles := map[string]int{"csv": 6, "sqlite": 2}

	for name, open := range openers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "shared_history")

			stores := make([]Store, handles[name])
			for i := range stores {
				stores[i] = open(t, path)
				require.NoError(t, stores[i].Initialize(ctx))
			}

			const each = 30
			var wg sync.WaitGroup
			errs := make(chan error, len(stores)*each)
			for w, s := range stores {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range each {
						r := sampleRecord(i)
						r.Salinity = float64(5 + w)
						errs <- s.Append(ctx, r)
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			n, err := open(t, path).Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, len(stores)*each, n)

			got, err := stores[0].ReadAll(ctx)
			require.NoError(t, err)
			perHandle := map[float64]int{}
			for _, r := range got {
				perHandle[r.Salinity]++
			}
			for w := range stores {
				assert.Equal(t, each, perHandle[float64(5+w)], "handle %d", w)
			}
		})
	}
}
