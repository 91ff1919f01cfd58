package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/advisory"
)

const lockRetry = 10 * time.Millisecond

// timestamp layouts accepted when reading; the first is the one written.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// CSVStore keeps history in a single CSV file with a fixed header.
// Appends go through a sibling .lock file so several processes can share
// the same history.
type CSVStore struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	logger *zap.Logger
}

var _ Store = (*CSVStore)(nil)

func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	return &CSVStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.Named("history.csv"),
	}
}

// Path returns the CSV file location.
func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.path); err != nil {
		return storeErr("initialize", err)
	}
	if err := s.lockExclusive(ctx); err != nil {
		return storeErr("initialize", err)
	}
	defer s.lock.Unlock()

	return storeErr("initialize", s.create())
}

// create writes the header into a fresh file when none exists. The caller
// holds both locks.
func (s *CSVStore) create() error {
	info, err := os.Stat(s.path)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	s.logger.Debug("created history file", zap.String("path", s.path))
	return nil
}

func (s *CSVStore) Append(ctx context.Context, r Record) error {
	line, err := encodeRow(r)
	if err != nil {
		return storeErr("append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.path); err != nil {
		return storeErr("append", err)
	}
	if err := s.lockExclusive(ctx); err != nil {
		return storeErr("append", err)
	}
	defer s.lock.Unlock()

	if err := s.create(); err != nil {
		return storeErr("append", err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return storeErr("append", err)
	}
	defer f.Close()

	// A previous writer may have died mid-line; start on a fresh one.
	torn, err := endsWithoutNewline(f)
	if err != nil {
		return storeErr("append", err)
	}
	if torn {
		s.logger.Warn("history file has a torn last line", zap.String("path", s.path))
		line = append([]byte{'\n'}, line...)
	}

	if _, err := f.Write(line); err != nil {
		return storeErr("append", err)
	}
	if err := f.Sync(); err != nil {
		return storeErr("append", err)
	}
	return nil
}

func (s *CSVStore) ReadAll(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	ok, err := s.lock.TryRLockContext(ctx, lockRetry)
	if err != nil {
		return nil, storeErr("read", err)
	}
	if !ok {
		return nil, storeErr("read", errors.New("could not acquire shared lock"))
	}
	defer s.lock.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("read", err)
	}
	defer f.Close()

	records, err := s.decode(f)
	return records, storeErr("read", err)
}

func (s *CSVStore) Count(ctx context.Context) (int, error) {
	records, err := s.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) lockExclusive(ctx context.Context) error {
	ok, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("could not acquire exclusive lock")
	}
	return nil
}

func (s *CSVStore) decode(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !equalHeader(head) {
		return nil, fmt.Errorf("unexpected header %q", head)
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		rec, err := decodeRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			s.logger.Warn("skipping unreadable history row", zap.Int("line", line), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
}

func equalHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i := range row {
		if row[i] != Header[i] {
			return false
		}
	}
	return true
}

func encodeRow(r Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := w.Write([]string{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		formatFloat(r.PH),
		formatFloat(r.Salinity),
		formatFloat(r.DissolvedOxygen),
		formatFloat(r.Ammonia),
		string(r.Label),
	})
	if err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeRow(row []string) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}
	ts, err := parseTime(row[0])
	if err != nil {
		return Record{}, err
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", Header[i+1], err)
		}
		vals[i] = v
	}
	if row[5] == "" {
		return Record{}, errors.New("empty prediction")
	}
	return Record{
		Timestamp:       ts,
		PH:              vals[0],
		Salinity:        vals[1],
		DissolvedOxygen: vals[2],
		Ammonia:         vals[3],
		Label:           advisory.Label(row[5]),
	}, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func endsWithoutNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	b := make([]byte, 1)
	if _, err := f.ReadAt(b, info.Size()-1); err != nil {
		return false, err
	}
	return b[0] != '\n', nil
}
