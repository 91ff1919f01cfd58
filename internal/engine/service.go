package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/water"
)

// Service pairs the engine with a history store.
type Service struct {
	engine *Engine
	store  history.Store
	logger *zap.Logger
}

func NewService(e *Engine, store history.Store, logger *zap.Logger) *Service {
	return &Service{engine: e, store: store, logger: logger.Named("service")}
}

func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) Store() history.Store { return s.store }

// Record appends r to history.
func (s *Service) Record(ctx context.Context, r Result) error {
	if err := s.store.Append(ctx, r.Record()); err != nil {
		s.logger.Warn("failed to record classification", zap.String("id", r.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// ClassifyAndRecord classifies m and appends the outcome. A failed
// classification writes nothing and returns a zero Result. When only the
// append fails the valid Result is returned together with the store error.
func (s *Service) ClassifyAndRecord(ctx context.Context, m water.Measurements) (Result, error) {
	r, err := s.engine.Classify(ctx, m)
	if err != nil {
		return Result{}, err
	}
	return r, s.Record(ctx, r)
}

// Count returns the number of stored classifications.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// History returns the most recent limit records, oldest first. A limit of
// zero or less returns everything.
func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}
