// Package engine validates pond measurements, asks the predictor for a
// label and attaches the matching advisory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/predictor"
	"github.com/abhisek/aquaassist/internal/water"
)

// Config tunes the engine.
type Config struct {
	// PredictTimeout bounds each predictor call. Zero means no bound.
	PredictTimeout time.Duration
}

// Engine is safe for concurrent use; it holds no mutable state.
type Engine struct {
	predictor predictor.Predictor
	catalog   *advisory.Catalog
	logger    *zap.Logger
	now       func() time.Time
}

// New builds an engine. It fails when the predictor declares a feature
// order other than the canonical one.
func New(p predictor.Predictor, catalog *advisory.Catalog, cfg Config, logger *zap.Logger) (*Engine, error) {
	if p == nil {
		return nil, errors.New("engine: predictor is required")
	}
	if catalog == nil {
		return nil, errors.New("engine: catalog is required")
	}
	if order, ok := predictor.DeclaredOrder(p); ok {
		if err := water.CheckOrder(order); err != nil {
			return nil, fmt.Errorf("predictor %s: %w", p.Name(), err)
		}
	}
	return &Engine{
		predictor: predictor.WithRecover(predictor.WithTimeout(p, cfg.PredictTimeout)),
		catalog:   catalog,
		logger:    logger.Named("engine"),
		now:       time.Now,
	}, nil
}

// Catalog returns the advisory catalog the engine resolves labels against.
func (e *Engine) Catalog() *advisory.Catalog { return e.catalog }

// Classify validates m, predicts and resolves the advisory. It has no side
// effects beyond logging and never retries.
func (e *Engine) Classify(ctx context.Context, m water.Measurements) (Result, error) {
	v, err := water.Validate(m)
	if err != nil {
		e.logger.Debug("rejected measurements", zap.Error(err))
		return Result{}, err
	}
	return e.ClassifyVector(ctx, v)
}

// ClassifyVector classifies a vector built by water.New or water.Validate.
// Anything else is validated again before the predictor sees it.
func (e *Engine) ClassifyVector(ctx context.Context, v water.FeatureVector) (Result, error) {
	if !v.Valid() {
		checked, err := water.Validate(v.Measurements())
		if err != nil {
			e.logger.Debug("rejected vector", zap.Error(err))
			return Result{}, err
		}
		v = checked
	}

	label, err := e.predictor.Predict(ctx, v)
	if err != nil {
		return Result{}, err
	}

	entry, err := e.catalog.Lookup(label)
	if err != nil {
		e.logger.Error("predictor returned a label outside the catalog",
			zap.String("predictor", e.predictor.Name()),
			zap.String("label", string(label)),
			zap.Strings("known", labelStrings(e.catalog.Labels())),
		)
		return Result{}, err
	}

	r := Result{
		ID:        uuid.New(),
		Timestamp: e.now().UTC(),
		Input:     v,
		Label:     label,
		Advisory:  entry,
	}
	e.logger.Debug("classified",
		zap.String("id", r.ID.String()),
		zap.String("label", string(r.Label)),
		zap.Float64s("features", v.Values()),
	)
	return r, nil
}

func labelStrings(ls []advisory.Label) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	slices.Sort(out)
	return out
}
