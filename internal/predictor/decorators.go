package predictor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/water"
)

// DeclaredOrder returns the feature order p declares, looking through
// decorators. ok is false when p makes no claim.
func DeclaredOrder(p Predictor) ([]string, bool) {
	d, ok := p.(OrderDeclarer)
	if !ok {
		return nil, false
	}
	order := d.FeatureOrder()
	return order, len(order) > 0
}

type timeoutPredictor struct {
	inner   Predictor
	timeout time.Duration
}

// WithTimeout bounds every Predict call. A call still running at the
// deadline is abandoned and reported as ErrUnavailable; it is not retried.
// A zero or negative timeout returns p unchanged.
func WithTimeout(p Predictor, timeout time.Duration) Predictor {
	if timeout <= 0 {
		return p
	}
	return &timeoutPredictor{inner: p, timeout: timeout}
}

type prediction struct {
	label advisory.Label
	err   error
}

func (t *timeoutPredictor) Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan prediction, 1)
	go func() {
		l, err := safePredict(ctx, t.inner, v)
		done <- prediction{l, err}
	}()

	select {
	case p := <-done:
		if p.err != nil && errors.Is(p.err, context.DeadlineExceeded) {
			var unavail *ErrUnavailable
			if !errors.As(p.err, &unavail) {
				return "", &ErrUnavailable{Predictor: t.inner.Name(), Err: p.err}
			}
		}
		return p.label, p.err
	case <-ctx.Done():
		return "", &ErrUnavailable{
			Predictor: t.inner.Name(),
			Err:       fmt.Errorf("no answer within %s: %w", t.timeout, ctx.Err()),
		}
	}
}

func (t *timeoutPredictor) Name() string { return t.inner.Name() }

func (t *timeoutPredictor) FeatureOrder() []string {
	order, _ := DeclaredOrder(t.inner)
	return order
}

// safePredict calls p and turns a panic into ErrPrediction.
func safePredict(ctx context.Context, p Predictor, v water.FeatureVector) (l advisory.Label, err error) {
	defer func() {
		if r := recover(); r != nil {
			l, err = "", &ErrPrediction{Predictor: p.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return p.Predict(ctx, v)
}

type recoverPredictor struct {
	inner Predictor
}

// WithRecover reports a panicking predictor as ErrPrediction instead of
// taking the process down.
func WithRecover(p Predictor) Predictor {
	return &recoverPredictor{inner: p}
}

func (r *recoverPredictor) Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error) {
	return safePredict(ctx, r.inner, v)
}

func (r *recoverPredictor) Name() string { return r.inner.Name() }

func (r *recoverPredictor) FeatureOrder() []string {
	order, _ := DeclaredOrder(r.inner)
	return order
}

type loggingPredictor struct {
	inner  Predictor
	logger *zap.Logger
}

// WithLogging logs one line per Predict call with predictor name, latency,
// label and error.
func WithLogging(p Predictor, logger *zap.Logger) Predictor {
	return &loggingPredictor{inner: p, logger: logger.Named("predictor")}
}

func (l *loggingPredictor) Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error) {
	start := time.Now()
	label, err := l.inner.Predict(ctx, v)

	fields := []zap.Field{
		zap.String("predictor", l.inner.Name()),
		zap.Duration("latency", time.Since(start)),
		zap.Float64s("features", v.Values()),
	}
	if err != nil {
		l.logger.Warn("prediction failed", append(fields, zap.Error(err))...)
		return "", err
	}
	l.logger.Debug("prediction", append(fields, zap.String("label", string(label)))...)
	return label, nil
}

func (l *loggingPredictor) Name() string { return l.inner.Name() }

func (l *loggingPredictor) FeatureOrder() []string {
	order, _ := DeclaredOrder(l.inner)
	return order
}
