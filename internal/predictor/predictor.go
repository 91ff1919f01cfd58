// Package predictor defines the opaque classifier the engine consults and
// ships a few interchangeable implementations of it.
package predictor

import (
	"context"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/water"
)

// Predictor turns a validated feature vector into a label. Implementations
// must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error)
	Name() string
}

// OrderDeclarer is implemented by predictors that know which feature order
// their model was trained on.
type OrderDeclarer interface {
	FeatureOrder() []string
}

// Func adapts a plain function to Predictor.
type Func func(ctx context.Context, v water.FeatureVector) (advisory.Label, error)

func (f Func) Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error) {
	return f(ctx, v)
}

func (f Func) Name() string { return "func" }
