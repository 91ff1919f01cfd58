package predictor

import (
	"context"
	"sync"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/water"
)

// MockAnswer is one canned reply.
type MockAnswer struct {
	Label advisory.Label
	Err   error
}

// Mock returns canned answers in FIFO order and records every input.
// When the queue is empty it keeps returning Repeat, or ErrUnavailable if
// Repeat is unset.
type Mock struct {
	mu      sync.Mutex
	answers []MockAnswer
	calls   []water.FeatureVector

	Repeat advisory.Label
	Order  []string
}

var _ Predictor = (*Mock)(nil)

func NewMock(answers ...MockAnswer) *Mock {
	return &Mock{answers: answers}
}

// Always returns a mock that answers l to every call.
func Always(l advisory.Label) *Mock {
	return &Mock{Repeat: l}
}

func (m *Mock) Predict(_ context.Context, v water.FeatureVector) (advisory.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, v)
	if len(m.answers) == 0 {
		if m.Repeat != "" {
			return m.Repeat, nil
		}
		return "", &ErrUnavailable{Predictor: m.Name()}
	}
	a := m.answers[0]
	m.answers = m.answers[1:]
	if a.Err != nil {
		return "", a.Err
	}
	return a.Label, nil
}

func (m *Mock) Name() string { return "mock" }

// FeatureOrder returns Order when set, otherwise the canonical order.
func (m *Mock) FeatureOrder() []string {
	if len(m.Order) > 0 {
		return m.Order
	}
	return water.CanonicalOrder()
}

// Calls returns the vectors seen so far.
func (m *Mock) Calls() []water.FeatureVector {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]water.FeatureVector(nil), m.calls...)
}

// CallCount returns the number of Predict calls made.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
