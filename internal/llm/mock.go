package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Err     error
}

// MockVerdict is a canned label answer.
func MockVerdict(label, reason string) MockResponse {
	raw, _ := json.Marshal(Verdict{Label: label, Reason: reason})
	return MockResponse{Content: raw}
}

// MockProvider answers from a FIFO queue of canned responses and records
// every request. Once the queue is drained it asks Fallback; with no
// Fallback it reports ErrProviderUnavailable.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	// Fallback answers requests the queue cannot.
	Fallback func(Request) MockResponse
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewOfflineMock returns a mock that needs no queue: every label request is
// answered with the first label its schema allows. It backs the "mock"
// provider so the LLM path can run without network access.
func NewOfflineMock() *MockProvider {
	return &MockProvider{Fallback: FirstLabel}
}

// FirstLabel answers a label request with the first allowed label.
func FirstLabel(req Request) MockResponse {
	labels := SchemaLabels(req.Schema)
	if len(labels) == 0 {
		return MockResponse{Err: &ErrRequestRejected{Status: 400, Err: errNoLabels}}
	}
	return MockVerdict(labels[0], "offline mock")
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.Fallback != nil:
		resp = m.Fallback(req)
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return &Response{Content: resp.Content, Model: m.ModelID(), StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
