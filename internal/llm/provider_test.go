package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"label":"Safe"}`)},
		MockResponse{Content: json.RawMessage(`{"label":"Unsafe"}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"label":"Safe"}` {
		t.Fatalf("unexpected first response %s", resp1.Content)
	}
	resp2, _ := mock.Generate(context.Background(), Request{})
	if string(resp2.Content) != `{"label":"Unsafe"}` {
		t.Fatalf("unexpected second response %s", resp2.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"label":"Cloudy"}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: labelSchema("mock-validate")})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"label":"Safe"}`)},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithLogging(mock, zap.New(core))

	if _, err := p.Generate(context.Background(), Request{Schema: labelSchema("logging-test")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected error to pass through, got %v", err)
	}

	if logs.Len() != 2 {
		t.Fatalf("expected 2 log lines, got %d", logs.Len())
	}
	first := logs.All()[0]
	if first.ContextMap()["schema"] != "logging-test" {
		t.Fatalf("expected schema field, got %v", first.ContextMap())
	}
	if logs.All()[1].Level != zap.WarnLevel {
		t.Fatalf("expected failure logged at warn, got %s", logs.All()[1].Level)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock model id, got %q", p.ModelID())
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("anthropic without key should fail")
	}
	cfg.Anthropic.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Provider = "mock"
	cfg.Anthropic.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock needs no key: %v", err)
	}
	cfg.Provider = "palm"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown provider should fail")
	}
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock, got %q", p.ModelID())
	}

	schema := LabelSchema("Safe", "Moderate", "Unsafe")
	resp, err := p.Generate(context.Background(), Request{Schema: schema})
	if err != nil {
		t.Fatalf("offline mock should answer: %v", err)
	}
	v, err := DecodeVerdict(schema, resp.Content)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Label != "Safe" {
		t.Fatalf("expected first label, got %q", v.Label)
	}
}

func TestMockProvider_QueueBeforeFallback(t *testing.T) {
	mock := NewOfflineMock()
	mock.responses = []MockResponse{MockVerdict("Unsafe", "ammonia high")}
	schema := LabelSchema("Safe", "Unsafe")

	first, err := mock.Generate(context.Background(), Request{Schema: schema})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := DecodeVerdict(schema, first.Content); v.Label != "Unsafe" || v.Reason != "ammonia high" {
		t.Fatalf("expected queued verdict, got %+v", v)
	}
	second, err := mock.Generate(context.Background(), Request{Schema: schema})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := DecodeVerdict(schema, second.Content); v.Label != "Safe" {
		t.Fatalf("expected fallback label, got %+v", v)
	}
}

func TestFirstLabel_WithoutLabelSchema(t *testing.T) {
	_, err := NewOfflineMock().Generate(context.Background(), Request{})
	var rej *ErrRequestRejected
	if !errors.As(err, &rej) {
		t.Fatalf("expected ErrRequestRejected, got: %T (%v)", err, err)
	}
}
