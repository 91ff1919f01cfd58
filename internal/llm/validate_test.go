package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func labelSchema(name string) *Schema {
	return &Schema{
		Name:        name,
		Description: "water quality label",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"label":  map[string]any{"type": "string", "enum": []any{"Safe", "Moderate", "Unsafe"}},
				"reason": map[string]any{"type": "string"},
			},
			"required": []any{"label"},
		},
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	for _, raw := range []string{`{"label":"Safe"}`, `{"label":"Unsafe","reason":"ammonia"}`} {
		if err := validateResponse(labelSchema("validate-valid"), json.RawMessage(raw)); err != nil {
			t.Fatalf("%s: expected no error, got: %v", raw, err)
		}
	}
}

func TestValidateResponse_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing label": `{"reason":"none"}`,
		"off enum":      `{"label":"Murky"}`,
		"wrong type":    `{"label":3}`,
		"not json":      `label: Safe`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			err := validateResponse(labelSchema("validate-invalid"), json.RawMessage(raw))
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if string(inv.Content) != raw {
				t.Fatalf("expected raw content to be kept, got %s", inv.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("nil schema should pass, got %v", err)
	}
}

func TestValidateResponse_BadSchema(t *testing.T) {
	bad := &Schema{Name: "validate-bad", Definition: map[string]any{"type": 12}}
	err := validateResponse(bad, json.RawMessage(`{}`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestLabelSchema(t *testing.T) {
	schema := LabelSchema("Safe", "Moderate", "Unsafe")
	if schema.Name != "label-safe-moderate-unsafe" {
		t.Fatalf("unexpected name %q", schema.Name)
	}
	got := SchemaLabels(schema)
	if len(got) != 3 || got[0] != "Safe" || got[2] != "Unsafe" {
		t.Fatalf("unexpected labels %v", got)
	}
	if SchemaLabels(nil) != nil || SchemaLabels(&Schema{Definition: map[string]any{}}) != nil {
		t.Fatal("non-label schemas should have no labels")
	}
}

func TestDecodeVerdict(t *testing.T) {
	schema := LabelSchema("Safe", "Unsafe")

	v, err := DecodeVerdict(schema, json.RawMessage(`{"label":"Unsafe","reason":"low oxygen"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Label != "Unsafe" || v.Reason != "low oxygen" {
		t.Fatalf("unexpected verdict %+v", v)
	}

	for name, raw := range map[string]string{
		"outside catalog": `{"label":"Moderate","reason":"x"}`,
		"missing reason":  `{"label":"Safe"}`,
		"extra field":     `{"label":"Safe","reason":"x","score":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeVerdict(schema, json.RawMessage(raw))
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
		})
	}

	// Without a schema only the label presence is checked.
	if _, err := DecodeVerdict(nil, json.RawMessage(`{"reason":"x"}`)); err == nil {
		t.Fatal("empty label should be rejected")
	}
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	narrow := &Schema{Name: "validate-shared", Definition: map[string]any{
		"type":       "object",
		"properties": map[string]any{"label": map[string]any{"enum": []any{"Safe"}}},
	}}
	wide := &Schema{Name: "validate-shared", Definition: map[string]any{
		"type":       "object",
		"properties": map[string]any{"label": map[string]any{"enum": []any{"Safe", "Unsafe"}}},
	}}
	raw := json.RawMessage(`{"label":"Unsafe"}`)

	if err := validateResponse(narrow, raw); err == nil {
		t.Fatal("narrow schema should reject Unsafe")
	}
	if err := validateResponse(wide, raw); err != nil {
		t.Fatalf("wide schema should accept Unsafe, got %v", err)
	}
}
