package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled schemas keyed by name and definition digest, so two catalogs
// that reuse a name never share a validator.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Verdict is the answer a model gives to a label request.
type Verdict struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// LabelSchema builds the response schema for a request that must pick
// exactly one of labels and give a short reason. The name is derived from
// the label set.
func LabelSchema(labels ...string) *Schema {
	enum := make([]any, len(labels))
	names := make([]string, len(labels))
	for i, l := range labels {
		enum[i] = l
		names[i] = strings.ToLower(strings.ReplaceAll(l, " ", "-"))
	}
	return &Schema{
		Name:        "label-" + strings.Join(names, "-"),
		Description: "Pick one label and justify it in a sentence",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"label":  map[string]any{"type": "string", "enum": enum},
				"reason": map[string]any{"type": "string"},
			},
			"required":             []any{"label", "reason"},
			"additionalProperties": false,
		},
	}
}

// SchemaLabels returns the label enum of a schema built by LabelSchema, or
// nil for any other schema.
func SchemaLabels(schema *Schema) []string {
	if schema == nil {
		return nil
	}
	props, _ := schema.Definition["properties"].(map[string]any)
	label, _ := props["label"].(map[string]any)
	enum, _ := label["enum"].([]any)
	var out []string
	for _, e := range enum {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// DecodeVerdict validates raw against schema and decodes it. A label that
// is not in the schema's enum is an ErrInvalidResponse even when the
// provider skipped schema enforcement.
func DecodeVerdict(schema *Schema, raw json.RawMessage) (Verdict, error) {
	if err := validateResponse(schema, raw); err != nil {
		return Verdict{}, err
	}
	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return Verdict{}, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode verdict: %w", err)}
	}
	if v.Label == "" {
		return Verdict{}, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("empty label")}
	}
	if allowed := SchemaLabels(schema); len(allowed) > 0 && !slices.Contains(allowed, v.Label) {
		return Verdict{}, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("label %q not in %v", v.Label, allowed)}
	}
	return v, nil
}

// validateResponse checks raw against schema. A nil schema always passes.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	// json.Marshal sorts map keys, so equal definitions hash equally.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	sum := sha256.Sum256(defBytes)
	key := schema.Name + "/" + hex.EncodeToString(sum[:8])

	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", key)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(key, compiled)
	return compiled, nil
}
