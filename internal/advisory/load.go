package advisory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalogYAML []byte

// catalogSchema is the shape every catalog file must have before its
// entries are checked individually.
var catalogSchema = map[string]any{
	"type":     "object",
	"required": []any{"entries"},
	"properties": map[string]any{
		"entries": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":                 "object",
				"required":             []any{"label", "severity", "primary", "translated"},
				"additionalProperties": false,
				"properties": map[string]any{
					"label":           map[string]any{"type": "string", "minLength": 1},
					"severity":        map[string]any{"type": "integer", "minimum": 0},
					"primary":         map[string]any{"type": "string", "minLength": 1},
					"translated":      map[string]any{"type": "string", "minLength": 1},
					"translated_lang": map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		def, err := normalise(catalogSchema)
		if err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://advisory-catalog.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

type catalogFile struct {
	Entries []Entry `yaml:"entries"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in Safe/Moderate/Unsafe catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("built-in advisory catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	doc, err := normalise(raw)
	if err != nil {
		return nil, fmt.Errorf("normalise catalog: %w", err)
	}

	sch, err := schema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return New(f.Entries)
}

// normalise round-trips v through JSON so the validator only sees plain
// JSON types (float64, []any, map[string]any).
func normalise(v any) (any, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(js, &out); err != nil {
		return nil, err
	}
	return out, nil
}
