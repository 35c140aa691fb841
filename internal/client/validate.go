package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schema names a JSON Schema definition for one response shape.
type schema struct {
	Name       string
	Definition map[string]any
}

var (
	topicsSchema = &schema{
		Name: "topics",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"topics"},
			"properties": map[string]any{
				"topics": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	}

	questionSchema = &schema{
		Name: "question",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"id"},
			"properties": map[string]any{
				"id":      map[string]any{"type": "string", "minLength": 1},
				"content": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"difficulty": map[string]any{"type": []any{"string", "null"}},
			},
		},
	}

	submitSchema = &schema{
		Name: "submit-result",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"is_correct", "feedback"},
			"properties": map[string]any{
				"is_correct":     map[string]any{"type": "boolean"},
				"feedback":       map[string]any{"type": "string"},
				"correct_answer": map[string]any{"type": []any{"string", "null"}},
			},
		},
	}

	statusSchema = &schema{
		Name: "session-status",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"active":        map[string]any{"type": "boolean"},
				"breadcrumb":    map[string]any{"type": []any{"string", "null"}},
				"streak":        map[string]any{"type": "integer", "minimum": 0},
				"target_streak": map[string]any{"type": "integer"},
				"mastered_all":  map[string]any{"type": "boolean"},
			},
		},
	}

	graphSchema = &schema{
		Name: "knowledge-graph",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"elements"},
			"properties": map[string]any{
				"elements": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"data"},
						"properties": map[string]any{
							"group": map[string]any{"enum": []any{"nodes", "edges"}},
							"data": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":     map[string]any{"type": "string"},
									"label":  map[string]any{"type": "string"},
									"status": map[string]any{"type": "string"},
									"source": map[string]any{"type": "string"},
									"target": map[string]any{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// decodeValidated validates raw against s and decodes it into v.
// Returns *InvalidResponseError on failure.
func decodeValidated(op string, s *schema, raw []byte, v any) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &InvalidResponseError{Op: op, Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(s)
	if err != nil {
		return &InvalidResponseError{Op: op, Content: raw, Err: fmt.Errorf("compile schema %q: %w", s.Name, err)}
	}
	if err := compiled.Validate(parsed); err != nil {
		return &InvalidResponseError{Op: op, Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return &InvalidResponseError{Op: op, Content: raw, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(s *schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a parsed JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(s.Name, compiled)
	return compiled, nil
}
