// Package llmjson decodes the free-form JSON that language models return.
// Model output is duck-typed: it may be wrapped in markdown fences, preceded
// by prose, or missing fields entirely. Callers compile an explicit schema,
// and on any extraction or validation failure fall back to a documented
// default value instead of propagating a parse error.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"
)

// Schema is a compiled JSON schema used to validate decoded model output.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles schemaJSON under the given resource name.
func CompileSchema(name, schemaJSON string) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}

	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	return &Schema{compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schema constants.
func MustCompileSchema(name, schemaJSON string) *Schema {
	s, err := CompileSchema(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode extracts the JSON document embedded in raw model output, validates
// it against the schema, and unmarshals it into v. Any failure is returned
// as an error; the caller substitutes its fallback value.
func (s *Schema) Decode(raw string, v interface{}) error {
	doc, ok := Extract(raw)
	if !ok {
		return fmt.Errorf("no JSON document found in model output")
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to parse model output: %w", err)
	}

	if err := s.compiled.Validate(inst); err != nil {
		return fmt.Errorf("model output failed schema validation: %w", err)
	}

	return json.Unmarshal([]byte(doc), v)
}

// Extract locates the first JSON object or array inside raw text, tolerating
// markdown code fences and surrounding prose.
func Extract(raw string) (string, bool) {
	text := strings.TrimSpace(raw)

	// Strip ```json ... ``` fences
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if gjson.Valid(text) {
		return text, true
	}

	// Fall back to the outermost braces in the text
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start >= 0 && end > start {
			candidate := text[start : end+1]
			if gjson.Valid(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}
