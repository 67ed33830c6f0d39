package aifn

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

var reflector = &jsonschema.Reflector{
	DoNotReference: true,
	Anonymous:      true,
}

// returns the JSON schema of t without the $schema marker
func schemaFor(t reflect.Type) (json.RawMessage, error) {
	s := reflector.ReflectFromType(t)
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema for %s: %w", t, err)
	}

	return data, nil
}

// builds the parameter schema of the forced response tool: one required field holding the result
func responseToolSchema(field, description string, result json.RawMessage) (json.RawMessage, error) {
	var fieldSchema map[string]any
	if err := json.Unmarshal(result, &fieldSchema); err != nil {
		return nil, fmt.Errorf("failed to decode result schema: %w", err)
	}

	if description != "" {
		fieldSchema["description"] = description
	}

	data, err := json.Marshal(map[string]any{
		"type":       "object",
		"properties": map[string]any{field: fieldSchema},
		"required":   []string{field},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool schema: %w", err)
	}

	return data, nil
}

// builds the parameter schema shown in the function listing
func paramsSchema(params []Param) map[string]any {
	props := make(map[string]any, len(params))
	required := []string{}

	for _, p := range params {
		t := p.Type
		if t == "" {
			t = TypeString
		}

		prop := map[string]any{"type": t}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		props[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
