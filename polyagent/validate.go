// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"encoding/json"
	"fmt"
	"math"
)

// validateArguments checks model-supplied JSON arguments against a tool's
// parameter schema: the arguments must be a JSON object, every required
// field must be present, and declared property types and enums must match.
// It covers the subset of JSON Schema that [GenerateSchema] emits.
func validateArguments(schema, args json.RawMessage) error {
	var s struct {
		Properties map[string]struct {
			Type string `json:"type"`
			Enum []any  `json:"enum"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &s); err != nil {
			return fmt.Errorf("invalid parameter schema: %w", err)
		}
	}

	values := map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &values); err != nil {
			return fmt.Errorf("arguments are not a JSON object: %w", err)
		}
	}

	for _, field := range s.Required {
		if _, ok := values[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}

	for key, value := range values {
		prop, ok := s.Properties[key]
		if !ok {
			continue
		}
		if prop.Type != "" {
			if err := checkType(value, prop.Type); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
		}
		if len(prop.Enum) > 0 && !enumContains(prop.Enum, value) {
			return fmt.Errorf("field %q: value %v not in enum", key, value)
		}
	}

	return nil
}

func checkType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if isNumber(value) {
			return nil
		}
	case "integer":
		if isInteger(value) {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	case "null":
		if value == nil {
			return nil
		}
	default:
		// Unknown schema types pass through rather than rejecting arguments
		// a stricter validator might accept.
		return nil
	}
	return fmt.Errorf("expected %s, got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}

func enumContains(enum []any, value any) bool {
	for _, e := range enum {
		if e == value {
			return true
		}
	}
	return false
}
