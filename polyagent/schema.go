// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"encoding/json"
	"reflect"
	"strings"
)

// generateSchemaFromType uses reflection to produce a JSON Schema for a struct.
func generateSchemaFromType(v any) json.RawMessage {
	t := reflect.TypeOf(v)
	if t == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	schema := typeSchema(t)
	b, _ := json.Marshal(schema)
	return b
}

func typeSchema(t reflect.Type) map[string]any {
	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": typeSchema(t.Elem()),
		}
	case reflect.Ptr:
		return typeSchema(t.Elem())
	case reflect.Struct:
		return structSchema(t)
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return map[string]any{
				"type":                 "object",
				"additionalProperties": typeSchema(t.Elem()),
			}
		}
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string"}
	}
}

func structSchema(t reflect.Type) map[string]any {
	properties := make(map[string]any)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := field.Name
		if jsonTag != "" {
			if tagName, _, _ := strings.Cut(jsonTag, ","); tagName != "" {
				name = tagName
			}
		}

		prop := typeSchema(field.Type)

		for _, part := range strings.Split(field.Tag.Get("jsonschema"), ",") {
			key, val, _ := strings.Cut(part, "=")
			switch strings.TrimSpace(key) {
			case "description":
				prop["description"] = strings.TrimSpace(val)
			case "required":
				required = append(required, name)
			case "enum":
				var enum []any
				for _, ev := range strings.Split(val, "|") {
					enum = append(enum, strings.TrimSpace(ev))
				}
				prop["enum"] = enum
			}
		}

		properties[name] = prop
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
