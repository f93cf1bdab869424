// Copyright (c) Microsoft. All rights reserved.

package polyagent_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pa "github.com/microsoft/polyagent/polyagent"
)

func TestNewTypedTool_SchemaGeneration(t *testing.T) {
	type searchArgs struct {
		Query      string `json:"query" jsonschema:"description=Search query,required"`
		MaxResults int    `json:"max_results" jsonschema:"description=Maximum number of results"`
		Mode       string `json:"mode" jsonschema:"enum=fast|thorough"`
	}

	tool := pa.NewTypedTool("web_search", "Searches the web.",
		func(ctx context.Context, args searchArgs) (any, error) {
			return nil, nil
		},
	)

	if tool.Name() != "web_search" {
		t.Errorf("Name = %q", tool.Name())
	}
	if tool.Description() != "Searches the web." {
		t.Errorf("Description = %q", tool.Description())
	}

	var schema struct {
		Type       string `json:"type"`
		Properties map[string]struct {
			Type        string   `json:"type"`
			Description string   `json:"description"`
			Enum        []string `json:"enum"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(tool.Parameters(), &schema); err != nil {
		t.Fatalf("Parameters is not valid JSON: %v", err)
	}

	if schema.Type != "object" {
		t.Errorf("schema type = %q", schema.Type)
	}
	if q := schema.Properties["query"]; q.Type != "string" || q.Description != "Search query" {
		t.Errorf("query property = %+v", q)
	}
	if m := schema.Properties["max_results"]; m.Type != "integer" {
		t.Errorf("max_results property = %+v", m)
	}
	if mode := schema.Properties["mode"]; len(mode.Enum) != 2 || mode.Enum[0] != "fast" {
		t.Errorf("mode enum = %v", mode.Enum)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "query" {
		t.Errorf("required = %v", schema.Required)
	}
}

func TestNewTypedTool_Invoke(t *testing.T) {
	tool := pa.NewTypedTool("greet", "greets",
		func(ctx context.Context, args struct {
			Name string `json:"name"`
		}) (any, error) {
			return "hello " + args.Name, nil
		},
	)

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"name":"dot"}`))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != "hello dot" {
		t.Errorf("out = %v", out)
	}
}

func TestNewTypedTool_InvalidJSONArguments(t *testing.T) {
	tool := pa.NewTypedTool("greet", "greets",
		func(ctx context.Context, args struct {
			Name string `json:"name"`
		}) (any, error) {
			return nil, nil
		},
	)

	_, err := tool.Invoke(context.Background(), json.RawMessage(`{not json`))
	if !errors.Is(err, pa.ErrArgumentValidation) {
		t.Errorf("err = %v, want ErrArgumentValidation", err)
	}
	var te *pa.ToolError
	if !errors.As(err, &te) || te.ToolName != "greet" {
		t.Errorf("err = %v, want ToolError for greet", err)
	}
}

func TestGenerateSchema_NestedAndSliceTypes(t *testing.T) {
	type inner struct {
		Flag bool `json:"flag"`
	}
	type outer struct {
		Tags   []string `json:"tags"`
		Nested inner    `json:"nested"`
		Score  float64  `json:"score"`
	}

	var schema map[string]any
	if err := json.Unmarshal(pa.GenerateSchema[outer](), &schema); err != nil {
		t.Fatal(err)
	}
	props := schema["properties"].(map[string]any)

	tags := props["tags"].(map[string]any)
	if tags["type"] != "array" {
		t.Errorf("tags type = %v", tags["type"])
	}
	if items := tags["items"].(map[string]any); items["type"] != "string" {
		t.Errorf("tags items = %v", items)
	}

	nested := props["nested"].(map[string]any)
	if nested["type"] != "object" {
		t.Errorf("nested type = %v", nested["type"])
	}

	if score := props["score"].(map[string]any); score["type"] != "number" {
		t.Errorf("score type = %v", score["type"])
	}
}
