// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/openai/openai-go/v3/responses"

	pa "github.com/microsoft/polyagent/polyagent"
)

// marshalItems round-trips input items through their wire encoding so tests
// can assert on the JSON shape instead of SDK union internals.
func marshalItems(t *testing.T, v any) []map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestConvertMessages_Dialogue(t *testing.T) {
	messages := []pa.Message{
		pa.NewSystemMessage("Be helpful."),
		pa.NewUserMessage("What day is it?"),
		{
			Role: pa.RoleAssistant,
			Contents: pa.Contents{
				&pa.FunctionCallContent{CallID: "c1", Name: "current_date", Arguments: "{}"},
			},
		},
		pa.NewToolMessage("c1", "2026-08-28"),
		{
			Role:     pa.RoleAssistant,
			Contents: pa.Contents{&pa.TextContent{Text: "It is August 28."}},
		},
	}

	items := marshalItems(t, convertMessages(messages))
	if len(items) != 5 {
		t.Fatalf("items = %d, want 5", len(items))
	}

	if items[0]["role"] != "system" {
		t.Errorf("[0] = %v", items[0])
	}
	if items[1]["role"] != "user" || items[1]["content"] != "What day is it?" {
		t.Errorf("[1] = %v", items[1])
	}
	if items[2]["type"] != "function_call" || items[2]["call_id"] != "c1" || items[2]["name"] != "current_date" {
		t.Errorf("[2] = %v", items[2])
	}
	if items[3]["type"] != "function_call_output" || items[3]["call_id"] != "c1" || items[3]["output"] != "2026-08-28" {
		t.Errorf("[3] = %v", items[3])
	}
	if items[4]["role"] != "assistant" || items[4]["content"] != "It is August 28." {
		t.Errorf("[4] = %v", items[4])
	}
}

func TestConvertMessages_AssistantTextAndCall(t *testing.T) {
	messages := []pa.Message{{
		Role: pa.RoleAssistant,
		Contents: pa.Contents{
			&pa.TextContent{Text: "Let me check."},
			&pa.FunctionCallContent{CallID: "c9", Name: "web_search", Arguments: `{"query":"go"}`},
		},
	}}

	items := marshalItems(t, convertMessages(messages))
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (text item then call item)", len(items))
	}
	if items[0]["role"] != "assistant" {
		t.Errorf("[0] = %v", items[0])
	}
	if items[1]["type"] != "function_call" || items[1]["arguments"] != `{"query":"go"}` {
		t.Errorf("[1] = %v", items[1])
	}
}

func TestConvertTools(t *testing.T) {
	tool := pa.NewTool("current_date", "Returns today's date.",
		json.RawMessage(`{"type":"object","properties":{}}`),
		func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	)

	specs := marshalItems(t, convertTools([]pa.Tool{tool}))
	if len(specs) != 1 {
		t.Fatalf("specs = %d", len(specs))
	}
	if specs[0]["type"] != "function" || specs[0]["name"] != "current_date" {
		t.Errorf("spec = %v", specs[0])
	}
	params, ok := specs[0]["parameters"].(map[string]any)
	if !ok || params["type"] != "object" {
		t.Errorf("parameters = %v", specs[0]["parameters"])
	}
}

func TestParseResponse_TextAndUsage(t *testing.T) {
	resp := &responses.Response{
		ID:     "resp_1",
		Model:  "gpt-4o",
		Status: responses.ResponseStatusCompleted,
		Output: []responses.ResponseOutputItemUnion{{
			Type: "message",
			Content: []responses.ResponseOutputMessageContentUnion{{
				Type: "output_text",
				Text: "Hello!",
			}},
		}},
		Usage: responses.ResponseUsage{
			InputTokens:  12,
			OutputTokens: 4,
			TotalTokens:  16,
		},
	}

	got := parseResponse(resp)
	if got.Text() != "Hello!" {
		t.Errorf("Text = %q", got.Text())
	}
	if got.FinishReason != pa.FinishReasonStop {
		t.Errorf("FinishReason = %q", got.FinishReason)
	}
	if got.Usage.InputTokens != 12 || got.Usage.TotalTokens != 16 {
		t.Errorf("usage = %+v", got.Usage)
	}
}

func TestParseResponse_FunctionCall(t *testing.T) {
	resp := &responses.Response{
		ID:     "resp_2",
		Model:  "gpt-4o",
		Status: responses.ResponseStatusCompleted,
		Output: []responses.ResponseOutputItemUnion{{
			Type:      "function_call",
			CallID:    "call_7",
			Name:      "web_search",
			Arguments: `{"query":"golang"}`,
		}},
	}

	got := parseResponse(resp)
	if got.FinishReason != pa.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", got.FinishReason)
	}
	calls := got.Message.FunctionCalls()
	if len(calls) != 1 || calls[0].CallID != "call_7" || calls[0].Name != "web_search" {
		t.Errorf("calls = %+v", calls)
	}
}
