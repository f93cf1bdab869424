// Copyright (c) Microsoft. All rights reserved.

package gemini

import (
	"context"
	"encoding/json"
	"testing"

	"google.golang.org/genai"

	pa "github.com/microsoft/polyagent/polyagent"
)

func TestConvertMessages_RolesAndSystem(t *testing.T) {
	messages := []pa.Message{
		pa.NewSystemMessage("Be helpful."),
		pa.NewUserMessage("hi"),
		{
			Role:     pa.RoleAssistant,
			Contents: pa.Contents{&pa.TextContent{Text: "hello"}},
		},
	}

	contents, system := convertMessages(messages)
	if system == nil || system.Parts[0].Text != "Be helpful." {
		t.Fatalf("system = %+v", system)
	}
	if len(contents) != 2 {
		t.Fatalf("contents = %d, want 2", len(contents))
	}
	if contents[0].Role != "user" {
		t.Errorf("[0].Role = %q", contents[0].Role)
	}
	if contents[1].Role != "model" {
		t.Errorf("[1].Role = %q", contents[1].Role)
	}
}

func TestConvertMessages_ResolvesFunctionResponseNames(t *testing.T) {
	messages := []pa.Message{
		pa.NewUserMessage("what day is it?"),
		{
			Role: pa.RoleAssistant,
			Contents: pa.Contents{
				&pa.FunctionCallContent{CallID: "call_ab12", Name: "current_date", Arguments: "{}"},
			},
		},
		pa.NewToolMessage("call_ab12", "2026-08-28"),
	}

	contents, _ := convertMessages(messages)
	if len(contents) != 3 {
		t.Fatalf("contents = %d, want 3", len(contents))
	}

	call := contents[1].Parts[0].FunctionCall
	if call == nil || call.Name != "current_date" {
		t.Fatalf("call part = %+v", contents[1].Parts[0])
	}

	// Function responses are user-role and addressed by name, not call ID.
	if contents[2].Role != "user" {
		t.Errorf("result role = %q", contents[2].Role)
	}
	fr := contents[2].Parts[0].FunctionResponse
	if fr == nil || fr.Name != "current_date" {
		t.Fatalf("response part = %+v", contents[2].Parts[0])
	}
	if fr.Response["result"] != "2026-08-28" {
		t.Errorf("response = %v", fr.Response)
	}
}

func TestConvertTools_SchemaRoundTrip(t *testing.T) {
	tool := pa.NewTool("web_search", "Searches the web.",
		json.RawMessage(`{
			"type": "object",
			"properties": {"query": {"type": "string", "description": "search terms"}},
			"required": ["query"]
		}`),
		func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	)

	out := convertTools([]pa.Tool{tool})
	if len(out) != 1 || len(out[0].FunctionDeclarations) != 1 {
		t.Fatalf("tools = %+v", out)
	}
	fd := out[0].FunctionDeclarations[0]
	if fd.Name != "web_search" || fd.Parameters == nil {
		t.Fatalf("declaration = %+v", fd)
	}
	if _, ok := fd.Parameters.Properties["query"]; !ok {
		t.Errorf("properties = %v", fd.Parameters.Properties)
	}
}

func TestParseResponse_SynthesizesCallIDs(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		ModelVersion: "gemini-2.0-flash",
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: "current_date", Args: map[string]any{}}},
				},
			},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     9,
			CandidatesTokenCount: 3,
			TotalTokenCount:      12,
		},
	}

	got := parseResponse(resp)
	if got.FinishReason != pa.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", got.FinishReason)
	}
	calls := got.Message.FunctionCalls()
	if len(calls) != 1 || calls[0].Name != "current_date" {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].CallID == "" {
		t.Error("expected a synthesized call ID")
	}
	if got.Usage.TotalTokens != 12 {
		t.Errorf("usage = %+v", got.Usage)
	}
}

func TestParseResponse_SkipsThoughtParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{Text: "pondering...", Thought: true},
					{Text: "The answer is 4."},
				},
			},
		}},
	}

	got := parseResponse(resp)
	if got.Text() != "The answer is 4." {
		t.Errorf("Text = %q", got.Text())
	}
	if got.FinishReason != pa.FinishReasonStop {
		t.Errorf("FinishReason = %q", got.FinishReason)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty key")
	}
}
