// Copyright (c) Microsoft. All rights reserved.

package ollama

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/ollama/ollama/api"

	pa "github.com/microsoft/polyagent/polyagent"
)

// buildRequest converts conversation messages and options into an Ollama
// chat request with streaming turned off. Instructions become a leading
// system message since the API has no dedicated field for them.
func buildRequest(messages []pa.Message, opts *pa.ChatOptions, defaultModel string) *api.ChatRequest {
	stream := false
	req := &api.ChatRequest{
		Model:  defaultModel,
		Stream: &stream,
	}

	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		options := map[string]any{}
		if opts.Temperature != nil {
			options["temperature"] = *opts.Temperature
		}
		if opts.TopP != nil {
			options["top_p"] = *opts.TopP
		}
		if opts.MaxTokens != nil {
			options["num_predict"] = *opts.MaxTokens
		}
		if len(options) > 0 {
			req.Options = options
		}
		if opts.Instructions != "" {
			messages = pa.PrependInstructions(messages, opts.Instructions)
		}
		req.Tools = convertTools(opts.Tools)
	}

	req.Messages = convertMessages(messages)
	return req
}

// convertMessages translates conversation messages into Ollama messages.
func convertMessages(messages []pa.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))

	for _, msg := range messages {
		m := api.Message{Role: string(msg.Role)}

		switch msg.Role {
		case pa.RoleTool:
			for _, c := range msg.Contents {
				if fr, ok := c.(*pa.FunctionResultContent); ok {
					m.ToolCallID = fr.CallID
					m.Content = pa.RenderToolResult(fr.Result)
				}
			}

		case pa.RoleAssistant:
			m.Content = msg.Text()
			for _, fc := range msg.FunctionCalls() {
				var args api.ToolCallFunctionArguments
				if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
					_ = json.Unmarshal([]byte("{}"), &args)
				}
				m.ToolCalls = append(m.ToolCalls, api.ToolCall{
					ID: fc.CallID,
					Function: api.ToolCallFunction{
						Name:      fc.Name,
						Arguments: args,
					},
				})
			}

		default:
			m.Content = msg.Text()
		}

		out = append(out, m)
	}

	return out
}

// convertTools translates tool definitions into Ollama tool specs. The
// conversion round-trips through JSON because the SDK's parameter types
// are awkward to construct by hand.
func convertTools(tools []pa.Tool) []api.Tool {
	if len(tools) == 0 {
		return nil
	}

	specs := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		var params map[string]any
		if raw := t.Parameters(); len(raw) > 0 {
			_ = json.Unmarshal(raw, &params)
		}
		specs = append(specs, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}

	b, err := json.Marshal(specs)
	if err != nil {
		return nil
	}
	var out []api.Tool
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

// parseResponse converts an Ollama chat response into conversation types.
// Models that omit tool call IDs get synthesized ones so results can be
// matched back to their calls.
func parseResponse(resp *api.ChatResponse) *pa.ChatResponse {
	result := &pa.ChatResponse{
		ModelID:      resp.Model,
		FinishReason: mapDoneReason(resp.DoneReason, len(resp.Message.ToolCalls) > 0),
		Usage: pa.UsageDetails{
			InputTokens:  resp.PromptEvalCount,
			OutputTokens: resp.EvalCount,
			TotalTokens:  resp.PromptEvalCount + resp.EvalCount,
		},
	}

	msg := pa.Message{Role: pa.RoleAssistant}
	if resp.Message.Content != "" {
		msg.Contents = append(msg.Contents, &pa.TextContent{Text: resp.Message.Content})
	}
	for _, tc := range resp.Message.ToolCalls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		id := tc.ID
		if id == "" {
			id = newCallID()
		}
		msg.Contents = append(msg.Contents, &pa.FunctionCallContent{
			CallID:    id,
			Name:      tc.Function.Name,
			Arguments: string(args),
		})
	}

	result.Message = msg
	return result
}

func newCallID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "call_" + hex.EncodeToString(b)
}

func mapDoneReason(reason string, sawToolCall bool) pa.FinishReason {
	if sawToolCall {
		return pa.FinishReasonToolCalls
	}
	switch reason {
	case "length":
		return pa.FinishReasonLength
	default:
		return pa.FinishReasonStop
	}
}
