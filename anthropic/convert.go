// Copyright (c) Microsoft. All rights reserved.

package anthropic

import (
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"

	pa "github.com/microsoft/polyagent/polyagent"
)

// buildParams converts conversation messages and options into Messages API
// parameters. Instructions and any stray system messages become System
// blocks, since the API has no system role.
func buildParams(messages []pa.Message, opts *pa.ChatOptions, defaultModel string) sdk.MessageNewParams {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(defaultModel),
		MaxTokens: defaultMaxTokens,
	}

	if opts != nil {
		if opts.ModelID != "" {
			params.Model = sdk.Model(opts.ModelID)
		}
		if opts.Instructions != "" {
			params.System = append(params.System, sdk.TextBlockParam{Text: opts.Instructions})
		}
		if opts.Temperature != nil {
			params.Temperature = sdk.Float(*opts.Temperature)
		}
		if opts.TopP != nil {
			params.TopP = sdk.Float(*opts.TopP)
		}
		if opts.MaxTokens != nil {
			params.MaxTokens = int64(*opts.MaxTokens)
		}
		params.Tools = convertTools(opts.Tools)
	}

	for _, m := range messages {
		if m.Role == pa.RoleSystem {
			params.System = append(params.System, sdk.TextBlockParam{Text: m.Text()})
		}
	}

	params.Messages = convertMessages(messages)
	return params
}

// convertMessages translates conversation messages into Messages API params.
//
// The API accepts only "user" and "assistant" roles: tool results travel as
// user messages with tool_result blocks, and assistant tool calls as
// tool_use blocks.
func convertMessages(messages []pa.Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case pa.RoleUser:
			out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(m.Text())))

		case pa.RoleTool:
			for _, c := range m.Contents {
				if fr, ok := c.(*pa.FunctionResultContent); ok {
					out = append(out, sdk.NewUserMessage(
						sdk.NewToolResultBlock(fr.CallID, pa.RenderToolResult(fr.Result), fr.IsError),
					))
				}
			}

		case pa.RoleAssistant:
			var blocks []sdk.ContentBlockParamUnion
			for _, c := range m.Contents {
				switch v := c.(type) {
				case *pa.TextContent:
					blocks = append(blocks, sdk.NewTextBlock(v.Text))
				case *pa.FunctionCallContent:
					input := json.RawMessage(v.Arguments)
					if len(input) == 0 {
						input = json.RawMessage("{}")
					}
					blocks = append(blocks, sdk.ContentBlockParamUnion{
						OfToolUse: &sdk.ToolUseBlockParam{
							ID:    v.CallID,
							Name:  v.Name,
							Input: input,
						},
					})
				}
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewAssistantMessage(blocks...))
			}
		}
	}

	return out
}

// convertTools translates tool definitions into Messages API tool params.
// The input schema splits into properties and required.
func convertTools(tools []pa.Tool) []sdk.ToolUnionParam {
	var out []sdk.ToolUnionParam
	for _, t := range tools {
		var schema struct {
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		}
		if raw := t.Parameters(); len(raw) > 0 {
			_ = json.Unmarshal(raw, &schema)
		}
		if schema.Properties == nil {
			schema.Properties = map[string]any{}
		}

		out = append(out, sdk.ToolUnionParam{
			OfTool: &sdk.ToolParam{
				Name:        t.Name(),
				Description: sdk.String(t.Description()),
				InputSchema: sdk.ToolInputSchemaParam{
					Properties: schema.Properties,
					Required:   schema.Required,
				},
			},
		})
	}
	return out
}

// parseResponse converts a Messages API response into conversation types.
func parseResponse(resp *sdk.Message) *pa.ChatResponse {
	result := &pa.ChatResponse{
		ResponseID: resp.ID,
		ModelID:    string(resp.Model),
		Usage: pa.UsageDetails{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
		FinishReason: mapStopReason(resp.StopReason),
	}

	msg := pa.Message{Role: pa.RoleAssistant}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			msg.Contents = append(msg.Contents, &pa.TextContent{Text: block.AsText().Text})
		case "tool_use":
			tu := block.AsToolUse()
			msg.Contents = append(msg.Contents, &pa.FunctionCallContent{
				CallID:    tu.ID,
				Name:      tu.Name,
				Arguments: string(tu.Input),
			})
		}
	}
	result.Message = msg
	return result
}

func mapStopReason(r sdk.StopReason) pa.FinishReason {
	switch r {
	case sdk.StopReasonEndTurn, sdk.StopReasonStopSequence:
		return pa.FinishReasonStop
	case sdk.StopReasonMaxTokens:
		return pa.FinishReasonLength
	case sdk.StopReasonToolUse:
		return pa.FinishReasonToolCalls
	case sdk.StopReasonRefusal:
		return pa.FinishReasonContentFilter
	default:
		return pa.FinishReason(r)
	}
}
