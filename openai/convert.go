// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"

	pa "github.com/microsoft/polyagent/polyagent"
)

// convertMessages translates conversation messages into Responses API input
// items. Assistant tool calls and tool results become dedicated item types.
func convertMessages(messages []pa.Message) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case pa.RoleSystem:
			items = append(items, responses.ResponseInputItemParamOfMessage(
				msg.Text(),
				responses.EasyInputMessageRoleSystem,
			))

		case pa.RoleUser:
			items = append(items, responses.ResponseInputItemParamOfMessage(
				msg.Text(),
				responses.EasyInputMessageRoleUser,
			))

		case pa.RoleAssistant:
			if text := msg.Text(); text != "" {
				items = append(items, responses.ResponseInputItemParamOfMessage(
					text,
					responses.EasyInputMessageRoleAssistant,
				))
			}
			for _, fc := range msg.FunctionCalls() {
				items = append(items, responses.ResponseInputItemParamOfFunctionCall(
					fc.Arguments,
					fc.CallID,
					fc.Name,
				))
			}

		case pa.RoleTool:
			for _, c := range msg.Contents {
				if fr, ok := c.(*pa.FunctionResultContent); ok {
					items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(
						fr.CallID,
						pa.RenderToolResult(fr.Result),
					))
				}
			}
		}
	}

	return items
}

// convertTools translates tool definitions into function tool parameters.
func convertTools(tools []pa.Tool) []responses.ToolUnionParam {
	var result []responses.ToolUnionParam
	for _, t := range tools {
		var schema map[string]any
		if raw := t.Parameters(); len(raw) > 0 {
			_ = json.Unmarshal(raw, &schema)
		}
		result = append(result, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name(),
				Description: sdk.String(t.Description()),
				Parameters:  schema,
			},
		})
	}
	return result
}

// parseResponse converts a Responses API response into conversation types.
func parseResponse(resp *responses.Response) *pa.ChatResponse {
	result := &pa.ChatResponse{
		ResponseID: resp.ID,
		ModelID:    string(resp.Model),
		Usage: pa.UsageDetails{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	msg := pa.Message{Role: pa.RoleAssistant}
	sawToolCall := false

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, part := range item.Content {
				if part.Type == "output_text" && part.Text != "" {
					msg.Contents = append(msg.Contents, &pa.TextContent{Text: part.Text})
				}
			}
		case "function_call":
			sawToolCall = true
			msg.Contents = append(msg.Contents, &pa.FunctionCallContent{
				CallID:    item.CallID,
				Name:      item.Name,
				Arguments: item.Arguments,
			})
		}
	}

	result.Message = msg
	result.FinishReason = mapFinishReason(resp, sawToolCall)
	return result
}

func mapFinishReason(resp *responses.Response, sawToolCall bool) pa.FinishReason {
	if sawToolCall {
		return pa.FinishReasonToolCalls
	}
	if resp.Status == responses.ResponseStatusIncomplete {
		switch resp.IncompleteDetails.Reason {
		case "max_output_tokens":
			return pa.FinishReasonLength
		case "content_filter":
			return pa.FinishReasonContentFilter
		}
	}
	return pa.FinishReasonStop
}
