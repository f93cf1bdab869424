// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"encoding/json"

	pa "github.com/microsoft/polyagent/polyagent"
)

// chatCompletionResponse is the Chat Completions response body.
type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage,omitempty"`
}

type choice struct {
	Index        int         `json:"index"`
	Message      respMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type respMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// parseChatResponse converts the wire response into conversation types.
func parseChatResponse(raw *chatCompletionResponse) *pa.ChatResponse {
	resp := &pa.ChatResponse{
		ResponseID: raw.ID,
		ModelID:    raw.Model,
	}

	if raw.Usage != nil {
		resp.Usage = pa.UsageDetails{
			InputTokens:  raw.Usage.PromptTokens,
			OutputTokens: raw.Usage.CompletionTokens,
			TotalTokens:  raw.Usage.TotalTokens,
		}
	}

	if len(raw.Choices) > 0 {
		c := raw.Choices[0]
		resp.FinishReason = mapFinishReason(c.FinishReason)

		msg := pa.Message{
			Role: pa.RoleAssistant,
		}

		if c.Message.Content != nil && *c.Message.Content != "" {
			msg.Contents = append(msg.Contents, &pa.TextContent{Text: *c.Message.Content})
		}

		for _, tc := range c.Message.ToolCalls {
			msg.Contents = append(msg.Contents, &pa.FunctionCallContent{
				CallID:    tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}

		resp.Message = msg
	}

	return resp
}

// unmarshalChatResponse parses the JSON response body.
func unmarshalChatResponse(data []byte) (*chatCompletionResponse, error) {
	var resp chatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func mapFinishReason(s string) pa.FinishReason {
	switch s {
	case "stop":
		return pa.FinishReasonStop
	case "length":
		return pa.FinishReasonLength
	case "tool_calls":
		return pa.FinishReasonToolCalls
	case "content_filter":
		return pa.FinishReasonContentFilter
	default:
		return pa.FinishReason(s)
	}
}
