// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"encoding/json"

	pa "github.com/microsoft/polyagent/polyagent"
)

// chatRequest is the Chat Completions request body.
type chatRequest struct {
	Model       string            `json:"model"`
	Messages    []chatMessage     `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
	TopP        *float64          `json:"top_p,omitempty"`
	MaxTokens   *int              `json:"max_completion_tokens,omitempty"`
	Tools       []toolSpec        `json:"tools,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// buildRequest converts conversation messages and options into a Chat
// Completions request. Instructions become a leading system message, since
// this wire format has no dedicated field for them.
func buildRequest(messages []pa.Message, opts *pa.ChatOptions, defaultModel string) *chatRequest {
	req := &chatRequest{
		Model: defaultModel,
	}
	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		req.Temperature = opts.Temperature
		req.TopP = opts.TopP
		req.MaxTokens = opts.MaxTokens
		req.Metadata = opts.Metadata

		if opts.Instructions != "" {
			messages = pa.PrependInstructions(messages, opts.Instructions)
		}

		for _, t := range opts.Tools {
			req.Tools = append(req.Tools, toolSpec{
				Type: "function",
				Function: functionSpec{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}
	}

	req.Messages = convertMessages(messages)
	return req
}

// convertMessages translates conversation messages into wire messages.
func convertMessages(messages []pa.Message) []chatMessage {
	result := make([]chatMessage, 0, len(messages))

	for _, msg := range messages {
		cm := chatMessage{
			Role: string(msg.Role),
		}

		switch msg.Role {
		case pa.RoleTool:
			// Tool messages carry a single function result.
			for _, c := range msg.Contents {
				if fr, ok := c.(*pa.FunctionResultContent); ok {
					cm.ToolCallID = fr.CallID
					cm.Content = pa.RenderToolResult(fr.Result)
				}
			}

		case pa.RoleAssistant:
			// Assistant messages may have text plus tool calls.
			for _, c := range msg.Contents {
				switch v := c.(type) {
				case *pa.TextContent:
					cm.Content += v.Text
				case *pa.FunctionCallContent:
					cm.ToolCalls = append(cm.ToolCalls, toolCall{
						ID:   v.CallID,
						Type: "function",
						Function: functionCall{
							Name:      v.Name,
							Arguments: v.Arguments,
						},
					})
				}
			}

		default:
			cm.Content = msg.Text()
		}

		result = append(result, cm)
	}

	return result
}
