// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"context"
	"strings"
)

// ChatClient is the interface between the agent and a backing chat engine.
// Engine packages (openai, anthropic, gemini, ollama, foundry) implement it.
//
// Response is single-shot: implementations that stream internally must drain
// the stream and return the assembled response.
type ChatClient interface {
	// Response sends messages to the model and returns a complete response.
	Response(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

	// TransientError reports whether err is worth retrying (rate limits,
	// overload, transport hiccups). Non-transient errors fail the turn
	// immediately.
	TransientError(err error) bool
}

// ChatResponse is the complete response from a [ChatClient].
type ChatResponse struct {
	// Message is the assistant message produced by the model. It may carry
	// text, tool calls, or both.
	Message      Message
	ResponseID   string
	ModelID      string
	FinishReason FinishReason
	Usage        UsageDetails
	Raw          any
}

// Text returns the text of the response message.
func (r *ChatResponse) Text() string {
	return r.Message.Text()
}

// Response is the result of a successful [Agent.Send].
type Response struct {
	// Text is the final assistant text for this turn.
	Text string

	// TurnCount is the number of completed user/assistant exchanges,
	// including this one.
	TurnCount int

	// Usage is the accumulated token usage across every engine round-trip
	// of this turn.
	Usage UsageDetails
}

// ChatOptions configures a single chat request.
// Pointer fields use nil to represent "unset" (use engine default).
type ChatOptions struct {
	ModelID      string
	Instructions string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	Tools        []Tool
	Metadata     map[string]string
}

// MergeChatOptions produces a new ChatOptions by overlaying override values
// onto base. Nil or zero-value fields in override do not overwrite base.
// Tools are merged by name (override replaces same-named tools).
// Metadata is merged (override keys win). Instructions are concatenated.
func MergeChatOptions(base, override *ChatOptions) *ChatOptions {
	if base == nil {
		if override == nil {
			return &ChatOptions{}
		}
		cp := *override
		return &cp
	}
	if override == nil {
		cp := *base
		return &cp
	}

	merged := *base

	if override.ModelID != "" {
		merged.ModelID = override.ModelID
	}
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}

	// Instructions: concatenate
	if override.Instructions != "" {
		if merged.Instructions != "" {
			merged.Instructions += "\n" + override.Instructions
		} else {
			merged.Instructions = override.Instructions
		}
	}

	// Tools: merge by name, base order first
	if len(override.Tools) > 0 {
		byName := make(map[string]Tool, len(merged.Tools)+len(override.Tools))
		for _, t := range merged.Tools {
			byName[t.Name()] = t
		}
		for _, t := range override.Tools {
			byName[t.Name()] = t
		}
		tools := make([]Tool, 0, len(byName))
		seen := make(map[string]bool, len(byName))
		for _, t := range merged.Tools {
			if !seen[t.Name()] {
				tools = append(tools, byName[t.Name()])
				seen[t.Name()] = true
			}
		}
		for _, t := range override.Tools {
			if !seen[t.Name()] {
				tools = append(tools, t)
				seen[t.Name()] = true
			}
		}
		merged.Tools = tools
	}

	// Metadata: merge maps
	if len(override.Metadata) > 0 {
		md := make(map[string]string, len(merged.Metadata)+len(override.Metadata))
		for k, v := range merged.Metadata {
			md[k] = v
		}
		for k, v := range override.Metadata {
			md[k] = v
		}
		merged.Metadata = md
	}

	return &merged
}

// RenderToolResult converts a tool result value into the string form sent
// back to the model: strings pass through, everything else is JSON-encoded.
func RenderToolResult(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := jsonit.Marshal(v)
	if err != nil {
		return strings.TrimSpace(err.Error())
	}
	return string(b)
}
