// Copyright (c) Microsoft. All rights reserved.

package gemini

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"google.golang.org/genai"

	pa "github.com/microsoft/polyagent/polyagent"
)

// convertMessages translates conversation messages into Gemini contents,
// splitting out a system instruction if the history carries one.
//
// Gemini uses "model" for the assistant role and has no tool role: function
// responses travel in user-role contents, addressed by function name rather
// than call ID. The conversation log records the call before its result, so
// a single forward pass can resolve each call ID back to its name.
func convertMessages(messages []pa.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system *genai.Content
	callNames := make(map[string]string)

	for _, msg := range messages {
		switch msg.Role {
		case pa.RoleSystem:
			if text := msg.Text(); text != "" {
				system = &genai.Content{Parts: []*genai.Part{{Text: text}}}
			}

		case pa.RoleUser:
			if text := msg.Text(); text != "" {
				contents = append(contents, &genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: text}},
				})
			}

		case pa.RoleAssistant:
			var parts []*genai.Part
			for _, c := range msg.Contents {
				switch v := c.(type) {
				case *pa.TextContent:
					if v.Text != "" {
						parts = append(parts, &genai.Part{Text: v.Text})
					}
				case *pa.FunctionCallContent:
					callNames[v.CallID] = v.Name
					var args map[string]any
					_ = json.Unmarshal([]byte(v.Arguments), &args)
					parts = append(parts, &genai.Part{
						FunctionCall: &genai.FunctionCall{
							Name: v.Name,
							Args: args,
						},
					})
				}
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		case pa.RoleTool:
			var parts []*genai.Part
			for _, c := range msg.Contents {
				if fr, ok := c.(*pa.FunctionResultContent); ok {
					name := callNames[fr.CallID]
					if name == "" {
						name = "tool"
					}
					parts = append(parts, &genai.Part{
						FunctionResponse: &genai.FunctionResponse{
							Name:     name,
							Response: map[string]any{"result": pa.RenderToolResult(fr.Result)},
						},
					})
				}
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "user", Parts: parts})
			}
		}
	}

	return contents, system
}

// convertTools translates tool definitions into a single Gemini tool with
// one function declaration per tool. Schemas round-trip through JSON into
// the SDK's schema type.
func convertTools(tools []pa.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	fds := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
		}
		if raw := t.Parameters(); len(raw) > 0 {
			var schema genai.Schema
			if err := json.Unmarshal(raw, &schema); err == nil {
				fd.Parameters = &schema
			}
		}
		fds = append(fds, fd)
	}
	return []*genai.Tool{{FunctionDeclarations: fds}}
}

// parseResponse converts a Gemini response into conversation types. Gemini
// omits function call IDs, so fresh ones are synthesized; convertMessages
// resolves them back to names when the results are echoed.
func parseResponse(resp *genai.GenerateContentResponse) *pa.ChatResponse {
	result := &pa.ChatResponse{
		ResponseID: resp.ResponseID,
		ModelID:    resp.ModelVersion,
	}

	if resp.UsageMetadata != nil {
		result.Usage = pa.UsageDetails{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	msg := pa.Message{Role: pa.RoleAssistant}
	sawToolCall := false
	var finish genai.FinishReason

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		finish = candidate.FinishReason
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" && !part.Thought {
					msg.Contents = append(msg.Contents, &pa.TextContent{Text: part.Text})
				}
				if part.FunctionCall != nil {
					sawToolCall = true
					args, _ := json.Marshal(part.FunctionCall.Args)
					msg.Contents = append(msg.Contents, &pa.FunctionCallContent{
						CallID:    newCallID(),
						Name:      part.FunctionCall.Name,
						Arguments: string(args),
					})
				}
			}
		}
	}

	result.Message = msg
	result.FinishReason = mapFinishReason(finish, sawToolCall)
	return result
}

func mapFinishReason(r genai.FinishReason, sawToolCall bool) pa.FinishReason {
	if sawToolCall {
		return pa.FinishReasonToolCalls
	}
	switch r {
	case genai.FinishReasonMaxTokens:
		return pa.FinishReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent:
		return pa.FinishReasonContentFilter
	default:
		return pa.FinishReasonStop
	}
}

func newCallID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "call_" + hex.EncodeToString(b)
}
