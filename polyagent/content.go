// Copyright (c) Microsoft. All rights reserved.

package polyagent

// ContentType identifies the kind of content within a message.
type ContentType string

const (
	ContentTypeText           ContentType = "text"
	ContentTypeError          ContentType = "error"
	ContentTypeFunctionCall   ContentType = "functionCall"
	ContentTypeFunctionResult ContentType = "functionResult"
)

// Content is a sealed interface representing a piece of content within a [Message].
// Each concrete type carries data specific to its [ContentType].
// Use a type switch to inspect the underlying type.
type Content interface {
	// Type returns the discriminator for this content item.
	Type() ContentType

	// sealed prevents external implementations.
	sealed()
}

// base is embedded by every concrete Content type to satisfy the sealed marker.
type base struct{}

func (base) sealed() {}

// TextContent holds plain text.
type TextContent struct {
	base
	Text string
}

func (c *TextContent) Type() ContentType { return ContentTypeText }

// ErrorContent represents an error surfaced as message content, for hosts
// that render failures inline in the transcript.
type ErrorContent struct {
	base
	Message   string
	ErrorCode string
}

func (c *ErrorContent) Type() ContentType { return ContentTypeError }

// FunctionCallContent represents a tool call requested by the model.
// CallID ties the call to its eventual [FunctionResultContent].
type FunctionCallContent struct {
	base
	CallID    string
	Name      string
	Arguments string // JSON-encoded arguments
}

func (c *FunctionCallContent) Type() ContentType { return ContentTypeFunctionCall }

// FunctionResultContent represents the result of a tool call. IsError marks
// results that report an invocation failure rather than tool output, so
// adapters can flag them on the wire without inspecting the rendered text.
type FunctionResultContent struct {
	base
	CallID  string
	Result  any
	IsError bool
}

func (c *FunctionResultContent) Type() ContentType { return ContentTypeFunctionResult }
