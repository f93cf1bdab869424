// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrAgent is the base error for agent-related failures.
	ErrAgent = errors.New("agent error")

	// ErrConfiguration indicates an agent was created with invalid settings.
	// It is returned by [New], never by [Agent.Send].
	ErrConfiguration = fmt.Errorf("%w: configuration", ErrAgent)

	// ErrEmptyInput is returned by [Agent.Send] when the input text is empty
	// or whitespace-only. No engine call is made.
	ErrEmptyInput = fmt.Errorf("%w: empty input", ErrAgent)

	// ErrUpstream indicates the backing engine failed after retries were
	// exhausted (or the failure was not transient).
	ErrUpstream = fmt.Errorf("%w: upstream", ErrAgent)

	// ErrToolLoopExceeded indicates the model kept requesting tools past the
	// configured iteration bound. All completed cycles remain committed.
	ErrToolLoopExceeded = fmt.Errorf("%w: tool loop exceeded", ErrAgent)

	// ErrCancelled indicates the context was cancelled mid-turn. No partial
	// tool cycle is committed to the conversation.
	ErrCancelled = fmt.Errorf("%w: cancelled", ErrAgent)

	// ErrService is the base error for backing-engine service failures.
	ErrService = errors.New("service error")

	// ErrContentFilter indicates the request was rejected by a content filter.
	ErrContentFilter = fmt.Errorf("%w: content filter", ErrService)

	// ErrInvalidRequest indicates the request was malformed or invalid.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrService)

	// ErrInvalidResponse indicates the service returned an unexpected response.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrService)

	// ErrAuth indicates an authentication or authorization failure.
	ErrAuth = fmt.Errorf("%w: authentication", ErrService)

	// ErrRateLimited indicates the service rejected the request for rate or
	// quota reasons. Adapters classify it as transient.
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrService)

	// ErrTool is the base error for tool-related failures.
	ErrTool = errors.New("tool error")

	// ErrToolExecution indicates a failure (including a panic) during tool
	// invocation.
	ErrToolExecution = fmt.Errorf("%w: execution", ErrTool)

	// ErrArgumentValidation indicates the model-supplied arguments did not
	// match the tool's parameter schema.
	ErrArgumentValidation = fmt.Errorf("%w: argument validation", ErrTool)

	// ErrDuplicateTool is returned when registering a tool name twice.
	ErrDuplicateTool = fmt.Errorf("%w: duplicate registration", ErrTool)

	// ErrUnknownTool is returned when resolving a name no tool was
	// registered under.
	ErrUnknownTool = fmt.Errorf("%w: unknown tool", ErrTool)
)

// ServiceError provides rich context for backing-engine failures.
// Use errors.As to extract it from a wrapped error chain.
type ServiceError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ToolError provides context for tool invocation failures.
type ToolError struct {
	ToolName string
	Message  string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %s", e.ToolName, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }
