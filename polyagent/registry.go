// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds the tools an agent may invoke. It is safe for concurrent
// use; [Registry.Invoke] never lets a tool failure escape as an error.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a Registry containing the given tools.
// Registering two tools under the same name fails with [ErrDuplicateTool].
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. It returns [ErrDuplicateTool] if a tool with the
// same name is already registered.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Resolve returns the tool registered under name, or [ErrUnknownTool].
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t, nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ToolResult is the outcome of invoking a single tool call.
// Exactly one of Output and Err is set.
type ToolResult struct {
	CallID string
	Output any
	Err    *ToolError
}

// Message renders the result as the tool-role [Message] appended to the
// conversation. Failed invocations become an "error: ..." result so the
// model can react to them.
func (res ToolResult) Message() Message {
	if res.Err != nil {
		return NewToolErrorMessage(res.CallID, "error: "+res.Err.Message)
	}
	return NewToolMessage(res.CallID, res.Output)
}

// Invoke executes the tool call named by call: it resolves the tool,
// validates the arguments against its parameter schema, and runs it.
// Every failure mode (unknown tool, bad arguments, tool error, panic)
// is folded into the returned [ToolResult], never propagated.
func (r *Registry) Invoke(ctx context.Context, call *FunctionCallContent) ToolResult {
	return r.invoke(ctx, call, nil)
}

func (r *Registry) invoke(ctx context.Context, call *FunctionCallContent, mws []FunctionMiddleware) ToolResult {
	res := ToolResult{CallID: call.CallID}

	tool, err := r.Resolve(call.Name)
	if err != nil {
		slog.WarnContext(ctx, "unknown tool called", "tool", call.Name)
		res.Err = &ToolError{ToolName: call.Name, Message: "unknown tool " + call.Name, Err: ErrUnknownTool}
		return res
	}

	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := validateArguments(tool.Parameters(), args); err != nil {
		slog.WarnContext(ctx, "tool argument validation failed", "tool", call.Name, "error", err)
		res.Err = &ToolError{ToolName: call.Name, Message: err.Error(), Err: ErrArgumentValidation}
		return res
	}

	out, err := safeInvoke(ctx, tool, args, mws)
	if err != nil {
		slog.WarnContext(ctx, "tool invocation failed", "tool", call.Name, "error", err)
		var te *ToolError
		if errors.As(err, &te) {
			res.Err = te
		} else {
			res.Err = &ToolError{ToolName: call.Name, Message: err.Error(), Err: ErrToolExecution}
		}
		return res
	}

	res.Output = out
	return res
}

// safeInvoke runs the tool through the function middleware chain and
// absorbs panics into errors.
func safeInvoke(ctx context.Context, tool Tool, args json.RawMessage, mws []FunctionMiddleware) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "tool panicked", "tool", tool.Name(), "panic", rec)
			out = nil
			err = &ToolError{
				ToolName: tool.Name(),
				Message:  fmt.Sprintf("panic: %v", rec),
				Err:      ErrToolExecution,
			}
		}
	}()

	handler := func(ctx context.Context, t Tool, a json.RawMessage) (any, error) {
		return t.Invoke(ctx, a)
	}
	return chainFunctionMiddleware(handler, mws...)(ctx, tool, args)
}
