// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"context"
	"encoding/json"
)

// Request carries the input of a single [Agent.Send] through the agent
// middleware pipeline.
type Request struct {
	Text string
}

// AgentHandler is the function signature for processing one agent turn.
type AgentHandler func(ctx context.Context, req *Request) (*Response, error)

// AgentMiddleware wraps an [AgentHandler] to add cross-cutting behavior.
// Middleware should call next to continue the chain, or return early to short-circuit.
type AgentMiddleware func(next AgentHandler) AgentHandler

// FunctionHandler is the function signature for invoking a tool.
type FunctionHandler func(ctx context.Context, tool Tool, args json.RawMessage) (any, error)

// FunctionMiddleware wraps a [FunctionHandler] to add cross-cutting behavior.
type FunctionMiddleware func(next FunctionHandler) FunctionHandler

// chainAgentMiddleware applies middleware in order (first in list = outermost wrapper).
func chainAgentMiddleware(handler AgentHandler, mws ...AgentMiddleware) AgentHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// chainFunctionMiddleware applies middleware in order.
func chainFunctionMiddleware(handler FunctionHandler, mws ...FunctionMiddleware) FunctionHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
