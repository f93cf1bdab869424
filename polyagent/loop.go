// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// loopState tracks where the tool-calling loop is within one turn.
type loopState int

const (
	stateAwaitingModel loopState = iota // next step is an engine round-trip
	stateAwaitingTools                  // model requested tools, they must run
	stateDone
	stateFailed
)

// runTurn drives one user turn: commit the user message, then alternate
// engine round-trips and tool execution until the model answers in plain
// text or a bound is hit. It is the innermost handler of the agent
// middleware chain; the caller holds the agent mutex.
func (a *Agent) runTurn(ctx context.Context, req *Request) (*Response, error) {
	a.conversation.Append(NewUserMessage(req.Text))

	opts := a.chatOptions()
	state := stateAwaitingModel
	iterations := 0

	var usage UsageDetails
	var final *ChatResponse
	var pending *ChatResponse
	var pendingCalls []*FunctionCallContent

	for state == stateAwaitingModel || state == stateAwaitingTools {
		switch state {
		case stateAwaitingModel:
			if iterations >= a.maxToolIterations {
				return nil, fmt.Errorf("%w: %d round-trips", ErrToolLoopExceeded, iterations)
			}

			messages := a.conversation.Messages()
			slog.DebugContext(ctx, "engine round-trip",
				"agent_id", a.id,
				"iteration", iterations,
				"message_count", len(messages),
			)

			resp, err := a.callModel(ctx, messages, opts)
			if err != nil {
				return nil, err
			}
			iterations++
			usage.Add(resp.Usage)

			calls := resp.Message.FunctionCalls()
			if len(calls) == 0 {
				a.conversation.Append(resp.Message)
				final = resp
				state = stateDone
				break
			}
			pending = resp
			pendingCalls = calls
			state = stateAwaitingTools

		case stateAwaitingTools:
			results, err := a.executeCalls(ctx, pendingCalls)
			if err != nil {
				// Cancelled: the assistant message and its results are
				// discarded together, never half-committed.
				return nil, err
			}
			cycle := make([]Message, 0, 1+len(results))
			cycle = append(cycle, pending.Message)
			for _, res := range results {
				cycle = append(cycle, res.Message())
			}
			a.conversation.Append(cycle...)
			state = stateAwaitingModel
		}
	}

	a.turns++
	return &Response{
		Text:      final.Text(),
		TurnCount: a.turns,
		Usage:     usage,
	}, nil
}

// chatOptions assembles the per-request options from the agent defaults,
// its instructions, and the registry's tools.
func (a *Agent) chatOptions() *ChatOptions {
	opts := MergeChatOptions(a.defaultOptions, nil)
	opts.Instructions = a.instructions
	if a.registry.Len() > 0 {
		opts.Tools = a.registry.Tools()
	}
	return opts
}

// callModel performs one engine round-trip, retrying transient failures
// per the agent's [RetryPolicy]. Exhausted or non-transient failures wrap
// [ErrUpstream]; cancellation wraps [ErrCancelled].
func (a *Agent) callModel(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		resp, err := a.client.Response(ctx, messages, opts)
		if err == nil {
			if resp == nil {
				return nil, fmt.Errorf("%w: %w: engine returned no response", ErrUpstream, ErrInvalidResponse)
			}
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}

		lastErr = err
		if attempt >= a.retry.MaxRetries || !a.client.TransientError(err) {
			break
		}

		delay := a.retry.delay(attempt)
		slog.WarnContext(ctx, "transient engine error, retrying",
			"agent_id", a.id,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrUpstream, lastErr)
}

// executeCalls runs the step's tool calls concurrently and returns their
// results in request order. If the context is cancelled it returns
// [ErrCancelled] and the results are discarded.
func (a *Agent) executeCalls(ctx context.Context, calls []*FunctionCallContent) ([]ToolResult, error) {
	results := make([]ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call *FunctionCallContent) {
			defer wg.Done()
			results[i] = a.registry.invoke(ctx, call, a.functionMiddleware)
		}(i, call)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return results, nil
}
