// Copyright (c) Microsoft. All rights reserved.

// Package polyagent provides a common conversational agent contract that can
// be backed by interchangeable chat engines.
//
// An [Agent] composes a [ChatClient] (one per backing engine, see the
// openai, anthropic, gemini, ollama, and foundry packages) with a tool
// [Registry], an append-only [Conversation], and a bounded tool-calling
// loop. Swapping the engine never changes the contract:
//
//	agent, err := polyagent.New(client,
//	    polyagent.WithInstructions("You are a helpful assistant."),
//	    polyagent.WithTools(tools.CurrentDate()),
//	)
//	if err != nil {
//	    // configuration problems surface here, not on first send
//	}
//	resp, err := agent.Send(ctx, "What day is it today?")
//
// Tool failures never escape [Agent.Send]: they are recorded in the
// conversation as tool results and the model decides how to proceed.
// Failures of the backing engine surface as errors matching [ErrUpstream],
// [ErrToolLoopExceeded], or [ErrCancelled].
package polyagent
