// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultMaxToolIterations bounds the number of engine round-trips one
// [Agent.Send] may spend on tool calling.
const DefaultMaxToolIterations = 10

// RetryPolicy controls retries of transient backing-engine failures.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// DefaultRetryPolicy returns the default policy: two retries, 500ms backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Backoff: 500 * time.Millisecond}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	return p.Backoff << attempt
}

// Agent is a conversational agent bound to one backing [ChatClient].
// Create one with [New]; all its methods are safe for concurrent use, and
// concurrent Sends on the same agent are serialized.
type Agent struct {
	mu sync.Mutex

	id                 string
	name               string
	client             ChatClient
	instructions       string
	registry           *Registry
	defaultOptions     *ChatOptions
	maxToolIterations  int
	retry              RetryPolicy
	store              TranscriptStore
	agentMiddleware    []AgentMiddleware
	functionMiddleware []FunctionMiddleware

	conversation *Conversation
	turns        int

	// optionErrs collects registration failures raised while options run;
	// checked once in New.
	optionErrs []error
}

// Option configures an [Agent] via [New].
type Option func(*Agent)

// WithName sets the agent's display name.
func WithName(name string) Option {
	return func(a *Agent) { a.name = name }
}

// WithID pins the agent's identifier instead of generating one. Combined
// with [WithTranscriptStore], a stable ID lets a restarted agent pick its
// conversation back up.
func WithID(id string) Option {
	return func(a *Agent) { a.id = id }
}

// WithInstructions sets the system instructions for the agent.
func WithInstructions(instructions string) Option {
	return func(a *Agent) { a.instructions = instructions }
}

// WithTools registers tools the model may call.
func WithTools(tools ...Tool) Option {
	return func(a *Agent) {
		for _, t := range tools {
			if err := a.registry.Register(t); err != nil {
				a.optionErrs = append(a.optionErrs, err)
			}
		}
	}
}

// WithChatOptions sets default [ChatOptions] (model, temperature, ...)
// for every engine request.
func WithChatOptions(opts *ChatOptions) Option {
	return func(a *Agent) { a.defaultOptions = opts }
}

// WithModel sets the default model for engine requests.
func WithModel(model string) Option {
	return func(a *Agent) {
		if a.defaultOptions == nil {
			a.defaultOptions = &ChatOptions{}
		}
		a.defaultOptions.ModelID = model
	}
}

// WithMaxToolIterations bounds the tool-calling loop. Must be positive.
func WithMaxToolIterations(n int) Option {
	return func(a *Agent) { a.maxToolIterations = n }
}

// WithRetryPolicy overrides the default transient-error [RetryPolicy].
func WithRetryPolicy(p RetryPolicy) Option {
	return func(a *Agent) { a.retry = p }
}

// WithTranscriptStore attaches a [TranscriptStore]; the conversation is
// persisted after every successful Send and removed on Reset.
func WithTranscriptStore(store TranscriptStore) Option {
	return func(a *Agent) { a.store = store }
}

// WithAgentMiddleware adds [AgentMiddleware] wrapping every Send.
func WithAgentMiddleware(mws ...AgentMiddleware) Option {
	return func(a *Agent) { a.agentMiddleware = append(a.agentMiddleware, mws...) }
}

// WithFunctionMiddleware adds [FunctionMiddleware] wrapping every tool invocation.
func WithFunctionMiddleware(mws ...FunctionMiddleware) Option {
	return func(a *Agent) { a.functionMiddleware = append(a.functionMiddleware, mws...) }
}

// New creates an Agent with the given [ChatClient] and options.
// Configuration problems (nil client, duplicate tool names, non-positive
// iteration bound) fail here with [ErrConfiguration], not on first Send.
func New(client ChatClient, opts ...Option) (*Agent, error) {
	registry, _ := NewRegistry()
	a := &Agent{
		id:                newUUID(),
		client:            client,
		registry:          registry,
		maxToolIterations: DefaultMaxToolIterations,
		retry:             DefaultRetryPolicy(),
		conversation:      NewConversation(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if client == nil {
		return nil, fmt.Errorf("%w: nil chat client", ErrConfiguration)
	}
	if len(a.optionErrs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, a.optionErrs[0])
	}
	if a.maxToolIterations <= 0 {
		return nil, fmt.Errorf("%w: max tool iterations must be positive, got %d", ErrConfiguration, a.maxToolIterations)
	}
	if a.retry.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: negative retry count", ErrConfiguration)
	}

	if a.store != nil {
		messages, err := a.store.Load(context.Background(), a.id)
		if err != nil {
			return nil, fmt.Errorf("%w: load transcript: %v", ErrConfiguration, err)
		}
		if len(messages) > 0 {
			a.conversation.Replace(messages)
			a.turns = countTurns(messages)
		}
	}
	return a, nil
}

// countTurns counts completed exchanges in a restored transcript: one per
// final assistant message, i.e. an assistant message without tool calls.
func countTurns(messages []Message) int {
	turns := 0
	for _, m := range messages {
		if m.Role == RoleAssistant && len(m.FunctionCalls()) == 0 {
			turns++
		}
	}
	return turns
}

// ID returns the agent's unique identifier. It doubles as the transcript
// key when a [TranscriptStore] is attached.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *Registry { return a.registry }

// Conversation returns the agent's message log. The log only ever grows
// between Resets, and only by fully committed cycles.
func (a *Agent) Conversation() *Conversation { return a.conversation }

// TurnCount returns the number of completed user/assistant exchanges.
func (a *Agent) TurnCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.turns
}

// Send submits one user message and drives the tool-calling loop until the
// model produces a final text answer. Concurrent calls are serialized.
//
// Errors match [ErrEmptyInput], [ErrUpstream], [ErrToolLoopExceeded], or
// [ErrCancelled]. A failed Send leaves the conversation at its last commit
// point; it never contains a half-finished tool cycle.
func (a *Agent) Send(ctx context.Context, text string) (*Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	handler := chainAgentMiddleware(a.runTurn, a.agentMiddleware...)
	resp, err := handler(ctx, &Request{Text: text})
	if err != nil {
		return nil, err
	}

	if a.store != nil {
		if err := a.store.Save(ctx, a.id, a.conversation.Messages()); err != nil {
			slog.WarnContext(ctx, "failed to persist transcript", "agent_id", a.id, "error", err)
		}
	}
	return resp, nil
}

// Reset clears the conversation and the turn counter. The next Send starts
// a fresh conversation against the same engine and tools.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.conversation.Clear()
	a.turns = 0

	if a.store != nil {
		if err := a.store.Delete(context.Background(), a.id); err != nil {
			slog.Warn("failed to delete transcript", "agent_id", a.id, "error", err)
		}
	}
}

func newUUID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
