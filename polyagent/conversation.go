// Copyright (c) Microsoft. All rights reserved.

package polyagent

import "sync"

// Conversation is the agent's ordered, append-only message log. Appends
// happen only at commit points (user message, completed tool cycle, final
// assistant message), so after a failed turn the log still ends on a
// consistent state.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append commits messages to the log.
func (c *Conversation) Append(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

// Messages returns a snapshot of the log in order.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}

// Len returns the number of committed messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Clear removes every message from the log.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// Replace swaps the log contents, used when restoring a persisted transcript.
func (c *Conversation) Replace(msgs []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append([]Message(nil), msgs...)
}
