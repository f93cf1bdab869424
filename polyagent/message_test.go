// Copyright (c) Microsoft. All rights reserved.

package polyagent_test

import (
	"testing"

	pa "github.com/microsoft/polyagent/polyagent"
)

func TestMessage_Text(t *testing.T) {
	msg := pa.Message{
		Role: pa.RoleAssistant,
		Contents: pa.Contents{
			&pa.TextContent{Text: "Hello"},
			&pa.FunctionCallContent{CallID: "c1", Name: "current_date", Arguments: "{}"},
			&pa.TextContent{Text: ", world"},
		},
	}
	if msg.Text() != "Hello, world" {
		t.Errorf("Text = %q", msg.Text())
	}

	empty := pa.NewToolMessage("c1", "ok")
	if empty.Text() != "" {
		t.Errorf("tool message Text = %q, want empty", empty.Text())
	}
}

func TestMessage_FunctionCalls(t *testing.T) {
	msg := pa.Message{
		Role: pa.RoleAssistant,
		Contents: pa.Contents{
			&pa.FunctionCallContent{CallID: "c1", Name: "a", Arguments: "{}"},
			&pa.TextContent{Text: "and"},
			&pa.FunctionCallContent{CallID: "c2", Name: "b", Arguments: "{}"},
		},
	}
	calls := msg.FunctionCalls()
	if len(calls) != 2 || calls[0].CallID != "c1" || calls[1].CallID != "c2" {
		t.Errorf("calls = %+v", calls)
	}

	plain := pa.NewUserMessage("hi")
	if len(plain.FunctionCalls()) != 0 {
		t.Error("user message should have no function calls")
	}
}

func TestPrependInstructions(t *testing.T) {
	base := []pa.Message{pa.NewUserMessage("hi")}

	out := pa.PrependInstructions(base, "Be terse.")
	if len(out) != 2 || out[0].Role != pa.RoleSystem || out[0].Text() != "Be terse." {
		t.Fatalf("out = %+v", out)
	}

	// Empty instructions leave the slice untouched.
	if got := pa.PrependInstructions(base, ""); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}

	// An existing system message wins.
	withSystem := []pa.Message{pa.NewSystemMessage("original"), pa.NewUserMessage("hi")}
	got := pa.PrependInstructions(withSystem, "Be terse.")
	if len(got) != 2 || got[0].Text() != "original" {
		t.Errorf("got = %+v", got)
	}
}
