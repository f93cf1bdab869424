// Copyright (c) Microsoft. All rights reserved.

package polyagent_test

import (
	"errors"
	"fmt"
	"testing"

	pa "github.com/microsoft/polyagent/polyagent"
)

func TestServiceError(t *testing.T) {
	err := &pa.ServiceError{
		StatusCode: 429,
		Message:    "slow down",
		Code:       "rate_limit",
		Err:        pa.ErrRateLimited,
	}

	if !errors.Is(err, pa.ErrRateLimited) {
		t.Error("should unwrap to ErrRateLimited")
	}
	if !errors.Is(err, pa.ErrService) {
		t.Error("ErrRateLimited should chain to ErrService")
	}

	msg := err.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}

	wrapped := fmt.Errorf("request failed: %w", err)
	var svcErr *pa.ServiceError
	if !errors.As(wrapped, &svcErr) {
		t.Fatal("errors.As should find ServiceError through wrapping")
	}
	if svcErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d", svcErr.StatusCode)
	}
}

func TestToolError(t *testing.T) {
	err := &pa.ToolError{
		ToolName: "web_search",
		Message:  "upstream quota exceeded",
		Err:      pa.ErrToolExecution,
	}

	if !errors.Is(err, pa.ErrToolExecution) {
		t.Error("should unwrap to ErrToolExecution")
	}
	if !errors.Is(err, pa.ErrTool) {
		t.Error("ErrToolExecution should chain to ErrTool")
	}

	var toolErr *pa.ToolError
	if !errors.As(fmt.Errorf("invoke: %w", err), &toolErr) {
		t.Fatal("errors.As should find ToolError")
	}
	if toolErr.ToolName != "web_search" {
		t.Errorf("ToolName = %q", toolErr.ToolName)
	}
}

func TestSentinelHierarchy(t *testing.T) {
	cases := []struct {
		child, parent error
	}{
		{pa.ErrEmptyInput, pa.ErrAgent},
		{pa.ErrUpstream, pa.ErrAgent},
		{pa.ErrToolLoopExceeded, pa.ErrAgent},
		{pa.ErrCancelled, pa.ErrAgent},
		{pa.ErrConfiguration, pa.ErrAgent},
		{pa.ErrContentFilter, pa.ErrService},
		{pa.ErrAuth, pa.ErrService},
		{pa.ErrArgumentValidation, pa.ErrTool},
		{pa.ErrUnknownTool, pa.ErrTool},
		{pa.ErrDuplicateTool, pa.ErrTool},
	}
	for _, tc := range cases {
		if !errors.Is(tc.child, tc.parent) {
			t.Errorf("%v should chain to %v", tc.child, tc.parent)
		}
	}
}
