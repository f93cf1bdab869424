// Copyright (c) Microsoft. All rights reserved.

// Package tools provides ready-made tools for agents: a current-date lookup
// and a Tavily-backed web search.
package tools

import (
	"context"
	"encoding/json"
	"time"

	pa "github.com/microsoft/polyagent/polyagent"
)

const dateLayout = "January 2, 2006"

// CurrentDate returns a tool that reports today's date in a human-readable
// format, e.g. "August 28, 2026". It takes no arguments.
func CurrentDate() pa.Tool {
	return currentDate(time.Now)
}

func currentDate(now func() time.Time) pa.Tool {
	return pa.NewTool(
		"current_date",
		"Get the current date",
		json.RawMessage(`{"type":"object","properties":{}}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return now().Format(dateLayout), nil
		},
	)
}
