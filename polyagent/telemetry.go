// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// LoggingMiddleware returns an [AgentMiddleware] that logs each turn using slog.
func LoggingMiddleware(logger *slog.Logger) AgentMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			logger.InfoContext(ctx, "turn started", "input_chars", len(req.Text))

			resp, err := next(ctx, req)

			duration := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "turn failed",
					"duration", duration,
					"error", err,
				)
				return nil, err
			}

			logger.InfoContext(ctx, "turn completed",
				"duration", duration,
				"turn_count", resp.TurnCount,
				"input_tokens", resp.Usage.InputTokens,
				"output_tokens", resp.Usage.OutputTokens,
			)
			return resp, nil
		}
	}
}

// FunctionLoggingMiddleware returns a [FunctionMiddleware] that logs each
// tool invocation using slog.
func FunctionLoggingMiddleware(logger *slog.Logger) FunctionMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next FunctionHandler) FunctionHandler {
		return func(ctx context.Context, tool Tool, args json.RawMessage) (any, error) {
			start := time.Now()
			out, err := next(ctx, tool, args)
			logger.DebugContext(ctx, "tool invoked",
				"tool", tool.Name(),
				"duration", time.Since(start),
				"error", err,
			)
			return out, err
		}
	}
}
