// Copyright (c) Microsoft. All rights reserved.

// Package anthropic provides a [polyagent.ChatClient] implementation backed
// by the official Anthropic Go SDK and the Messages API.
//
// Create a client with [New] and pass it to [polyagent.New]:
//
//	client, err := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
//	    anthropic.WithModel("claude-sonnet-4-5"),
//	)
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	pa "github.com/microsoft/polyagent/polyagent"
)

// defaultMaxTokens applies when the caller sets no limit; the Messages API
// requires max_tokens on every request.
const defaultMaxTokens = 4096

// Client implements [polyagent.ChatClient] using the Anthropic Messages API.
// Use [New] to create one.
type Client struct {
	client *sdk.Client
	model  string
}

// Verify interface compliance at compile time.
var _ pa.ChatClient = (*Client)(nil)

// New creates an Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", pa.ErrConfiguration)
	}
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}
	reqOpts = append(reqOpts, cfg.requestOptions...)

	client := sdk.NewClient(reqOpts...)
	return &Client{client: &client, model: cfg.model}, nil
}

// Response sends a non-streaming request to the Messages API and returns the
// complete response.
func (c *Client) Response(ctx context.Context, messages []pa.Message, opts *pa.ChatOptions) (*pa.ChatResponse, error) {
	params := buildParams(messages, opts, c.model)

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	result := parseResponse(resp)
	result.Raw = resp
	return result, nil
}

// TransientError reports whether err is worth retrying. 529 is Anthropic's
// dedicated "overloaded" status.
func (c *Client) TransientError(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout")
}

// wrapError maps SDK errors onto the shared error taxonomy.
func wrapError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", pa.ErrService, err)
	}

	svcErr := &pa.ServiceError{
		StatusCode: apiErr.StatusCode,
		Message:    err.Error(),
	}
	switch {
	case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
		svcErr.Err = pa.ErrAuth
	case apiErr.StatusCode == 429:
		svcErr.Err = pa.ErrRateLimited
	case apiErr.StatusCode == 400:
		svcErr.Err = pa.ErrInvalidRequest
	default:
		svcErr.Err = pa.ErrService
	}
	return svcErr
}
