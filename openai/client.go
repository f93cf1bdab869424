// Copyright (c) Microsoft. All rights reserved.

// Package openai provides a [polyagent.ChatClient] implementation backed by
// the official OpenAI Go SDK and the Responses API.
//
// Create a client with [New] and pass it to [polyagent.New]:
//
//	client, err := openai.New(os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	pa "github.com/microsoft/polyagent/polyagent"
)

// Client implements [polyagent.ChatClient] using the OpenAI Responses API.
// Use [New] to create one.
type Client struct {
	client *sdk.Client
	model  string
}

// Verify interface compliance at compile time.
var _ pa.ChatClient = (*Client)(nil)

// New creates an OpenAI [Client] with the given API key and options.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: openai API key is required", pa.ErrConfiguration)
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

// Response sends a non-streaming request to the Responses API and returns
// the complete response.
func (c *Client) Response(ctx context.Context, messages []pa.Message, opts *pa.ChatOptions) (*pa.ChatResponse, error) {
	params := buildParams(messages, opts, c.model)

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	result := parseResponse(resp)
	result.Raw = resp
	return result, nil
}

// TransientError reports whether err is worth retrying: throttling, server
// faults, and transport-level connection failures.
func (c *Client) TransientError(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "overloaded")
}

// wrapError maps SDK errors onto the shared error taxonomy so callers can
// match with errors.Is regardless of backend.
func wrapError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", pa.ErrService, err)
	}

	svcErr := &pa.ServiceError{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Code:       apiErr.Code,
	}
	switch {
	case apiErr.Code == "content_filter":
		svcErr.Err = pa.ErrContentFilter
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

// buildParams converts conversation messages and options into Responses API
// parameters. Instructions map to the dedicated Instructions field.
func buildParams(messages []pa.Message, opts *pa.ChatOptions, defaultModel string) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: defaultModel,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: convertMessages(messages),
		},
	}
	if opts == nil {
		return params
	}

	if opts.ModelID != "" {
		params.Model = opts.ModelID
	}
	if opts.Instructions != "" {
		params.Instructions = param.NewOpt(opts.Instructions)
	}
	if opts.Temperature != nil {
		params.Temperature = param.NewOpt(*opts.Temperature)
	}
	if opts.TopP != nil {
		params.TopP = param.NewOpt(*opts.TopP)
	}
	if opts.MaxTokens != nil {
		params.MaxOutputTokens = param.NewOpt(int64(*opts.MaxTokens))
	}
	if len(opts.Metadata) > 0 {
		params.Metadata = shared.Metadata(opts.Metadata)
	}
	params.Tools = convertTools(opts.Tools)
	return params
}
