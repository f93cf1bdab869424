// Copyright (c) Microsoft. All rights reserved.

// Package ollama provides a [polyagent.ChatClient] implementation backed by
// a local or remote Ollama server.
//
// Create a client with [New] and pass it to [polyagent.New]:
//
//	client, err := ollama.New(
//	    ollama.WithBaseURL("http://localhost:11434"),
//	    ollama.WithModel("qwen3"),
//	)
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	pa "github.com/microsoft/polyagent/polyagent"
)

// Client implements [polyagent.ChatClient] against an Ollama server. Use
// [New] to create one.
type Client struct {
	client *api.Client
	model  string
}

// Verify interface compliance at compile time.
var _ pa.ChatClient = (*Client)(nil)

// New creates an Ollama [Client]. Without [WithBaseURL] the server address
// comes from the OLLAMA_HOST environment variable, falling back to the
// default local port.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var client *api.Client
	if cfg.baseURL != "" {
		u, err := url.Parse(cfg.baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid ollama base URL: %v", pa.ErrConfiguration, err)
		}
		client = api.NewClient(u, httpClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("%w: ollama client from environment: %v", pa.ErrConfiguration, err)
		}
	}

	return &Client{client: client, model: cfg.model}, nil
}

// Response sends a non-streaming chat request. Ollama still delivers the
// result through the callback; with streaming off it fires exactly once
// with the complete message.
func (c *Client) Response(ctx context.Context, messages []pa.Message, opts *pa.ChatOptions) (*pa.ChatResponse, error) {
	req := buildRequest(messages, opts, c.model)

	var final *api.ChatResponse
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pa.ErrService, err)
	}
	if final == nil {
		return nil, fmt.Errorf("%w: ollama returned no response", pa.ErrInvalidResponse)
	}

	result := parseResponse(final)
	result.Raw = final
	return result, nil
}

// TransientError reports whether err is worth retrying: connection-level
// failures and server overload.
func (c *Client) TransientError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "timeout")
}
