// Copyright (c) Microsoft. All rights reserved.

// Package foundry provides a [polyagent.ChatClient] backed by an Azure AI
// Foundry Chat Completions deployment. It also works against Foundry Local,
// which serves the same wire format without authentication.
//
// Create a client with [New] and pass it to [polyagent.New]:
//
//	client, err := foundry.New("https://myresource.openai.azure.com/openai",
//	    foundry.WithModel("gpt-4o"),
//	    foundry.WithAPIKey(os.Getenv("AZURE_OPENAI_API_KEY")),
//	)
package foundry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	pa "github.com/microsoft/polyagent/polyagent"
)

// Client implements [polyagent.ChatClient] against a Foundry Chat
// Completions endpoint. Use [New] to create one.
type Client struct {
	tp    transport
	model string
}

// Verify interface compliance at compile time.
var _ pa.ChatClient = (*Client)(nil)

// New creates a Foundry [Client] for the given endpoint.
//
// Authentication is optional: pass [WithAPIKey] for key-based access or
// [WithCredential] for Microsoft Entra ID tokens. Foundry Local endpoints
// accept unauthenticated requests.
func New(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%w: foundry endpoint is required", pa.ErrConfiguration)
	}
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.apiKey != "" && cfg.credential != nil {
		return nil, fmt.Errorf("%w: provide an API key or a credential, not both", pa.ErrConfiguration)
	}
	return &Client{
		tp:    newHTTPTransport(endpoint, cfg),
		model: cfg.model,
	}, nil
}

// Response sends a chat completion request and returns the complete response.
func (c *Client) Response(ctx context.Context, messages []pa.Message, opts *pa.ChatOptions) (*pa.ChatResponse, error) {
	req := buildRequest(messages, opts, c.model)

	resp, err := c.tp.do(ctx, "POST", "/chat/completions", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", pa.ErrService, err)
	}

	raw, err := unmarshalChatResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", pa.ErrService, err)
	}

	result := parseChatResponse(raw)
	result.Raw = raw
	return result, nil
}

// TransientError reports whether err is worth retrying: throttling, server
// faults, and transport-level connection failures.
func (c *Client) TransientError(err error) bool {
	var svcErr *pa.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode == 429 || svcErr.StatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}
