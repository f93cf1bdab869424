// Copyright (c) Microsoft. All rights reserved.

// Package gemini provides a [polyagent.ChatClient] implementation backed by
// the Google Gen AI SDK and the Gemini API.
//
// Create a client with [New] and pass it to [polyagent.New]:
//
//	client, err := gemini.New(os.Getenv("GEMINI_API_KEY"),
//	    gemini.WithModel("gemini-2.0-flash"),
//	)
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	pa "github.com/microsoft/polyagent/polyagent"
)

// Client implements [polyagent.ChatClient] using the Gemini API. Use [New]
// to create one.
type Client struct {
	client *genai.Client
	model  string
}

// Verify interface compliance at compile time.
var _ pa.ChatClient = (*Client)(nil)

// New creates a Gemini [Client] with the given API key and options.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", pa.ErrConfiguration)
	}
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", pa.ErrConfiguration, err)
	}
	return &Client{client: client, model: cfg.model}, nil
}

// Response sends a non-streaming generate-content request and returns the
// complete response.
func (c *Client) Response(ctx context.Context, messages []pa.Message, opts *pa.ChatOptions) (*pa.ChatResponse, error) {
	contents, system := convertMessages(messages)

	model := c.model
	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if opts != nil {
		if opts.ModelID != "" {
			model = opts.ModelID
		}
		if opts.Instructions != "" {
			// Instructions take precedence over stray system messages.
			cfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: opts.Instructions}},
			}
		}
		if opts.Temperature != nil {
			t := float32(*opts.Temperature)
			cfg.Temperature = &t
		}
		if opts.TopP != nil {
			p := float32(*opts.TopP)
			cfg.TopP = &p
		}
		if opts.MaxTokens != nil {
			cfg.MaxOutputTokens = int32(*opts.MaxTokens)
		}
		cfg.Tools = convertTools(opts.Tools)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, wrapError(err)
	}

	result := parseResponse(resp)
	result.Raw = resp
	return result, nil
}

// TransientError reports whether err is worth retrying. The Gemini API
// signals overload with 503 and quota pressure with RESOURCE_EXHAUSTED.
func (c *Client) TransientError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "503") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "internal error")
}

// wrapError maps SDK errors onto the shared error taxonomy.
func wrapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", pa.ErrService, err)
	}

	svcErr := &pa.ServiceError{
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
		Code:       apiErr.Status,
	}
	switch {
	case apiErr.Code == 401 || apiErr.Code == 403:
		svcErr.Err = pa.ErrAuth
	case apiErr.Code == 429:
		svcErr.Err = pa.ErrRateLimited
	case apiErr.Code == 400:
		svcErr.Err = pa.ErrInvalidRequest
	default:
		svcErr.Err = pa.ErrService
	}
	return svcErr
}
