// Copyright (c) Microsoft. All rights reserved.

package anthropic

import (
	"net/http"

	"github.com/anthropics/anthropic-sdk-go/option"
)

// clientConfig holds resolved configuration for the Anthropic client.
type clientConfig struct {
	baseURL        string
	httpClient     *http.Client
	model          string
	requestOptions []option.RequestOption
}

// Option configures an Anthropic [Client].
type Option func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithRequestOptions appends raw SDK request options, applied after the
// options above.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *clientConfig) { c.requestOptions = append(c.requestOptions, opts...) }
}
