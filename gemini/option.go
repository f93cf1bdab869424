// Copyright (c) Microsoft. All rights reserved.

package gemini

import "net/http"

// clientConfig holds resolved configuration for the Gemini client.
type clientConfig struct {
	model      string
	httpClient *http.Client
}

// Option configures a Gemini [Client].
type Option func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}
