// Copyright (c) Microsoft. All rights reserved.

package ollama

import "net/http"

// clientConfig holds resolved configuration for the Ollama client.
type clientConfig struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures an Ollama [Client].
type Option func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithBaseURL sets the server address, e.g. "http://localhost:11434".
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithHTTPClient provides a custom http.Client for requests. Local models
// can take a long time to load, so pass one without a timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}
