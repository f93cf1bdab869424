// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// clientConfig holds resolved configuration for the Foundry client.
type clientConfig struct {
	apiKey     string
	apiVersion string
	httpClient *http.Client
	headers    map[string]string
	model      string
	credential azcore.TokenCredential
}

// Option configures a Foundry [Client].
type Option func(*clientConfig)

// WithModel sets the default deployment or model name for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithAPIKey enables key-based authentication using the "api-key" header.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithCredential enables Microsoft Entra ID token authentication using the
// provided credential. The client obtains and refreshes tokens automatically.
func WithCredential(cred azcore.TokenCredential) Option {
	return func(c *clientConfig) { c.credential = cred }
}

// WithAPIVersion overrides the api-version query parameter.
func WithAPIVersion(version string) Option {
	return func(c *clientConfig) { c.apiVersion = version }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) { c.headers = headers }
}
