// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	pa "github.com/microsoft/polyagent/polyagent"
)

const defaultAPIVersion = "2024-10-21"

// transport is an unexported interface for HTTP communication.
// The default implementation uses net/http; tests inject a mock.
type transport interface {
	do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// httpTransport is the default transport using net/http.
type httpTransport struct {
	client     *http.Client
	endpoint   string
	apiVersion string
	apiKey     string
	headers    map[string]string
	credential azcore.TokenCredential
}

func newHTTPTransport(endpoint string, cfg *clientConfig) *httpTransport {
	t := &httpTransport{
		client:     cfg.httpClient,
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiVersion: cfg.apiVersion,
		apiKey:     cfg.apiKey,
		headers:    cfg.headers,
		credential: cfg.credential,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.apiVersion == "" {
		t.apiVersion = defaultAPIVersion
	}
	return t
}

func (t *httpTransport) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	url := t.endpoint + path + "?api-version=" + t.apiVersion
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	switch {
	case t.credential != nil:
		slog.DebugContext(ctx, "acquiring Entra ID token for Cognitive Services")
		token, err := t.credential.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{"https://cognitiveservices.azure.com/.default"},
		})
		if err != nil {
			return nil, fmt.Errorf("get entra token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token.Token)
	case t.apiKey != "":
		req.Header.Set("api-key", t.apiKey)
	}

	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseErrorResponse(resp)
	}

	return resp, nil
}

// parseErrorResponse reads an error response body and returns a typed error.
func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = string(body)
	}

	svcErr := &pa.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Code:       apiErr.Error.Code,
	}

	switch {
	case apiErr.Error.Code == "content_filter":
		svcErr.Err = pa.ErrContentFilter
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		svcErr.Err = pa.ErrAuth
	case resp.StatusCode == 429:
		svcErr.Err = pa.ErrRateLimited
	case resp.StatusCode == 400:
		svcErr.Err = pa.ErrInvalidRequest
	default:
		svcErr.Err = pa.ErrService
	}

	return svcErr
}
