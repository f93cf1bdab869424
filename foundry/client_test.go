// Copyright (c) Microsoft. All rights reserved.

package foundry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/microsoft/polyagent/foundry"
	pa "github.com/microsoft/polyagent/polyagent"
)

type fakeCredential struct{}

func (fakeCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake"}, nil
}

// mockTransportFunc is a RoundTripper that delegates to a function.
type mockTransportFunc func(*http.Request) (*http.Response, error)

func (f mockTransportFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newMockHTTPClient(fn func(*http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{Transport: mockTransportFunc(fn)}
}

func jsonResponse(status int, body any) *http.Response {
	b, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func TestClient_Response_Basic(t *testing.T) {
	content := "Hello from Foundry!"
	apiResp := map[string]any{
		"id":    "chatcmpl-123",
		"model": "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
		},
	}

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != "POST" {
			t.Errorf("method = %q", req.Method)
		}
		if !strings.HasSuffix(req.URL.Path, "/chat/completions") {
			t.Errorf("path = %q", req.URL.Path)
		}
		if req.URL.Query().Get("api-version") == "" {
			t.Error("missing api-version query parameter")
		}
		if req.Header.Get("api-key") != "test-key" {
			t.Errorf("api-key = %q", req.Header.Get("api-key"))
		}

		body, _ := io.ReadAll(req.Body)
		var reqBody map[string]any
		json.Unmarshal(body, &reqBody)
		if reqBody["model"] != "gpt-4o" {
			t.Errorf("request model = %v", reqBody["model"])
		}

		return jsonResponse(200, apiResp), nil
	})

	client, err := foundry.New("https://example.openai.azure.com/openai",
		foundry.WithModel("gpt-4o"),
		foundry.WithAPIKey("test-key"),
		foundry.WithHTTPClient(httpClient),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Response(context.Background(),
		[]pa.Message{pa.NewUserMessage("hi")},
		nil,
	)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if resp.ResponseID != "chatcmpl-123" {
		t.Errorf("ResponseID = %q", resp.ResponseID)
	}
	if resp.FinishReason != pa.FinishReasonStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 8 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Text() != content {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestClient_Response_InstructionsBecomeSystemMessage(t *testing.T) {
	var sentBody struct {
		Messages []map[string]any `json:"messages"`
	}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		json.Unmarshal(body, &sentBody)
		return jsonResponse(200, map[string]any{
			"id": "chatcmpl-1", "model": "gpt-4o",
			"choices": []map[string]any{{
				"index": 0, "finish_reason": "stop",
				"message": map[string]any{"role": "assistant", "content": "ok"},
			}},
		}), nil
	})

	client, err := foundry.New("http://localhost:5273/v1",
		foundry.WithModel("phi-4"),
		foundry.WithHTTPClient(httpClient),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Response(context.Background(),
		[]pa.Message{pa.NewUserMessage("hi")},
		&pa.ChatOptions{Instructions: "Be terse."},
	)
	if err != nil {
		t.Fatal(err)
	}

	if len(sentBody.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(sentBody.Messages))
	}
	if sentBody.Messages[0]["role"] != "system" || sentBody.Messages[0]["content"] != "Be terse." {
		t.Errorf("first message = %v", sentBody.Messages[0])
	}
	if sentBody.Messages[1]["role"] != "user" {
		t.Errorf("second message = %v", sentBody.Messages[1])
	}
}

func TestClient_Response_ToolCalls(t *testing.T) {
	apiResp := map[string]any{
		"id":    "chatcmpl-456",
		"model": "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "tool_calls",
			"message": map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id":   "call_abc",
					"type": "function",
					"function": map[string]any{
						"name":      "web_search",
						"arguments": `{"query":"golang"}`,
					},
				}},
			},
		}},
	}

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, apiResp), nil
	})

	client, err := foundry.New("https://example.openai.azure.com/openai",
		foundry.WithModel("gpt-4o"),
		foundry.WithAPIKey("test-key"),
		foundry.WithHTTPClient(httpClient),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Response(context.Background(),
		[]pa.Message{pa.NewUserMessage("search for golang")},
		nil,
	)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if resp.FinishReason != pa.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	calls := resp.Message.FunctionCalls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].CallID != "call_abc" || calls[0].Name != "web_search" {
		t.Errorf("call = %+v", calls[0])
	}
}

func TestClient_Response_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       map[string]any
		wantErr    error
		wantStatus int
	}{
		{
			name:   "401 Unauthorized",
			status: 401,
			body: map[string]any{
				"error": map[string]any{
					"message": "Invalid API key",
					"type":    "authentication_error",
				},
			},
			wantErr:    pa.ErrAuth,
			wantStatus: 401,
		},
		{
			name:   "429 Throttled",
			status: 429,
			body: map[string]any{
				"error": map[string]any{
					"message": "Rate limit exceeded",
				},
			},
			wantErr:    pa.ErrRateLimited,
			wantStatus: 429,
		},
		{
			name:   "Content Filter",
			status: 400,
			body: map[string]any{
				"error": map[string]any{
					"message": "content filtered",
					"code":    "content_filter",
				},
			},
			wantErr:    pa.ErrContentFilter,
			wantStatus: 400,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})

			client, err := foundry.New("https://example.openai.azure.com/openai",
				foundry.WithModel("gpt-4o"),
				foundry.WithAPIKey("bad-key"),
				foundry.WithHTTPClient(httpClient),
			)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			_, err = client.Response(context.Background(),
				[]pa.Message{pa.NewUserMessage("hi")},
				nil,
			)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			var svcErr *pa.ServiceError
			if !errors.As(err, &svcErr) {
				t.Fatal("expected ServiceError")
			}
			if svcErr.StatusCode != tc.wantStatus {
				t.Errorf("StatusCode = %d", svcErr.StatusCode)
			}
		})
	}
}

func TestClient_TransientError(t *testing.T) {
	client, err := foundry.New("https://example.openai.azure.com/openai",
		foundry.WithAPIKey("k"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		err  error
		want bool
	}{
		{&pa.ServiceError{StatusCode: 429, Message: "throttled", Err: pa.ErrRateLimited}, true},
		{&pa.ServiceError{StatusCode: 503, Message: "unavailable", Err: pa.ErrService}, true},
		{&pa.ServiceError{StatusCode: 401, Message: "bad key", Err: pa.ErrAuth}, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("request timeout"), true},
		{errors.New("model not found"), false},
	}
	for _, tc := range tests {
		if got := client.TransientError(tc.err); got != tc.want {
			t.Errorf("TransientError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := foundry.New("  ")
	if !errors.Is(err, pa.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}

	_, err = foundry.New("https://example.openai.azure.com/openai",
		foundry.WithAPIKey("k"),
		foundry.WithCredential(fakeCredential{}),
	)
	if !errors.Is(err, pa.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration for conflicting auth", err)
	}
}
