// Copyright (c) Microsoft. All rights reserved.

package polyagent

// UsageDetails holds token consumption statistics for a model response.
type UsageDetails struct {
	InputTokens  int `json:"inputTokenCount,omitempty"`
	OutputTokens int `json:"outputTokenCount,omitempty"`
	TotalTokens  int `json:"totalTokenCount,omitempty"`
}

// Add accumulates another response's usage into this one.
func (u *UsageDetails) Add(other UsageDetails) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
