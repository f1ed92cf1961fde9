// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Stimulus produces the next user-role input for a loop iteration. An
// empty string means there is nothing to do this round.
type Stimulus func(ctx context.Context) (string, error)

// FixedStimulus always returns the same text. Specialists run on the
// automated continue nudge.
func FixedStimulus(text string) Stimulus {
	return func(ctx context.Context) (string, error) {
		return text, nil
	}
}

// UserMessagePoller polls the backend for queued user messages. Until
// the first message arrives the orchestrator stays idle; afterwards it
// keeps working on the automated continue nudge between messages.
type UserMessagePoller struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	started    bool
}

// NewUserMessagePoller creates a poller against the backend's
// per-session message queue.
func NewUserMessagePoller(baseURL, sessionID string) *UserMessagePoller {
	return &UserMessagePoller{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type userMessageResponse struct {
	Message    string `json:"message"`
	HasMessage bool   `json:"has_message"`
}

// Next returns the next queued user message, or the continue nudge
// once a request is in flight.
func (p *UserMessagePoller) Next(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/session/%s/message", p.baseURL, p.sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to poll user messages: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(body))
	}

	var out userMessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if out.HasMessage {
		p.started = true
		return out.Message, nil
	}
	if p.started {
		return ContinueStimulus, nil
	}
	return "", nil
}

// Stimulus adapts the poller to the Stimulus function type.
func (p *UserMessagePoller) Stimulus() Stimulus {
	return p.Next
}
