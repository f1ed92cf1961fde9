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

package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Backend is the event-server surface the bridge tools publish to.
// Implementations must treat delivery failures as reportable errors,
// never as panics: the agent loop keeps functioning when telemetry
// delivery fails.
type Backend interface {
	// SendActionUpdate publishes a non-terminal progress report.
	SendActionUpdate(ctx context.Context, agentID, action, detail, status string) error

	// SendCompletion publishes completion results on the agent-message path.
	SendCompletion(ctx context.Context, agentID, summary, riskReport, voiceURL, output string) error

	// SendError publishes an error event on the agent-message path.
	SendError(ctx context.Context, agentID, message string) error

	// WebhookCallback delivers the terminal result for a request.
	WebhookCallback(ctx context.Context, requestID, summary, riskReport, voiceURL string) error
}

// DefaultBackendTimeout bounds each backend HTTP call.
const DefaultBackendTimeout = 10 * time.Second

// HTTPBackend publishes agent events to the backend event server over
// HTTP, matching the /agent/message and /callback wire formats.
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBackend creates a backend client for the given base URL,
// e.g. "http://localhost:8000".
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultBackendTimeout,
		},
	}
}

// SendActionUpdate implements Backend.
func (b *HTTPBackend) SendActionUpdate(ctx context.Context, agentID, action, detail, status string) error {
	payload := map[string]interface{}{
		"agent_id": agentID,
		"action":   action,
		"detail":   detail,
		"status":   status,
	}
	return b.post(ctx, "/agent/message", payload)
}

// SendCompletion implements Backend.
func (b *HTTPBackend) SendCompletion(ctx context.Context, agentID, summary, riskReport, voiceURL, output string) error {
	if output == "" {
		output = summary
	}
	payload := map[string]interface{}{
		"name":        agentID,
		"summary":     summary,
		"risk_report": riskReport,
		"voice_url":   voiceURL,
		"output":      output,
	}
	return b.post(ctx, "/agent/message", payload)
}

// SendError implements Backend.
func (b *HTTPBackend) SendError(ctx context.Context, agentID, message string) error {
	payload := map[string]interface{}{
		"name":  agentID,
		"error": message,
	}
	return b.post(ctx, "/agent/message", payload)
}

// WebhookCallback implements Backend.
func (b *HTTPBackend) WebhookCallback(ctx context.Context, requestID, summary, riskReport, voiceURL string) error {
	payload := map[string]interface{}{
		"request_id":  requestID,
		"summary":     summary,
		"risk_report": riskReport,
		"voice_url":   voiceURL,
		"output":      summary,
	}
	return b.post(ctx, "/callback", payload)
}

func (b *HTTPBackend) post(ctx context.Context, path string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
