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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureServer records each posted payload by path.
type captureServer struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
}

type capturedRequest struct {
	path    string
	payload map[string]interface{}
}

func newCaptureServer() (*captureServer, *httptest.Server) {
	cs := &captureServer{status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		cs.mu.Lock()
		cs.requests = append(cs.requests, capturedRequest{path: r.URL.Path, payload: payload})
		status := cs.status
		cs.mu.Unlock()
		w.WriteHeader(status)
	}))
	return cs, srv
}

func (cs *captureServer) last(t *testing.T) capturedRequest {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	require.NotEmpty(t, cs.requests)
	return cs.requests[len(cs.requests)-1]
}

func TestHTTPBackendSendActionUpdate(t *testing.T) {
	cs, srv := newCaptureServer()
	defer srv.Close()
	b := NewHTTPBackend(srv.URL)

	err := b.SendActionUpdate(context.Background(), "summarizer-agent", "Fetching PR", "Reading the diff", "running")
	require.NoError(t, err)

	req := cs.last(t)
	assert.Equal(t, "/agent/message", req.path)
	assert.Equal(t, "summarizer-agent", req.payload["agent_id"])
	assert.Equal(t, "Fetching PR", req.payload["action"])
	assert.Equal(t, "Reading the diff", req.payload["detail"])
	assert.Equal(t, "running", req.payload["status"])
}

func TestHTTPBackendSendCompletionOutputFallback(t *testing.T) {
	cs, srv := newCaptureServer()
	defer srv.Close()
	b := NewHTTPBackend(srv.URL)

	err := b.SendCompletion(context.Background(), "orchestrator-agent", "the summary", "no risks", "/audio/x.mp3", "")
	require.NoError(t, err)

	req := cs.last(t)
	assert.Equal(t, "/agent/message", req.path)
	assert.Equal(t, "orchestrator-agent", req.payload["name"])
	assert.Equal(t, "the summary", req.payload["summary"])
	assert.Equal(t, "no risks", req.payload["risk_report"])
	assert.Equal(t, "/audio/x.mp3", req.payload["voice_url"])
	// Empty output falls back to the summary.
	assert.Equal(t, "the summary", req.payload["output"])
}

func TestHTTPBackendSendError(t *testing.T) {
	cs, srv := newCaptureServer()
	defer srv.Close()
	b := NewHTTPBackend(srv.URL)

	err := b.SendError(context.Background(), "risk-agent", "upstream unavailable")
	require.NoError(t, err)

	req := cs.last(t)
	assert.Equal(t, "/agent/message", req.path)
	assert.Equal(t, "risk-agent", req.payload["name"])
	assert.Equal(t, "upstream unavailable", req.payload["error"])
}

func TestHTTPBackendWebhookCallback(t *testing.T) {
	cs, srv := newCaptureServer()
	defer srv.Close()
	b := NewHTTPBackend(srv.URL)

	err := b.WebhookCallback(context.Background(), "req-123", "done", "clean", "")
	require.NoError(t, err)

	req := cs.last(t)
	assert.Equal(t, "/callback", req.path)
	assert.Equal(t, "req-123", req.payload["request_id"])
	assert.Equal(t, "done", req.payload["summary"])
	assert.Equal(t, "done", req.payload["output"])
}

func TestHTTPBackendNon200IsError(t *testing.T) {
	cs, srv := newCaptureServer()
	defer srv.Close()
	cs.status = http.StatusInternalServerError
	b := NewHTTPBackend(srv.URL)

	err := b.SendError(context.Background(), "voice-agent", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestBridgeToolsSoftFailOnDeliveryError(t *testing.T) {
	// Unreachable backend: the tools report the failure as a string
	// result so the agent loop keeps going.
	b := NewHTTPBackend("http://127.0.0.1:1")

	result, err := NewActionUpdateTool(b).Execute(context.Background(), map[string]interface{}{
		"agent_id": "a", "action": "x", "detail": "y", "status": "running",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, Flatten(result), "Failed to send action update")

	result, err = NewWebhookCallbackTool(b).Execute(context.Background(), map[string]interface{}{
		"request_id": "r", "summary": "s",
	})
	require.NoError(t, err)
	assert.Contains(t, Flatten(result), "Failed to send webhook callback")
}

func TestBridgeToolSuccessStrings(t *testing.T) {
	_, srv := newCaptureServer()
	defer srv.Close()
	b := NewHTTPBackend(srv.URL)
	ctx := context.Background()

	result, err := NewActionUpdateTool(b).Execute(ctx, map[string]interface{}{
		"agent_id": "a", "action": "Analyzing PR", "detail": "d", "status": "running",
	})
	require.NoError(t, err)
	assert.Equal(t, "Action update sent successfully: Analyzing PR", Flatten(result))

	result, err = NewCompletionTool(b).Execute(ctx, map[string]interface{}{
		"agent_id": "a", "summary": "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "Completion results sent successfully", Flatten(result))

	result, err = NewErrorTool(b).Execute(ctx, map[string]interface{}{
		"agent_id": "a", "error_message": "e",
	})
	require.NoError(t, err)
	assert.Equal(t, "Error message sent successfully", Flatten(result))

	result, err = NewWebhookCallbackTool(b).Execute(ctx, map[string]interface{}{
		"request_id": "r", "summary": "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "Webhook callback sent successfully", Flatten(result))
}
