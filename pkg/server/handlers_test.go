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
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/reef/pkg/broker"
	"github.com/teradata-labs/reef/pkg/event"
)

func testGraph() broker.SessionSpec {
	return broker.SessionSpec{
		ApplicationID: "test-app",
		PrivacyKey:    "test-key",
		Agents: []broker.AgentSpec{
			{Name: "orchestrator-agent"},
			{Name: "summarizer-agent"},
		},
	}
}

// launchRecorder captures the session each launch was asked to serve.
type launchRecorder struct {
	launched chan broker.SessionInfo
	err      error
}

func newLaunchRecorder() *launchRecorder {
	return &launchRecorder{launched: make(chan broker.SessionInfo, 1)}
}

func (l *launchRecorder) Launch(ctx context.Context, info broker.SessionInfo) error {
	if l.err != nil {
		return l.err
	}
	l.launched <- info
	return nil
}

type serverFixture struct {
	server   *Server
	store    *event.Store
	launcher *launchRecorder
	url      string
	client   *http.Client
}

func newServerFixture(t *testing.T, config Config) *serverFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	b := broker.New(logger)
	t.Cleanup(func() { _ = b.Close() })
	store := event.NewStore(logger)
	launcher := newLaunchRecorder()

	s := New(config, b, store, testGraph(), launcher, logger)
	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)

	return &serverFixture{
		server:   s,
		store:    store,
		launcher: launcher,
		url:      ts.URL,
		client:   ts.Client(),
	}
}

func (f *serverFixture) getJSON(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := f.client.Get(f.url + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var body map[string]interface{}
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func (f *serverFixture) postJSON(t *testing.T, path, payload string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := f.client.Post(f.url+path, "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var body map[string]interface{}
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestHandleRoot(t *testing.T) {
	f := newServerFixture(t, Config{})

	status, body := f.getJSON(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Agent Communication Backend", body["message"])

	status, _ = f.getJSON(t, "/nope")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandleHealth(t *testing.T) {
	f := newServerFixture(t, Config{})

	status, body := f.getJSON(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(0), body["active_connections"])
	assert.Equal(t, float64(0), body["total_messages"])
}

func TestCORSPreflight(t *testing.T) {
	f := newServerFixture(t, Config{})

	req, err := http.NewRequest(http.MethodOptions, f.url+"/prompt", nil)
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHandleAgentMessagePublishes(t *testing.T) {
	f := newServerFixture(t, Config{})
	conn := f.store.AddConnection()
	defer f.store.RemoveConnection(conn)

	status, body := f.postJSON(t, "/agent/message",
		`{"agent_id": "summarizer-agent", "action": "Analyzing", "detail": "reading diff", "status": "running"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "received", body["status"])

	select {
	case ev := <-conn.C:
		assert.Equal(t, event.TypeAction, ev.Type)
		assert.Contains(t, ev.Data, `"action":"Analyzing"`)
		assert.Contains(t, ev.Data, `"source":"summarizer-agent"`)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHandleAgentMessageRejectsBadInput(t *testing.T) {
	f := newServerFixture(t, Config{})

	status, _ := f.postJSON(t, "/agent/message", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	resp, err := f.client.Get(f.url + "/agent/message")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNormalizeAgentMessage(t *testing.T) {
	cases := []struct {
		name     string
		payload  map[string]interface{}
		wantType event.Type
		wantData []string
	}{
		{
			name: "internal update format",
			payload: map[string]interface{}{
				"agent_id": "risk-agent",
				"action":   "Assessing Risk",
				"detail":   "scanning for secrets",
				"status":   "running",
			},
			wantType: event.TypeAction,
			wantData: []string{`"action":"Assessing Risk"`, `"source":"risk-agent"`},
		},
		{
			name: "failed status becomes error",
			payload: map[string]interface{}{
				"agent_id": "risk-agent",
				"action":   "Assessing Risk",
				"detail":   "timed out",
				"status":   "failed",
			},
			wantType: event.TypeError,
			wantData: []string{`"error":"Assessing Risk: timed out"`},
		},
		{
			name: "tool completion format",
			payload: map[string]interface{}{
				"name":        "orchestrator-agent",
				"summary":     "looks good",
				"risk_report": "none",
			},
			wantType: event.TypeComplete,
			wantData: []string{`"summary":"looks good"`, `"output":"looks good"`},
		},
		{
			name: "tool error format",
			payload: map[string]interface{}{
				"name":  "voice-agent",
				"error": "synthesis failed",
			},
			wantType: event.TypeError,
			wantData: []string{`"error":"synthesis failed"`},
		},
		{
			name:     "bare payload gets defaults",
			payload:  map[string]interface{}{"name": "summarizer-agent"},
			wantType: event.TypeAction,
			wantData: []string{`"action":"Processing"`, `"detail":"Agent is working..."`, `"status":"running"`},
		},
		{
			name:     "unknown source",
			payload:  map[string]interface{}{"detail": "hm"},
			wantType: event.TypeAction,
			wantData: []string{`"source":"unknown"`},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := normalizeAgentMessage(tc.payload)
			assert.Equal(t, tc.wantType, ev.Type)
			for _, want := range tc.wantData {
				assert.Contains(t, ev.Data, want)
			}
		})
	}
}

func TestHandleCallbackAlwaysCompletes(t *testing.T) {
	f := newServerFixture(t, Config{})
	conn := f.store.AddConnection()
	defer f.store.RemoveConnection(conn)

	status, body := f.postJSON(t, "/callback",
		`{"request_id": "req-1", "summary": "shipped", "risk_report": "low"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "received", body["status"])

	select {
	case ev := <-conn.C:
		assert.Equal(t, event.TypeComplete, ev.Type)
		assert.Contains(t, ev.Data, `"summary":"shipped"`)
		assert.Contains(t, ev.Data, `"output":"shipped"`)
	case <-time.After(time.Second):
		t.Fatal("no completion delivered")
	}
}

func TestHandleUserMessageQueue(t *testing.T) {
	f := newServerFixture(t, Config{})
	f.store.PushUserMessage("sess-1", "first")
	f.store.PushUserMessage("sess-1", "second")

	status, body := f.getJSON(t, "/session/sess-1/message")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["has_message"])
	assert.Equal(t, "first", body["message"])

	_, body = f.getJSON(t, "/session/sess-1/message")
	assert.Equal(t, "second", body["message"])

	_, body = f.getJSON(t, "/session/sess-1/message")
	assert.Equal(t, false, body["has_message"])
	assert.Nil(t, body["message"])

	status, _ = f.getJSON(t, "/session/sess-1/other")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandlePromptRequiresMessage(t *testing.T) {
	f := newServerFixture(t, Config{})

	resp, err := f.client.Get(f.url + "/prompt")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// sseEvent is one parsed server-sent event.
type sseEvent struct {
	name string
	data string
}

func readSSE(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.name != "":
			return ev
		}
	}
}

func TestHandlePromptStream(t *testing.T) {
	f := newServerFixture(t, Config{Keepalive: 100 * time.Millisecond})

	resp, err := f.client.Get(f.url + "/prompt?message=analyze+this")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	ev := readSSE(t, reader)
	assert.Equal(t, "action", ev.name)
	assert.Contains(t, ev.data, "Creating Session")

	ev = readSSE(t, reader)
	assert.Equal(t, "action", ev.name)
	assert.Contains(t, ev.data, "Session Created")

	ev = readSSE(t, reader)
	assert.Contains(t, ev.data, "Processing Request")

	// The launcher saw the session and the request is queued for the
	// orchestrator with a generated request id.
	var info broker.SessionInfo
	select {
	case info = <-f.launcher.launched:
	case <-time.After(time.Second):
		t.Fatal("launcher was not invoked")
	}
	var msg string
	require.Eventually(t, func() bool {
		var ok bool
		msg, ok = f.store.PopUserMessage(info.SessionID)
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, msg, "User Request (ID: ")
	assert.Contains(t, msg, "): analyze this")

	// Silence produces a keepalive action.
	ev = readSSE(t, reader)
	assert.Equal(t, "action", ev.name)
	assert.Contains(t, ev.data, "Waiting for Analysis")

	// A terminal event closes the stream.
	f.store.Publish(event.NewCompletion("done", "", "", ""))
	for {
		ev = readSSE(t, reader)
		if ev.name == "complete" {
			break
		}
		assert.Equal(t, "action", ev.name)
	}
	assert.Contains(t, ev.data, `"summary":"done"`)

	_, err = reader.ReadString('\n')
	assert.Error(t, err, "stream should be closed after the terminal event")
}

func TestHandlePromptLauncherFailure(t *testing.T) {
	f := newServerFixture(t, Config{})
	f.launcher.err = context.DeadlineExceeded

	resp, err := f.client.Get(f.url + "/prompt?message=hi")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	ev := readSSE(t, reader)
	assert.Contains(t, ev.data, "Creating Session")

	ev = readSSE(t, reader)
	assert.Equal(t, "error", ev.name)
	assert.Contains(t, ev.data, "Failed to start agents")
}
