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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teradata-labs/reef/pkg/event"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Agent Communication Backend",
		"endpoints": map[string]string{
			"POST /agent/message": "Receive messages from agents",
			"POST /callback":      "Receive callback from orchestrator",
			"GET /prompt":         "SSE endpoint for webapp",
			"GET /health":         "Health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"active_connections": s.store.ActiveConnections(),
		"total_messages":     s.store.TotalEvents(),
	})
}

// handlePrompt starts a PR analysis run: it creates a session, queues
// the user's request for the orchestrator and streams agent activity
// back as server-sent events until a terminal event arrives.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	message := r.URL.Query().Get("message")
	if message == "" {
		http.Error(w, "message query parameter is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	conn := s.store.AddConnection()
	defer s.store.RemoveConnection(conn)

	s.writeSSE(w, flusher, event.NewAction("backend", "Creating Session", "Setting up agent environment...", event.StatusRunning))

	info, err := s.broker.CreateSession(s.graph)
	if err != nil {
		s.logger.Error("Session creation failed", zap.Error(err))
		s.writeSSE(w, flusher, event.NewError("Failed to create agent session"))
		return
	}
	s.store.CreateSession(*info)

	if s.launcher != nil {
		if err := s.launcher.Launch(r.Context(), *info); err != nil {
			s.logger.Error("Agent launch failed",
				zap.String("session_id", info.SessionID),
				zap.Error(err))
			s.writeSSE(w, flusher, event.NewError("Failed to start agents"))
			return
		}
	}

	s.writeSSE(w, flusher, event.NewAction("backend", "Session Created",
		fmt.Sprintf("Agent session %s is ready", info.SessionID), event.StatusCompleted))

	s.writeSSE(w, flusher, event.NewAction("backend", "Processing Request",
		"Sending request to orchestrator agent...", event.StatusRunning))

	requestID := uuid.NewString()
	s.store.PushUserMessage(info.SessionID, fmt.Sprintf("User Request (ID: %s): %s", requestID, message))

	s.logger.Info("Request queued",
		zap.String("session_id", info.SessionID),
		zap.String("request_id", requestID))

	keepalive := time.NewTicker(s.config.Keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-conn.C:
			s.writeSSE(w, flusher, ev)
			if ev.Type.Terminal() {
				return
			}
			keepalive.Reset(s.config.Keepalive)
		case <-keepalive.C:
			s.writeSSE(w, flusher, event.NewAction("backend", "Waiting for Analysis",
				"Agents are processing your request...", event.StatusRunning))
		}
	}
}

func (s *Server) writeSSE(w http.ResponseWriter, flusher http.Flusher, ev event.Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
	flusher.Flush()
}

// handleAgentMessage receives progress reports from agents. Two payload
// shapes are accepted: the internal update format carrying agent_id,
// and the bare tool format discriminated by its summary or error keys.
func (s *Server) handleAgentMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	ev := normalizeAgentMessage(payload)
	s.store.Publish(ev)

	s.logger.Info("Agent message received",
		zap.String("event", string(ev.Type)),
		zap.String("source", stringField(payload, "agent_id", "name")))

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func normalizeAgentMessage(payload map[string]interface{}) event.Event {
	if _, ok := payload["agent_id"]; ok {
		agentID := stringField(payload, "agent_id")
		action := stringFieldDefault(payload, "action", "Unknown Action")
		detail := stringField(payload, "detail")
		status := stringFieldDefault(payload, "status", event.StatusRunning)

		// Progress updates never complete a run; a failed status is
		// surfaced as an error event instead.
		if status == event.StatusFailed {
			return event.NewError(fmt.Sprintf("%s: %s", action, detail))
		}
		return event.NewAction(agentID, action, detail, status)
	}

	agentID := stringFieldDefault(payload, "name", "unknown")
	if _, ok := payload["summary"]; ok {
		summary := stringField(payload, "summary")
		return event.NewCompletion(summary,
			stringField(payload, "risk_report"),
			stringField(payload, "voice_url"),
			stringField(payload, "output"))
	}
	if _, ok := payload["error"]; ok {
		return event.NewError(stringFieldDefault(payload, "error", "Unknown error"))
	}
	return event.NewAction(agentID,
		stringFieldDefault(payload, "action", "Processing"),
		stringFieldDefault(payload, "detail", "Agent is working..."),
		stringFieldDefault(payload, "status", event.StatusRunning))
}

type callbackMessage struct {
	RequestID  string `json:"request_id"`
	Summary    string `json:"summary"`
	RiskReport string `json:"risk_report"`
	VoiceURL   string `json:"voice_url"`
	Output     string `json:"output"`
}

// handleCallback receives the orchestrator's final results and always
// publishes a completion event.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var callback callbackMessage
	if err := json.NewDecoder(r.Body).Decode(&callback); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.store.Publish(event.NewCompletion(callback.Summary, callback.RiskReport, callback.VoiceURL, callback.Output))

	s.logger.Info("Callback received", zap.String("request_id", callback.RequestID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// handleUserMessage serves GET /session/{id}/message, popping the next
// queued user message for the orchestrator to process.
func (s *Server) handleUserMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "session" || parts[2] != "message" {
		http.NotFound(w, r)
		return
	}
	sessionID := parts[1]

	message, ok := s.store.PopUserMessage(sessionID)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":     nil,
			"has_message": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     message,
		"has_message": true,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// stringField returns the first present string value among keys.
func stringField(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok {
			return v
		}
	}
	return ""
}

func stringFieldDefault(payload map[string]interface{}, key, fallback string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
