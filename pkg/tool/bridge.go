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
	"fmt"
)

// Tool names for the backend bridge.
const (
	NameSendActionUpdate = "send_action_update"
	NameSendCompletion   = "send_completion"
	NameSendError        = "send_error"
	NameWebhookCallback  = "webhook_callback"
)

// actionUpdateTool reports progress to the webapp. Fire-and-forget:
// a transport failure comes back as a string, never as an error that
// could unwind the agent loop.
type actionUpdateTool struct {
	backend Backend
}

// NewActionUpdateTool creates the send_action_update tool.
func NewActionUpdateTool(backend Backend) Tool {
	return &actionUpdateTool{backend: backend}
}

func (t *actionUpdateTool) Name() string { return NameSendActionUpdate }

func (t *actionUpdateTool) Description() string {
	return "Send a progress update to the webapp. Status must be running, completed, or failed."
}

func (t *actionUpdateTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Progress update", map[string]*JSONSchema{
		"agent_id": NewStringSchema("ID of the agent sending the update"),
		"action":   NewStringSchema("Brief description of the action"),
		"detail":   NewStringSchema("Detailed description"),
		"status":   NewStringSchema("Status: running, completed, failed"),
	}, []string{"agent_id", "action", "detail", "status"})
}

func (t *actionUpdateTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	agentID := stringParam(params, "agent_id")
	action := stringParam(params, "action")
	if err := t.backend.SendActionUpdate(ctx, agentID, action, stringParam(params, "detail"), stringParam(params, "status")); err != nil {
		return Ok(fmt.Sprintf("Failed to send action update: %v", err)), nil
	}
	return Ok(fmt.Sprintf("Action update sent successfully: %s", action)), nil
}

// completionTool publishes completion results on the agent-message path.
type completionTool struct {
	backend Backend
}

// NewCompletionTool creates the send_completion tool.
func NewCompletionTool(backend Backend) Tool {
	return &completionTool{backend: backend}
}

func (t *completionTool) Name() string { return NameSendCompletion }

func (t *completionTool) Description() string {
	return "Send completion results to the webapp."
}

func (t *completionTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Completion results", map[string]*JSONSchema{
		"agent_id":    NewStringSchema("ID of the agent sending completion"),
		"summary":     NewStringSchema("Analysis summary"),
		"risk_report": NewStringSchema("Risk assessment report"),
		"voice_url":   NewStringSchema("URL to generated voice file"),
		"output":      NewStringSchema("Final combined output"),
	}, []string{"agent_id", "summary"})
}

func (t *completionTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	err := t.backend.SendCompletion(ctx,
		stringParam(params, "agent_id"),
		stringParam(params, "summary"),
		stringParam(params, "risk_report"),
		stringParam(params, "voice_url"),
		stringParam(params, "output"))
	if err != nil {
		return Ok(fmt.Sprintf("Failed to send completion: %v", err)), nil
	}
	return Ok("Completion results sent successfully"), nil
}

// errorTool publishes an error event on the agent-message path.
type errorTool struct {
	backend Backend
}

// NewErrorTool creates the send_error tool.
func NewErrorTool(backend Backend) Tool {
	return &errorTool{backend: backend}
}

func (t *errorTool) Name() string { return NameSendError }

func (t *errorTool) Description() string {
	return "Send an error message to the webapp."
}

func (t *errorTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Error report", map[string]*JSONSchema{
		"agent_id":      NewStringSchema("ID of the agent sending the error"),
		"error_message": NewStringSchema("Error description"),
	}, []string{"agent_id", "error_message"})
}

func (t *errorTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	if err := t.backend.SendError(ctx, stringParam(params, "agent_id"), stringParam(params, "error_message")); err != nil {
		return Ok(fmt.Sprintf("Failed to send error: %v", err)), nil
	}
	return Ok("Error message sent successfully"), nil
}

// webhookCallbackTool is the single terminal-result path from the
// orchestrator to the client-facing server.
type webhookCallbackTool struct {
	backend Backend
}

// NewWebhookCallbackTool creates the webhook_callback tool.
func NewWebhookCallbackTool(backend Backend) Tool {
	return &webhookCallbackTool{backend: backend}
}

func (t *webhookCallbackTool) Name() string { return NameWebhookCallback }

func (t *webhookCallbackTool) Description() string {
	return "Send final results to the webapp via callback. Carries the request_id from the initiating user message."
}

func (t *webhookCallbackTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Final results", map[string]*JSONSchema{
		"request_id":  NewStringSchema("Request ID to respond to"),
		"summary":     NewStringSchema("PR analysis summary"),
		"risk_report": NewStringSchema("Security risk assessment"),
		"voice_url":   NewStringSchema("URL to generated voice file"),
	}, []string{"request_id", "summary"})
}

func (t *webhookCallbackTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	err := t.backend.WebhookCallback(ctx,
		stringParam(params, "request_id"),
		stringParam(params, "summary"),
		stringParam(params, "risk_report"),
		stringParam(params, "voice_url"))
	if err != nil {
		return Ok(fmt.Sprintf("Failed to send webhook callback: %v", err)), nil
	}
	return Ok("Webhook callback sent successfully"), nil
}

// stringParam reads an optional string parameter, empty when absent.
func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
