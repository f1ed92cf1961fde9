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

// Package event defines the client-visible event model and the
// in-memory store that fans events out to open SSE connections.
package event

import (
	"encoding/json"
	"time"
)

// Type discriminates client-visible events. Clients only ever see
// action, complete, or error.
type Type string

const (
	TypeAction   Type = "action"
	TypeComplete Type = "complete"
	TypeError    Type = "error"
)

// Terminal reports whether an event of this type ends the stream.
func (t Type) Terminal() bool {
	return t == TypeComplete || t == TypeError
}

// Action is a transient progress report from an agent or the backend.
type Action struct {
	Timestamp int64  `json:"timestamp"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	Status    string `json:"status"`
	Source    string `json:"source"`
}

// Action status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Completion is the terminal result of a request. Exactly one is
// expected per request; it closes the SSE stream.
type Completion struct {
	Summary    string `json:"summary"`
	RiskReport string `json:"risk_report"`
	Output     string `json:"output"`
	VoiceURL   string `json:"voice_url"`
}

// Failure is the payload of an error event.
type Failure struct {
	Error string `json:"error"`
}

// Event is the canonical envelope relayed to SSE consumers. Data holds
// the payload already marshaled to JSON, so fan-out never re-encodes.
type Event struct {
	Type Type
	Data string
}

// NewAction builds an action event timestamped now.
func NewAction(source, action, detail, status string) Event {
	return mustEvent(TypeAction, Action{
		Timestamp: time.Now().UnixMilli(),
		Action:    action,
		Detail:    detail,
		Status:    status,
		Source:    source,
	})
}

// NewCompletion builds a complete event. Output falls back to the
// summary when empty, matching the callback contract.
func NewCompletion(summary, riskReport, voiceURL, output string) Event {
	if output == "" {
		output = summary
	}
	return mustEvent(TypeComplete, Completion{
		Summary:    summary,
		RiskReport: riskReport,
		Output:     output,
		VoiceURL:   voiceURL,
	})
}

// NewError builds an error event.
func NewError(message string) Event {
	return mustEvent(TypeError, Failure{Error: message})
}

func mustEvent(t Type, payload any) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		// The payload types above are plain structs; this cannot fail.
		panic(err)
	}
	return Event{Type: t, Data: string(data)}
}
