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

// Package tool implements the typed action bridge agents use to talk to
// the outside world: progress updates, result delivery, PR fetching and
// voice synthesis, plus the broker messaging surface. Tools carry a
// declared JSON schema that is validated before dispatch. Results are
// typed internally but flattened to plain strings at the decision-step
// boundary, since the model only consumes natural language.
package tool

import (
	"context"
	"encoding/json"
)

// Tool is a named, schema-validated action a decision step may invoke.
type Tool interface {
	// Name returns the tool's unique identifier.
	Name() string

	// Description returns a human-readable description for LLM context.
	Description() string

	// InputSchema returns the JSON Schema for tool parameters.
	InputSchema() *JSONSchema

	// Execute runs the tool with given parameters.
	Execute(ctx context.Context, params map[string]interface{}) (*Result, error)
}

// Result is the typed outcome of a tool execution. The executor
// flattens it to a string before it reaches the decision step.
type Result struct {
	// Success indicates if the tool executed successfully.
	Success bool

	// Data contains the result payload. Bridge tools produce strings.
	Data interface{}

	// Error contains error information if execution failed.
	Error *Error
}

// Error carries structured failure information for the bridge layer.
type Error struct {
	// Code is a machine-readable error code.
	Code string

	// Message is a human-readable error message.
	Message string
}

// Ok builds a successful string result.
func Ok(data string) *Result {
	return &Result{Success: true, Data: data}
}

// Fail builds a failed result with a code and message.
func Fail(code, message string) *Result {
	return &Result{Success: false, Error: &Error{Code: code, Message: message}}
}

// JSONSchema represents a JSON Schema for tool parameters.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []interface{}          `json:"enum,omitempty"`
	Default     interface{}            `json:"default,omitempty"`
}

// ToJSON converts the schema to JSON bytes.
func (s *JSONSchema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// NewObjectSchema creates a new object schema with the given properties.
func NewObjectSchema(description string, properties map[string]*JSONSchema, required []string) *JSONSchema {
	if properties == nil {
		properties = map[string]*JSONSchema{}
	}
	return &JSONSchema{
		Type:        "object",
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// NewStringSchema creates a new string schema.
func NewStringSchema(description string) *JSONSchema {
	return &JSONSchema{
		Type:        "string",
		Description: description,
	}
}

// NewArraySchema creates a new array schema with the given item type.
func NewArraySchema(description string, items *JSONSchema) *JSONSchema {
	return &JSONSchema{
		Type:        "array",
		Description: description,
		Items:       items,
	}
}
