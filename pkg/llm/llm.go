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

// Package llm defines the provider abstraction agents use to make
// decisions, plus the message and tool-call types shared across
// providers.
package llm

import (
	"context"

	"github.com/teradata-labs/reef/pkg/tool"
)

// Message is a single turn in a conversation. Role is one of "system",
// "user", "assistant" or "tool".
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // set on role "tool"
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // set on role "assistant"
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// Usage tracks token consumption for a single call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the model's reply: free text, tool calls, or both.
type Response struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Usage     Usage      `json:"usage"`
}

// Provider is a chat-completion backend. Implementations must be safe
// for concurrent use.
type Provider interface {
	// Name returns the provider name.
	Name() string
	// Model returns the model identifier.
	Model() string
	// Chat sends the conversation and available tools to the model and
	// returns its response.
	Chat(ctx context.Context, messages []Message, tools []tool.Tool) (*Response, error)
}
