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
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/teradata-labs/reef/pkg/tool"
)

// MockProvider replays scripted responses in order. Once the script is
// exhausted it returns an empty response, which agent runtimes treat as
// a no-op turn. Safe for concurrent use.
type MockProvider struct {
	mu        sync.Mutex
	responses []*Response
	index     int
	calls     [][]Message
	err       error
}

// NewMockProvider creates a provider that replays the given responses.
func NewMockProvider(responses ...*Response) *MockProvider {
	return &MockProvider{responses: responses}
}

// Name returns the provider name.
func (m *MockProvider) Name() string { return "mock" }

// Model returns the model identifier.
func (m *MockProvider) Model() string { return "mock-model" }

// FailWith makes all subsequent Chat calls return err.
func (m *MockProvider) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Chat records the conversation and returns the next scripted response.
func (m *MockProvider) Chat(ctx context.Context, messages []Message, tools []tool.Tool) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	snapshot := make([]Message, len(messages))
	copy(snapshot, messages)
	m.calls = append(m.calls, snapshot)

	if m.index >= len(m.responses) {
		return &Response{}, nil
	}
	resp := m.responses[m.index]
	m.index++
	return resp, nil
}

// Calls returns the conversations passed to Chat so far.
func (m *MockProvider) Calls() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Chat was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
