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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/reef/pkg/llm"
	"github.com/teradata-labs/reef/pkg/tool"
)

// recordingTool remembers every invocation.
type recordingTool struct {
	name  string
	calls []map[string]interface{}
	reply string
}

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "recording test tool" }

func (t *recordingTool) InputSchema() *tool.JSONSchema {
	return tool.NewObjectSchema("any", map[string]*tool.JSONSchema{
		"value": tool.NewStringSchema("value"),
	}, nil)
}

func (t *recordingTool) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	t.calls = append(t.calls, params)
	return tool.Ok(t.reply), nil
}

func testRole(tools ...string) Role {
	return Role{Name: "test-agent", SystemPrompt: "You are a test agent.", ToolAccess: tools}
}

func TestStepPlainReply(t *testing.T) {
	provider := llm.NewMockProvider(&llm.Response{Content: "all done"})
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(), nil, Options{}, zaptest.NewLogger(t))

	require.NoError(t, rt.Step(context.Background(), "do the thing"))

	history := rt.History()
	require.Len(t, history, 3)
	assert.Equal(t, "system", history[0].Role)
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "do the thing", history[1].Content)
	assert.Equal(t, "assistant", history[2].Role)
	assert.Equal(t, "all done", history[2].Content)
}

func TestStepEmptyReplyIsNoOp(t *testing.T) {
	provider := llm.NewMockProvider(&llm.Response{})
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(), nil, Options{}, zaptest.NewLogger(t))

	require.NoError(t, rt.Step(context.Background(), "anything"))

	history := rt.History()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[1].Role)
}

func TestStepExecutesToolCalls(t *testing.T) {
	rec := &recordingTool{name: "probe", reply: "probe result"}
	registry := tool.NewRegistry()
	registry.Register(rec)

	provider := llm.NewMockProvider(
		&llm.Response{ToolCalls: []llm.ToolCall{
			{ID: "call-1", Name: "probe", Input: map[string]interface{}{"value": "x"}},
		}},
		&llm.Response{Content: "finished"},
	)
	rt := NewRuntime(testRole("probe"), provider, registry, nil, Options{}, zaptest.NewLogger(t))

	require.NoError(t, rt.Step(context.Background(), "go"))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "x", rec.calls[0]["value"])

	history := rt.History()
	// system, user, assistant-with-calls, tool result, assistant reply.
	require.Len(t, history, 5)
	assert.Equal(t, "assistant", history[2].Role)
	require.Len(t, history[2].ToolCalls, 1)
	assert.Equal(t, "tool", history[3].Role)
	assert.Equal(t, "call-1", history[3].ToolCallID)
	assert.Equal(t, "probe result", history[3].Content)
	assert.Equal(t, "finished", history[4].Content)
	assert.Equal(t, 2, provider.CallCount())
}

func TestStepStopsAtToolRoundBudget(t *testing.T) {
	rec := &recordingTool{name: "probe", reply: "again"}
	registry := tool.NewRegistry()
	registry.Register(rec)

	// Every response demands another tool round.
	responses := make([]*llm.Response, 0, 10)
	for i := 0; i < 10; i++ {
		responses = append(responses, &llm.Response{ToolCalls: []llm.ToolCall{
			{ID: fmt.Sprintf("call-%d", i), Name: "probe", Input: map[string]interface{}{}},
		}})
	}
	provider := llm.NewMockProvider(responses...)
	rt := NewRuntime(testRole("probe"), provider, registry, nil, Options{MaxToolRounds: 3}, zaptest.NewLogger(t))

	require.NoError(t, rt.Step(context.Background(), "go"))
	assert.Equal(t, 3, provider.CallCount())
	assert.Len(t, rec.calls, 3)
}

func TestStepProviderErrorIsFatal(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.FailWith(fmt.Errorf("model unavailable"))
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(), nil, Options{}, zaptest.NewLogger(t))

	err := rt.Step(context.Background(), "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestTrimHistoryKeepsSystemPromptAndWindow(t *testing.T) {
	provider := llm.NewMockProvider()
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(), nil, Options{HistoryWindow: 4}, zaptest.NewLogger(t))

	for i := 0; i < 10; i++ {
		// Each Step appends a user turn; the mock replays empty
		// responses once exhausted, so no assistant turns accrue.
		require.NoError(t, rt.Step(context.Background(), fmt.Sprintf("turn %d", i)))
	}

	history := rt.History()
	require.LessOrEqual(t, len(history), 5)
	assert.Equal(t, "system", history[0].Role)
	assert.Equal(t, "You are a test agent.", history[0].Content)
	assert.Equal(t, "turn 9", history[len(history)-1].Content)
	for _, msg := range history[1:] {
		assert.NotEqual(t, "system", msg.Role)
	}
}

func TestTrimHistoryNeverStartsOnToolResult(t *testing.T) {
	rec := &recordingTool{name: "probe", reply: "r"}
	registry := tool.NewRegistry()
	registry.Register(rec)

	// Alternate tool rounds and plain replies to mix tool results into
	// the history, then force trimming with a small window.
	responses := make([]*llm.Response, 0, 20)
	for i := 0; i < 10; i++ {
		responses = append(responses,
			&llm.Response{ToolCalls: []llm.ToolCall{
				{ID: fmt.Sprintf("c%d", i), Name: "probe", Input: map[string]interface{}{}},
			}},
			&llm.Response{Content: "ok"},
		)
	}
	provider := llm.NewMockProvider(responses...)
	// Window of 2 lands exactly on the tool result, which must be skipped.
	rt := NewRuntime(testRole("probe"), provider, registry, nil, Options{HistoryWindow: 2}, zaptest.NewLogger(t))

	for i := 0; i < 10; i++ {
		require.NoError(t, rt.Step(context.Background(), "go"))
		history := rt.History()
		require.NotEmpty(t, history)
		assert.Equal(t, "system", history[0].Role)
		if len(history) > 1 {
			assert.NotEqual(t, "tool", history[1].Role)
		}
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	provider := llm.NewMockProvider()
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(),
		FixedStimulus("work"), Options{Sleep: time.Millisecond}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunHonorsIterationBudget(t *testing.T) {
	provider := llm.NewMockProvider()
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(),
		FixedStimulus("work"), Options{MaxIterations: 3, Sleep: time.Millisecond}, zaptest.NewLogger(t))

	require.NoError(t, rt.Run(context.Background()))
	assert.Equal(t, 3, provider.CallCount())
}

func TestRunRetriesStimulusFailure(t *testing.T) {
	provider := llm.NewMockProvider(&llm.Response{Content: "ok"})

	attempts := 0
	stimulus := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", fmt.Errorf("backend flake")
		}
		return "work", nil
	}
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(),
		stimulus, Options{MaxIterations: 5, Sleep: time.Millisecond}, zaptest.NewLogger(t))

	require.NoError(t, rt.Run(context.Background()))
	assert.GreaterOrEqual(t, attempts, 3)
	assert.GreaterOrEqual(t, provider.CallCount(), 1)
}

func TestRunSkipsEmptyStimulus(t *testing.T) {
	provider := llm.NewMockProvider()
	rt := NewRuntime(testRole(), provider, tool.NewRegistry(),
		FixedStimulus(""), Options{MaxIterations: 3, Sleep: time.Millisecond}, zaptest.NewLogger(t))

	require.NoError(t, rt.Run(context.Background()))
	assert.Equal(t, 0, provider.CallCount())
}
