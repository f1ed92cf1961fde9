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
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/reef/pkg/llm"
	"github.com/teradata-labs/reef/pkg/tool"
)

const (
	// DefaultMaxIterations bounds the outer decision loop.
	DefaultMaxIterations = 200
	// DefaultSleep is the pause between loop iterations.
	DefaultSleep = 10 * time.Second
	// DefaultMaxToolRounds bounds tool-call rounds within one decision.
	DefaultMaxToolRounds = 8
	// DefaultHistoryWindow is how many conversation turns are kept
	// beyond the system prompt.
	DefaultHistoryWindow = 60
)

// Options tunes a Runtime. Zero values fall back to the defaults.
type Options struct {
	MaxIterations int
	Sleep         time.Duration
	MaxToolRounds int
	HistoryWindow int
}

func (o Options) withDefaults() Options {
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Sleep == 0 {
		o.Sleep = DefaultSleep
	}
	if o.MaxToolRounds == 0 {
		o.MaxToolRounds = DefaultMaxToolRounds
	}
	if o.HistoryWindow == 0 {
		o.HistoryWindow = DefaultHistoryWindow
	}
	return o
}

// Runtime drives one agent: stimulus in, LLM decision, tool calls out,
// repeat. The conversation history persists across iterations so the
// agent remembers earlier thread traffic.
type Runtime struct {
	role     Role
	provider llm.Provider
	registry *tool.Registry
	executor *tool.Executor
	stimulus Stimulus
	opts     Options
	logger   *zap.Logger

	history []llm.Message
}

// NewRuntime creates a runtime for the given role. The registry should
// already be restricted to the role's tool access.
func NewRuntime(role Role, provider llm.Provider, registry *tool.Registry, stimulus Stimulus, opts Options, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		role:     role,
		provider: provider,
		registry: registry,
		executor: tool.NewExecutor(registry, logger),
		stimulus: stimulus,
		opts:     opts.withDefaults(),
		logger:   logger.With(zap.String("agent", role.Name)),
		history: []llm.Message{
			{Role: "system", Content: role.SystemPrompt},
		},
	}
}

// Run executes the decision loop until the iteration budget is spent
// or the context is cancelled. Stimulus failures are retried on the
// next iteration; decision failures are fatal.
func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("Agent loop starting",
		zap.String("model", r.provider.Model()),
		zap.Int("max_iterations", r.opts.MaxIterations))

	for i := 0; i < r.opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		input, err := r.stimulus(ctx)
		if err != nil {
			r.logger.Warn("Stimulus failed", zap.Error(err))
			if err := r.sleep(ctx); err != nil {
				return err
			}
			continue
		}
		if input == "" {
			if err := r.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		if err := r.Step(ctx, input); err != nil {
			return fmt.Errorf("agent %s: decision failed: %w", r.role.Name, err)
		}

		if err := r.sleep(ctx); err != nil {
			return err
		}
	}

	r.logger.Info("Agent loop finished", zap.Int("iterations", r.opts.MaxIterations))
	return nil
}

// Step runs a single decision: append the input, let the model respond
// and execute any tool calls it makes, feeding results back until the
// model answers in plain text or the round budget runs out. An empty
// reply is a valid no-op turn.
func (r *Runtime) Step(ctx context.Context, input string) error {
	r.history = append(r.history, llm.Message{Role: "user", Content: input})

	for round := 0; round < r.opts.MaxToolRounds; round++ {
		resp, err := r.provider.Chat(ctx, r.history, r.registry.Tools())
		if err != nil {
			return err
		}

		if len(resp.ToolCalls) == 0 {
			if resp.Content != "" {
				r.history = append(r.history, llm.Message{Role: "assistant", Content: resp.Content})
				r.logger.Debug("Agent replied", zap.String("content", resp.Content))
			}
			break
		}

		r.history = append(r.history, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			out := r.executor.ExecuteToString(ctx, call.Name, call.Input)
			r.logger.Debug("Tool executed",
				zap.String("tool", call.Name),
				zap.Int("result_len", len(out)))
			r.history = append(r.history, llm.Message{
				Role:       "tool",
				Content:    out,
				ToolCallID: call.ID,
			})
		}
	}

	r.trimHistory()
	return nil
}

// History returns a copy of the conversation so far.
func (r *Runtime) History() []llm.Message {
	out := make([]llm.Message, len(r.history))
	copy(out, r.history)
	return out
}

// trimHistory drops the oldest turns past the window, always keeping
// the system prompt in place.
func (r *Runtime) trimHistory() {
	if len(r.history) <= r.opts.HistoryWindow+1 {
		return
	}
	tail := r.history[len(r.history)-r.opts.HistoryWindow:]
	// Never start the window on an orphaned tool result.
	for len(tail) > 0 && tail[0].Role == "tool" {
		tail = tail[1:]
	}
	trimmed := make([]llm.Message, 0, len(tail)+1)
	trimmed = append(trimmed, r.history[0])
	trimmed = append(trimmed, tail...)
	r.history = trimmed
}

func (r *Runtime) sleep(ctx context.Context) error {
	timer := time.NewTimer(r.opts.Sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
