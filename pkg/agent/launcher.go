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
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/teradata-labs/reef/pkg/broker"
	"github.com/teradata-labs/reef/pkg/github"
	"github.com/teradata-labs/reef/pkg/llm"
	"github.com/teradata-labs/reef/pkg/tool"
	"github.com/teradata-labs/reef/pkg/voice"
)

// LauncherConfig wires the shared infrastructure agents run against.
type LauncherConfig struct {
	// Broker delivers thread messages between agents.
	Broker *broker.Broker

	// Backend reports progress and results to the HTTP backend.
	Backend tool.Backend

	// BackendBaseURL is where the orchestrator polls for user messages.
	BackendBaseURL string

	// Provider makes the decisions.
	Provider llm.Provider

	// GitHub fetches PR snapshots for the analysis specialists.
	GitHub *github.Client

	// Voice synthesizes audio for the voice specialist.
	Voice *voice.Synthesizer

	Options Options
	Logger  *zap.Logger
}

// Launcher starts the four-agent graph for each session.
type Launcher struct {
	config LauncherConfig
	logger *zap.Logger
}

// NewLauncher creates an in-process agent launcher.
func NewLauncher(config LauncherConfig) *Launcher {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{config: config, logger: logger}
}

// Launch connects every role to the session and starts its runtime in
// a goroutine. Loops run until the iteration budget is spent or the
// context is cancelled.
func (l *Launcher) Launch(ctx context.Context, info broker.SessionInfo) error {
	for _, role := range AllRoles() {
		runtime, err := l.buildRuntime(info, role)
		if err != nil {
			return fmt.Errorf("failed to start %s: %w", role.Name, err)
		}

		go func(role Role) {
			if err := runtime.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("Agent loop exited",
					zap.String("agent", role.Name),
					zap.String("session_id", info.SessionID),
					zap.Error(err))
			}
		}(role)
	}

	l.logger.Info("Agent graph launched", zap.String("session_id", info.SessionID))
	return nil
}

func (l *Launcher) buildRuntime(info broker.SessionInfo, role Role) (*Runtime, error) {
	channel, err := l.config.Broker.Connect(info.SessionID, role.Name)
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()
	tool.RegisterCommsTools(registry, channel)
	registry.Register(tool.NewActionUpdateTool(l.config.Backend))
	registry.Register(tool.NewCompletionTool(l.config.Backend))
	registry.Register(tool.NewErrorTool(l.config.Backend))
	registry.Register(tool.NewWebhookCallbackTool(l.config.Backend))
	if l.config.GitHub != nil {
		registry.Register(tool.NewFetchPRInfoTool(l.config.GitHub))
	}
	if l.config.Voice != nil {
		registry.Register(tool.NewGenerateVoiceTool(l.config.Voice))
	}
	restricted := registry.Subset(role.ToolAccess)

	var stimulus Stimulus
	if role.Name == OrchestratorName {
		stimulus = NewUserMessagePoller(l.config.BackendBaseURL, info.SessionID).Stimulus()
	} else {
		stimulus = FixedStimulus(ContinueStimulus)
	}

	return NewRuntime(role, l.config.Provider, restricted, stimulus, l.config.Options, l.logger), nil
}
