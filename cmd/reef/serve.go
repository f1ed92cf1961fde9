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
package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/reef/internal/log"
	"github.com/teradata-labs/reef/pkg/agent"
	"github.com/teradata-labs/reef/pkg/broker"
	"github.com/teradata-labs/reef/pkg/config"
	"github.com/teradata-labs/reef/pkg/event"
	"github.com/teradata-labs/reef/pkg/github"
	"github.com/teradata-labs/reef/pkg/llm/openai"
	"github.com/teradata-labs/reef/pkg/server"
	"github.com/teradata-labs/reef/pkg/tool"
	"github.com/teradata-labs/reef/pkg/voice"
)

var serveAgents bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend server",
	Long: `Starts the backend HTTP server. With --agents the four-agent
analysis graph is launched in-process for every session created
through GET /prompt.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveAgents, "agents", true, "launch agents in-process for each session")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.New(cfg.Logging.Level, cfg.Logging.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log.SetLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := broker.New(logger)
	defer func() { _ = b.Close() }()

	store := event.NewStore(logger)

	var launcher server.Launcher
	if serveAgents {
		baseURL := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		launcher = agent.NewLauncher(agent.LauncherConfig{
			Broker:         b,
			Backend:        tool.NewHTTPBackend(baseURL),
			BackendBaseURL: baseURL,
			Provider: openai.NewClient(openai.Config{
				APIKey:      cfg.LLM.APIKey,
				Model:       cfg.LLM.Model,
				Endpoint:    cfg.LLM.Endpoint,
				MaxTokens:   cfg.LLM.MaxTokens,
				Temperature: cfg.LLM.Temperature,
			}),
			GitHub: github.NewClient(github.Config{
				BaseURL: cfg.GitHub.BaseURL,
				Token:   cfg.GitHub.Token,
			}),
			Voice: voice.NewSynthesizer(voice.Config{
				APIKey:    cfg.Voice.APIKey,
				VoiceID:   cfg.Voice.VoiceID,
				ModelID:   cfg.Voice.ModelID,
				OutputDir: cfg.Voice.OutputDir,
			}, logger),
			Options: agent.Options{
				MaxIterations: cfg.Agents.MaxIterations,
				Sleep:         cfg.Agents.Sleep(),
				MaxToolRounds: cfg.Agents.MaxToolRounds,
			},
			Logger: logger,
		})
	}

	srv := server.New(server.Config{
		Addr:      cfg.Server.Addr(),
		Keepalive: cfg.Server.Keepalive(),
		AudioDir:  cfg.Voice.OutputDir,
	}, b, store, server.DefaultGraph(cfg), launcher, logger)

	logger.Info("Starting reef backend",
		zap.String("addr", cfg.Server.Addr()),
		zap.Bool("agents", serveAgents))

	return srv.Start(ctx)
}
