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
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, 60*time.Second, cfg.Server.Keepalive())

	assert.Equal(t, "pr-summarizer-app", cfg.App.ID)
	assert.Equal(t, "pr-analysis-key", cfg.App.PrivacyKey)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)

	assert.Equal(t, "eleven_turbo_v2_5", cfg.Voice.ModelID)
	assert.Equal(t, "voice_over_outputs", cfg.Voice.OutputDir)

	assert.Equal(t, 200, cfg.Agents.MaxIterations)
	assert.Equal(t, 10*time.Second, cfg.Agents.Sleep())
	assert.Equal(t, 8, cfg.Agents.MaxToolRounds)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Debug)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reef.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 9001
  keepalive_seconds: 5
llm:
  model: gpt-4o
  api_key: file-key
agents:
  max_iterations: 12
logging:
  level: debug
  debug: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9001", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.Keepalive())
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, 12, cfg.Agents.MaxIterations)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Debug)

	// Untouched sections keep their defaults.
	assert.Equal(t, "pr-summarizer-app", cfg.App.ID)
	assert.Equal(t, 8, cfg.Agents.MaxToolRounds)
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reef.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestWellKnownEnvFallbacks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GITHUB_TOKEN", "env-github")
	t.Setenv("ELEVENLABS_API_KEY", "env-eleven")
	t.Setenv("ELEVENLABS_VOICE_ID", "env-voice")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-openai", cfg.LLM.APIKey)
	assert.Equal(t, "env-github", cfg.GitHub.Token)
	assert.Equal(t, "env-eleven", cfg.Voice.APIKey)
	assert.Equal(t, "env-voice", cfg.Voice.VoiceID)
}

func TestPrefixedEnvOverrides(t *testing.T) {
	t.Setenv("REEF_SERVER_PORT", "9090")
	t.Setenv("REEF_LLM_MODEL", "gpt-4o")
	t.Setenv("REEF_AGENTS_MAX_ITERATIONS", "50")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 50, cfg.Agents.MaxIterations)
	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestConfigFileWinsOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-openai")

	dir := t.TempDir()
	path := filepath.Join(dir, "reef.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: file-key\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
}
