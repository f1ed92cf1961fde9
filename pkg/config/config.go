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

// Package config loads application configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigFileName is the name of the config file (reef.yaml).
const DefaultConfigFileName = "reef"

// Config holds all configuration for the reef server and agents.
// Priority: config file > environment variables > defaults.
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Session identity attached to every created session
	App AppConfig `mapstructure:"app"`

	// LLM provider configuration
	LLM LLMConfig `mapstructure:"llm"`

	// GitHub API configuration
	GitHub GitHubConfig `mapstructure:"github"`

	// Voice synthesis configuration
	Voice VoiceConfig `mapstructure:"voice"`

	// Agent runtime configuration
	Agents AgentsConfig `mapstructure:"agents"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// KeepaliveSeconds is the SSE keepalive interval while a session is
	// still processing (default: 60)
	KeepaliveSeconds int `mapstructure:"keepalive_seconds"`
}

// Addr returns the host:port address to listen on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Keepalive returns the SSE keepalive interval.
func (s ServerConfig) Keepalive() time.Duration {
	return time.Duration(s.KeepaliveSeconds) * time.Second
}

// AppConfig identifies the application to the message broker.
type AppConfig struct {
	ID         string `mapstructure:"id"`
	PrivacyKey string `mapstructure:"privacy_key"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Endpoint    string  `mapstructure:"endpoint"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// GitHubConfig holds GitHub API configuration.
type GitHubConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

// VoiceConfig holds ElevenLabs voice synthesis configuration.
type VoiceConfig struct {
	APIKey    string `mapstructure:"api_key"`
	VoiceID   string `mapstructure:"voice_id"`
	ModelID   string `mapstructure:"model_id"`
	OutputDir string `mapstructure:"output_dir"`
}

// AgentsConfig holds agent runtime configuration.
type AgentsConfig struct {
	// MaxIterations bounds the outer decision loop (default: 200)
	MaxIterations int `mapstructure:"max_iterations"`

	// SleepSeconds is the pause between loop iterations (default: 10)
	SleepSeconds int `mapstructure:"sleep_seconds"`

	// MaxToolRounds bounds tool-call rounds within one decision (default: 8)
	MaxToolRounds int `mapstructure:"max_tool_rounds"`
}

// Sleep returns the pause between agent loop iterations.
func (a AgentsConfig) Sleep() time.Duration {
	return time.Duration(a.SleepSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Debug bool   `mapstructure:"debug"`
}

// Load reads configuration from the given file (or the default search
// paths when empty), layered under REEF_* environment variables and
// the conventional provider variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/reef/")
		v.SetConfigName(DefaultConfigFileName)
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
		// Missing config file is fine; env vars and defaults apply.
	}

	v.SetEnvPrefix("REEF")
	// Nested keys map to underscored variables: server.port becomes
	// REEF_SERVER_PORT.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyWellKnownEnv(&config)
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.keepalive_seconds", 60)

	v.SetDefault("app.id", "pr-summarizer-app")
	v.SetDefault("app.privacy_key", "pr-analysis-key")

	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 0.3)

	v.SetDefault("voice.model_id", "eleven_turbo_v2_5")
	v.SetDefault("voice.output_dir", "voice_over_outputs")

	v.SetDefault("agents.max_iterations", 200)
	v.SetDefault("agents.sleep_seconds", 10)
	v.SetDefault("agents.max_tool_rounds", 8)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.debug", false)
}

// applyWellKnownEnv fills credentials from the conventional provider
// variables when the config file and REEF_* variables left them empty.
func applyWellKnownEnv(config *Config) {
	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if config.GitHub.Token == "" {
		config.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if config.Voice.APIKey == "" {
		config.Voice.APIKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if config.Voice.VoiceID == "" {
		config.Voice.VoiceID = os.Getenv("ELEVENLABS_VOICE_ID")
	}
}
