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

// Package voice synthesizes speech from text via the ElevenLabs API and
// stores the result as a servable MP3 file.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the ElevenLabs API endpoint.
	DefaultBaseURL = "https://api.elevenlabs.io/v1"
	// DefaultModelID is the synthesis model used when none is configured.
	DefaultModelID = "eleven_turbo_v2_5"
	// DefaultOutputDir is where generated audio files are written.
	DefaultOutputDir = "voice_over_outputs"
	// DefaultTimeout bounds each synthesis call.
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the synthesizer.
type Config struct {
	APIKey    string
	VoiceID   string
	ModelID   string
	BaseURL   string
	OutputDir string
	Timeout   time.Duration

	// Optional voice tuning; applied only when non-nil.
	Stability       *float64
	SimilarityBoost *float64
}

// Synthesizer converts text to speech and persists the audio.
type Synthesizer struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSynthesizer creates a voice synthesizer. The returned synthesizer
// fails closed: generation requires both an API key and a voice ID.
func NewSynthesizer(config Config, logger *zap.Logger) *Synthesizer {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.ModelID == "" {
		config.ModelID = DefaultModelID
	}
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Available reports whether the synthesizer has the credentials it
// needs to generate audio.
func (s *Synthesizer) Available() bool {
	return s.config.APIKey != "" && s.config.VoiceID != ""
}

// OutputDir returns the directory generated audio files are written to.
func (s *Synthesizer) OutputDir() string {
	return s.config.OutputDir
}

type synthesisRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Generate synthesizes the given text and writes an MP3 file under the
// output directory. It returns the URL path clients can fetch the audio
// from. An empty voiceID falls back to the configured default.
// Preconditions are checked before any network traffic: empty text, a
// missing API key and a missing voice ID all fail immediately.
func (s *Synthesizer) Generate(ctx context.Context, text, voiceID string) (string, error) {
	if voiceID == "" {
		voiceID = s.config.VoiceID
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text is empty")
	}
	if s.config.APIKey == "" {
		return "", fmt.Errorf("ELEVENLABS_API_KEY is not configured")
	}
	if voiceID == "" {
		return "", fmt.Errorf("voice ID is not configured")
	}

	payload := synthesisRequest{
		Text:    text,
		ModelID: s.config.ModelID,
	}
	if s.config.Stability != nil && s.config.SimilarityBoost != nil {
		payload.VoiceSettings = &voiceSettings{
			Stability:       *s.config.Stability,
			SimilarityBoost: *s.config.SimilarityBoost,
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", strings.TrimRight(s.config.BaseURL, "/"), voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.config.APIKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ElevenLabs API returned %d: %s", resp.StatusCode, string(errBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := fmt.Sprintf("voice_%s_%d.mp3", voiceID, time.Now().Unix())
	path := filepath.Join(s.config.OutputDir, filename)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	s.logger.Info("Generated voice-over",
		zap.String("file", path),
		zap.Int("bytes", len(audio)))

	return "/audio/" + filename, nil
}
