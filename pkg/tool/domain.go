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

package tool

import (
	"context"
	"fmt"

	"github.com/teradata-labs/reef/pkg/github"
	"github.com/teradata-labs/reef/pkg/voice"
)

const (
	NameFetchPRInfo   = "fetch_pr_info"
	NameGenerateVoice = "generate_voice"
)

// fetchPRInfoTool retrieves a bounded pull-request snapshot.
type fetchPRInfoTool struct {
	client *github.Client
}

// NewFetchPRInfoTool wraps a GitHub client as an agent tool.
func NewFetchPRInfoTool(client *github.Client) Tool {
	return &fetchPRInfoTool{client: client}
}

func (t *fetchPRInfoTool) Name() string { return NameFetchPRInfo }

func (t *fetchPRInfoTool) Description() string {
	return "Fetch information about a GitHub pull request: title, author, state, description, changed files and recent comments. Takes the full PR URL."
}

func (t *fetchPRInfoTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Fetch PR info parameters", map[string]*JSONSchema{
		"pr_url": NewStringSchema("Full GitHub pull request URL, e.g. https://github.com/owner/repo/pull/123"),
	}, []string{"pr_url"})
}

func (t *fetchPRInfoTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	prURL := stringParam(params, "pr_url")
	// Fetch problems are reported inside the string so the agent can
	// read and react to them.
	return Ok(t.client.FetchPRInfo(ctx, prURL)), nil
}

// generateVoiceTool synthesizes a spoken summary.
type generateVoiceTool struct {
	synth *voice.Synthesizer
}

// NewGenerateVoiceTool wraps a voice synthesizer as an agent tool.
func NewGenerateVoiceTool(synth *voice.Synthesizer) Tool {
	return &generateVoiceTool{synth: synth}
}

func (t *generateVoiceTool) Name() string { return NameGenerateVoice }

func (t *generateVoiceTool) Description() string {
	return "Generate a voice-over audio file from text. Returns the URL path of the generated MP3."
}

func (t *generateVoiceTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Generate voice parameters", map[string]*JSONSchema{
		"text":     NewStringSchema("Text to synthesize into speech"),
		"voice_id": NewStringSchema("Voice to use; defaults to the configured voice"),
	}, []string{"text"})
}

func (t *generateVoiceTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	text := stringParam(params, "text")
	url, err := t.synth.Generate(ctx, text, stringParam(params, "voice_id"))
	if err != nil {
		return Ok(fmt.Sprintf("Failed to generate voice-over: %v", err)), nil
	}
	return Ok(fmt.Sprintf("Voice-over generated successfully: %s", url)), nil
}
