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

// Package agent runs the decision loops of the PR analysis agents.
// Each agent is a Role (name, system prompt, tool access) driven by a
// Runtime that alternates stimulus, LLM decision and tool execution.
package agent

import (
	"github.com/teradata-labs/reef/pkg/tool"
)

// Canonical agent names. Specialists are addressed by these names in
// thread mentions.
const (
	OrchestratorName = "orchestrator-agent"
	SummarizerName   = "summarizer-agent"
	RiskName         = "risk-agent"
	VoiceName        = "voice-agent"
)

// Role describes one agent: its identity, its system prompt and the
// tools it is allowed to call.
type Role struct {
	Name         string
	SystemPrompt string
	ToolAccess   []string
}

// commsToolNames are the messaging tools every agent gets.
var commsToolNames = []string{
	tool.NameCreateThread,
	tool.NameSendMessage,
	tool.NameWaitForMentions,
	tool.NameListAgents,
	tool.NameAddParticipant,
	tool.NameRemoveParticipant,
	tool.NameCloseThread,
}

func withComms(names ...string) []string {
	out := make([]string, 0, len(names)+len(commsToolNames))
	out = append(out, names...)
	out = append(out, commsToolNames...)
	return out
}

// OrchestratorRole is the user-facing coordinator. Only it reports
// results back to the frontend.
func OrchestratorRole() Role {
	return Role{
		Name:         OrchestratorName,
		SystemPrompt: orchestratorPrompt,
		ToolAccess: withComms(
			tool.NameSendActionUpdate,
			tool.NameSendCompletion,
			tool.NameSendError,
			tool.NameWebhookCallback,
		),
	}
}

// SummarizerRole analyzes pull requests and produces summaries.
func SummarizerRole() Role {
	return Role{
		Name:         SummarizerName,
		SystemPrompt: summarizerPrompt,
		ToolAccess: withComms(
			tool.NameSendActionUpdate,
			tool.NameFetchPRInfo,
		),
	}
}

// RiskRole assesses pull requests for security and quality risks.
func RiskRole() Role {
	return Role{
		Name:         RiskName,
		SystemPrompt: riskPrompt,
		ToolAccess: withComms(
			tool.NameSendActionUpdate,
			tool.NameFetchPRInfo,
		),
	}
}

// VoiceRole turns summary text into spoken audio.
func VoiceRole() Role {
	return Role{
		Name:         VoiceName,
		SystemPrompt: voicePrompt,
		ToolAccess: withComms(
			tool.NameSendActionUpdate,
			tool.NameGenerateVoice,
		),
	}
}

// AllRoles returns the four agents of the PR analysis graph.
func AllRoles() []Role {
	return []Role{
		OrchestratorRole(),
		SummarizerRole(),
		RiskRole(),
		VoiceRole(),
	}
}
