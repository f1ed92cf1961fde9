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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/reef/pkg/tool"
)

func TestAllRoles(t *testing.T) {
	roles := AllRoles()
	require.Len(t, roles, 4)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
		assert.NotEmpty(t, r.SystemPrompt, "role %s has no system prompt", r.Name)
		assert.NotEmpty(t, r.ToolAccess, "role %s has no tools", r.Name)
	}
	assert.Equal(t, []string{OrchestratorName, SummarizerName, RiskName, VoiceName}, names)
}

func TestRoleToolAccess(t *testing.T) {
	// Only the orchestrator talks to the frontend.
	orch := OrchestratorRole()
	assert.Contains(t, orch.ToolAccess, tool.NameWebhookCallback)
	assert.Contains(t, orch.ToolAccess, tool.NameSendCompletion)
	assert.Contains(t, orch.ToolAccess, tool.NameSendError)
	assert.NotContains(t, orch.ToolAccess, tool.NameFetchPRInfo)
	assert.NotContains(t, orch.ToolAccess, tool.NameGenerateVoice)

	for _, r := range []Role{SummarizerRole(), RiskRole()} {
		assert.Contains(t, r.ToolAccess, tool.NameFetchPRInfo, r.Name)
		assert.NotContains(t, r.ToolAccess, tool.NameWebhookCallback, r.Name)
		assert.NotContains(t, r.ToolAccess, tool.NameGenerateVoice, r.Name)
	}

	v := VoiceRole()
	assert.Contains(t, v.ToolAccess, tool.NameGenerateVoice)
	assert.NotContains(t, v.ToolAccess, tool.NameFetchPRInfo)
	assert.NotContains(t, v.ToolAccess, tool.NameWebhookCallback)

	// Everyone gets the full messaging surface.
	for _, r := range AllRoles() {
		for _, name := range []string{
			tool.NameCreateThread,
			tool.NameSendMessage,
			tool.NameWaitForMentions,
			tool.NameListAgents,
		} {
			assert.Contains(t, r.ToolAccess, name, "%s missing %s", r.Name, name)
		}
	}
}
