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
package server

import (
	"github.com/teradata-labs/reef/pkg/agent"
	"github.com/teradata-labs/reef/pkg/broker"
	"github.com/teradata-labs/reef/pkg/config"
)

// DefaultGraph builds the four-agent session spec for PR analysis:
// the orchestrator plus the summarizer, risk and voice specialists.
func DefaultGraph(cfg *config.Config) broker.SessionSpec {
	roles := agent.AllRoles()
	agents := make([]broker.AgentSpec, 0, len(roles))
	for _, role := range roles {
		agents = append(agents, broker.AgentSpec{
			Name:       role.Name,
			ToolAccess: role.ToolAccess,
		})
	}
	return broker.SessionSpec{
		ApplicationID: cfg.App.ID,
		PrivacyKey:    cfg.App.PrivacyKey,
		Agents:        agents,
	}
}
