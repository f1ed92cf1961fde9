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

package broker

import (
	"context"
	"time"
)

// AgentChannel binds one agent identity to its session. It is the
// handle a runtime loop uses for all broker operations; the sender and
// caller identity is always the bound agent.
type AgentChannel struct {
	broker    *Broker
	sessionID string
	agentName string
}

// SessionID returns the bound session id.
func (c *AgentChannel) SessionID() string { return c.sessionID }

// AgentName returns the bound agent identity.
func (c *AgentChannel) AgentName() string { return c.agentName }

// CreateThread opens a thread with the bound agent as creator.
func (c *AgentChannel) CreateThread(participants []string) (string, error) {
	return c.broker.CreateThread(c.sessionID, c.agentName, participants)
}

// SendMessage sends a message into a thread as the bound agent.
func (c *AgentChannel) SendMessage(threadID string, mentions []string, content string) (*Message, error) {
	return c.broker.SendMessage(c.sessionID, threadID, c.agentName, mentions, content)
}

// WaitForMentions waits for messages mentioning the bound agent.
func (c *AgentChannel) WaitForMentions(ctx context.Context, timeout time.Duration) ([]*Message, error) {
	return c.broker.WaitForMentions(ctx, c.sessionID, c.agentName, timeout)
}

// AddParticipant adds an agent to a thread the bound agent is in.
func (c *AgentChannel) AddParticipant(threadID, agentName string) error {
	return c.broker.AddParticipant(c.sessionID, threadID, c.agentName, agentName)
}

// RemoveParticipant removes an agent from a thread the bound agent is in.
func (c *AgentChannel) RemoveParticipant(threadID, agentName string) error {
	return c.broker.RemoveParticipant(c.sessionID, threadID, c.agentName, agentName)
}

// CloseThread closes a thread the bound agent is a participant of.
func (c *AgentChannel) CloseThread(threadID string) error {
	return c.broker.CloseThread(c.sessionID, threadID, c.agentName)
}

// ListAgents lists all agents registered in the bound session.
func (c *AgentChannel) ListAgents() ([]AgentDescriptor, error) {
	return c.broker.ListAgents(c.sessionID)
}
