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
	"strings"
	"time"

	"github.com/teradata-labs/reef/pkg/broker"
)

// Tool names for the broker messaging surface.
const (
	NameCreateThread      = "create_thread"
	NameSendMessage       = "send_message"
	NameWaitForMentions   = "wait_for_mentions"
	NameListAgents        = "list_agents"
	NameAddParticipant    = "add_participant"
	NameRemoveParticipant = "remove_participant"
	NameCloseThread       = "close_thread"
)

// DefaultMentionWait is the wait window used by wait_for_mentions when
// the decision step does not pass a timeout.
const DefaultMentionWait = 30 * time.Second

// RegisterCommsTools registers the full broker messaging surface for
// one agent channel.
func RegisterCommsTools(registry *Registry, channel *broker.AgentChannel) {
	registry.Register(&createThreadTool{channel: channel})
	registry.Register(&sendMessageTool{channel: channel})
	registry.Register(&waitForMentionsTool{channel: channel})
	registry.Register(&listAgentsTool{channel: channel})
	registry.Register(&addParticipantTool{channel: channel})
	registry.Register(&removeParticipantTool{channel: channel})
	registry.Register(&closeThreadTool{channel: channel})
}

type createThreadTool struct {
	channel *broker.AgentChannel
}

func (t *createThreadTool) Name() string { return NameCreateThread }

func (t *createThreadTool) Description() string {
	return "Create a conversation thread with other agents. Returns the thread id to use with send_message."
}

func (t *createThreadTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Thread creation", map[string]*JSONSchema{
		"participants": NewArraySchema("Agent names to include in the thread", NewStringSchema("Agent name")),
	}, []string{"participants"})
}

func (t *createThreadTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	threadID, err := t.channel.CreateThread(stringSliceParam(params, "participants"))
	if err != nil {
		return Fail("thread_error", err.Error()), nil
	}
	return Ok(fmt.Sprintf("Thread created with id %s", threadID)), nil
}

type sendMessageTool struct {
	channel *broker.AgentChannel
}

func (t *sendMessageTool) Name() string { return NameSendMessage }

func (t *sendMessageTool) Description() string {
	return "Send a message to other agents in a thread. You MUST put the agent names you are talking to in mentions; with no mentions, nobody receives the message."
}

func (t *sendMessageTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Message send", map[string]*JSONSchema{
		"thread_id": NewStringSchema("Thread to send into"),
		"mentions":  NewArraySchema("Agent names that should receive this message", NewStringSchema("Agent name")),
		"content":   NewStringSchema("Message text"),
	}, []string{"thread_id", "content"})
}

func (t *sendMessageTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	mentions := stringSliceParam(params, "mentions")
	msg, err := t.channel.SendMessage(stringParam(params, "thread_id"), mentions, stringParam(params, "content"))
	if err != nil {
		return Fail("send_error", err.Error()), nil
	}
	if len(mentions) == 0 {
		// The broker accepted the message but nobody will see it.
		return Ok(fmt.Sprintf("Message %s sent with no mentions - no agent will receive it", msg.ID)), nil
	}
	return Ok(fmt.Sprintf("Message %s sent to %s", msg.ID, strings.Join(mentions, ", "))), nil
}

type waitForMentionsTool struct {
	channel *broker.AgentChannel
}

func (t *waitForMentionsTool) Name() string { return NameWaitForMentions }

func (t *waitForMentionsTool) Description() string {
	return "Wait for messages from other agents that mention you. Returns the messages received since your last call, or a no-messages notice on timeout."
}

func (t *waitForMentionsTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Mention wait", map[string]*JSONSchema{
		"timeout_seconds": {Type: "number", Description: "Maximum seconds to wait (default 30)"},
	}, nil)
}

func (t *waitForMentionsTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	timeout := DefaultMentionWait
	if v, ok := params["timeout_seconds"]; ok {
		if secs, ok := v.(float64); ok && secs > 0 {
			timeout = time.Duration(secs * float64(time.Second))
		}
	}

	msgs, err := t.channel.WaitForMentions(ctx, timeout)
	if err != nil {
		return Fail("wait_error", err.Error()), nil
	}
	if len(msgs) == 0 {
		return Ok("No new messages mentioning you."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Received %d message(s):\n", len(msgs))
	for _, msg := range msgs {
		fmt.Fprintf(&sb, "[thread %s] %s: %s\n", msg.ThreadID, msg.Sender, msg.Content)
	}
	return Ok(sb.String()), nil
}

type listAgentsTool struct {
	channel *broker.AgentChannel
}

func (t *listAgentsTool) Name() string { return NameListAgents }

func (t *listAgentsTool) Description() string {
	return "List all agents in this session with their availability."
}

func (t *listAgentsTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Agent listing", nil, nil)
}

func (t *listAgentsTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	agents, err := t.channel.ListAgents()
	if err != nil {
		return Fail("list_error", err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Registered agents:\n")
	for _, a := range agents {
		state := "offline"
		if a.Connected {
			state = "available"
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", a.Name, state)
	}
	return Ok(sb.String()), nil
}

type addParticipantTool struct {
	channel *broker.AgentChannel
}

func (t *addParticipantTool) Name() string { return NameAddParticipant }

func (t *addParticipantTool) Description() string {
	return "Add an agent to a thread you participate in."
}

func (t *addParticipantTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Participant add", map[string]*JSONSchema{
		"thread_id":  NewStringSchema("Thread id"),
		"agent_name": NewStringSchema("Agent to add"),
	}, []string{"thread_id", "agent_name"})
}

func (t *addParticipantTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	name := stringParam(params, "agent_name")
	if err := t.channel.AddParticipant(stringParam(params, "thread_id"), name); err != nil {
		return Fail("participant_error", err.Error()), nil
	}
	return Ok(fmt.Sprintf("Added %s to the thread", name)), nil
}

type removeParticipantTool struct {
	channel *broker.AgentChannel
}

func (t *removeParticipantTool) Name() string { return NameRemoveParticipant }

func (t *removeParticipantTool) Description() string {
	return "Remove an agent from a thread you participate in."
}

func (t *removeParticipantTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Participant remove", map[string]*JSONSchema{
		"thread_id":  NewStringSchema("Thread id"),
		"agent_name": NewStringSchema("Agent to remove"),
	}, []string{"thread_id", "agent_name"})
}

func (t *removeParticipantTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	name := stringParam(params, "agent_name")
	if err := t.channel.RemoveParticipant(stringParam(params, "thread_id"), name); err != nil {
		return Fail("participant_error", err.Error()), nil
	}
	return Ok(fmt.Sprintf("Removed %s from the thread", name)), nil
}

type closeThreadTool struct {
	channel *broker.AgentChannel
}

func (t *closeThreadTool) Name() string { return NameCloseThread }

func (t *closeThreadTool) Description() string {
	return "Close a thread. Closed threads reject new messages."
}

func (t *closeThreadTool) InputSchema() *JSONSchema {
	return NewObjectSchema("Thread close", map[string]*JSONSchema{
		"thread_id": NewStringSchema("Thread id"),
	}, []string{"thread_id"})
}

func (t *closeThreadTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	if err := t.channel.CloseThread(stringParam(params, "thread_id")); err != nil {
		return Fail("thread_error", err.Error()), nil
	}
	return Ok("Thread closed"), nil
}

// stringSliceParam reads a string-array parameter, tolerating the
// []interface{} shape JSON decoding produces.
func stringSliceParam(params map[string]interface{}, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
