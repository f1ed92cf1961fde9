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

// Package broker implements the session registry and mention-addressed
// message bus that agents collaborate over. Each session is an isolated
// agent graph with its own threads and message log; delivery is strictly
// by mention. A message sent with an empty mentions list is appended to
// the thread log but delivered to nobody — callers that forget to
// mention lose the message silently. That rule is load-bearing for the
// agent protocol and is covered by a regression test.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultInboxSize is the default buffer size for per-agent mention inboxes.
const DefaultInboxSize = 100

// ErrUnknownAgent is returned when an agent name was not part of the
// session's registered graph.
var ErrUnknownAgent = errors.New("unknown agent")

// AgentSpec declares one agent in a session graph.
type AgentSpec struct {
	// Name is the agent identity, unique within the session.
	Name string

	// ToolAccess lists the bridge tools this agent may invoke.
	ToolAccess []string

	// Options carries per-agent configuration (API keys, provider URLs,
	// model ids). Opaque to the broker.
	Options map[string]string
}

// SessionSpec is the agent graph request used to create a session.
type SessionSpec struct {
	ApplicationID string
	PrivacyKey    string
	Agents        []AgentSpec
}

// SessionInfo is returned on session creation.
type SessionInfo struct {
	SessionID     string
	ApplicationID string
	PrivacyKey    string
	CreatedAt     time.Time
}

// AgentDescriptor describes a registered agent, with a liveness flag.
type AgentDescriptor struct {
	Name       string
	ToolAccess []string
	Connected  bool
}

// Message is one entry in a session's message log.
type Message struct {
	ID        string
	ThreadID  string
	Sender    string
	Mentions  []string
	Content   string
	CreatedAt time.Time
}

// ThreadState is the lifecycle state of a thread.
type ThreadState int32

const (
	ThreadStateActive ThreadState = iota
	ThreadStateClosed
)

// thread groups messages between a creator and a set of participants.
type thread struct {
	id           string
	creator      string
	participants map[string]struct{}
	state        ThreadState
	messages     []*Message
}

// agentState tracks one registered agent within a session.
type agentState struct {
	spec      AgentSpec
	connected bool

	// inbox receives messages that mention this agent. Delivery is
	// non-blocking: if the inbox is full the message is dropped and
	// counted, matching the bus contract of never blocking a sender.
	inbox chan *Message
}

// session is one isolated agent graph plus its message log.
type session struct {
	mu      sync.RWMutex
	info    SessionInfo
	agents  map[string]*agentState
	threads map[string]*thread
	log     []*Message
}

// Broker holds sessions and routes mention-addressed messages.
// All operations are safe for concurrent use by multiple goroutines.
type Broker struct {
	mu       sync.RWMutex
	sessions map[string]*session

	logger *zap.Logger

	// Metrics (atomic counters)
	totalSent      atomic.Int64
	totalDelivered atomic.Int64
	totalDropped   atomic.Int64

	// Lifecycle
	closed atomic.Bool
}

// New creates a broker with no sessions.
func New(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		sessions: make(map[string]*session),
		logger:   logger,
	}
}

// CreateSession validates an agent graph and registers a new session.
// Fails if the spec is malformed (no agents, duplicate or empty names).
func (b *Broker) CreateSession(spec SessionSpec) (*SessionInfo, error) {
	if b.closed.Load() {
		return nil, fmt.Errorf("broker is closed")
	}
	if len(spec.Agents) == 0 {
		return nil, fmt.Errorf("session creation failed: agent graph is empty")
	}

	agents := make(map[string]*agentState, len(spec.Agents))
	for _, a := range spec.Agents {
		if a.Name == "" {
			return nil, fmt.Errorf("session creation failed: agent with empty name")
		}
		if _, dup := agents[a.Name]; dup {
			return nil, fmt.Errorf("session creation failed: duplicate agent name %q", a.Name)
		}
		agents[a.Name] = &agentState{
			spec:  a,
			inbox: make(chan *Message, DefaultInboxSize),
		}
	}

	info := SessionInfo{
		SessionID:     uuid.NewString(),
		ApplicationID: spec.ApplicationID,
		PrivacyKey:    spec.PrivacyKey,
		CreatedAt:     time.Now(),
	}

	b.mu.Lock()
	b.sessions[info.SessionID] = &session{
		info:    info,
		agents:  agents,
		threads: make(map[string]*thread),
	}
	b.mu.Unlock()

	b.logger.Info("session created",
		zap.String("session_id", info.SessionID),
		zap.String("application_id", info.ApplicationID),
		zap.Int("agents", len(agents)))

	return &info, nil
}

// Connect binds a runtime loop to its identity within a session and
// marks the agent as live. Fails if the agent name was not part of the
// registered graph.
func (b *Broker) Connect(sessionID, agentName string) (*AgentChannel, error) {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state, ok := sess.agents[agentName]
	if !ok {
		return nil, fmt.Errorf("%w: %q in session %s", ErrUnknownAgent, agentName, sessionID)
	}
	state.connected = true

	b.logger.Info("agent connected",
		zap.String("session_id", sessionID),
		zap.String("agent", agentName))

	return &AgentChannel{
		broker:    b,
		sessionID: sessionID,
		agentName: agentName,
	}, nil
}

// ListAgents returns the descriptors of all agents registered in a
// session, with their liveness flag.
func (b *Broker) ListAgents(sessionID string) ([]AgentDescriptor, error) {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	descriptors := make([]AgentDescriptor, 0, len(sess.agents))
	for _, state := range sess.agents {
		descriptors = append(descriptors, AgentDescriptor{
			Name:       state.spec.Name,
			ToolAccess: state.spec.ToolAccess,
			Connected:  state.connected,
		})
	}
	return descriptors, nil
}

// CreateThread opens a new thread with the given creator and
// participants. The creator is always a participant.
func (b *Broker) CreateThread(sessionID, creator string, participants []string) (string, error) {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, ok := sess.agents[creator]; !ok {
		return "", fmt.Errorf("%w: %q in session %s", ErrUnknownAgent, creator, sessionID)
	}

	members := map[string]struct{}{creator: {}}
	for _, p := range participants {
		if _, ok := sess.agents[p]; !ok {
			return "", fmt.Errorf("%w: %q in session %s", ErrUnknownAgent, p, sessionID)
		}
		members[p] = struct{}{}
	}

	t := &thread{
		id:           uuid.NewString(),
		creator:      creator,
		participants: members,
		state:        ThreadStateActive,
	}
	sess.threads[t.id] = t

	b.logger.Debug("thread created",
		zap.String("session_id", sessionID),
		zap.String("thread_id", t.id),
		zap.String("creator", creator),
		zap.Int("participants", len(members)))

	return t.id, nil
}

// AddParticipant adds an agent to a thread. Any current member may do this.
func (b *Broker) AddParticipant(sessionID, threadID, caller, agentName string) error {
	return b.updateParticipants(sessionID, threadID, caller, agentName, true)
}

// RemoveParticipant removes an agent from a thread.
func (b *Broker) RemoveParticipant(sessionID, threadID, caller, agentName string) error {
	return b.updateParticipants(sessionID, threadID, caller, agentName, false)
}

func (b *Broker) updateParticipants(sessionID, threadID, caller, agentName string, add bool) error {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	t, ok := sess.threads[threadID]
	if !ok {
		return fmt.Errorf("unknown thread %s in session %s", threadID, sessionID)
	}
	if t.state == ThreadStateClosed {
		return fmt.Errorf("thread %s is closed", threadID)
	}
	if _, member := t.participants[caller]; !member {
		return fmt.Errorf("agent %q is not a participant of thread %s", caller, threadID)
	}
	if add {
		if _, ok := sess.agents[agentName]; !ok {
			return fmt.Errorf("%w: %q in session %s", ErrUnknownAgent, agentName, sessionID)
		}
		t.participants[agentName] = struct{}{}
	} else {
		delete(t.participants, agentName)
	}
	return nil
}

// CloseThread transitions a thread to closed. Closed threads reject
// new messages and participant changes.
func (b *Broker) CloseThread(sessionID, threadID, caller string) error {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	t, ok := sess.threads[threadID]
	if !ok {
		return fmt.Errorf("unknown thread %s in session %s", threadID, sessionID)
	}
	if _, member := t.participants[caller]; !member {
		return fmt.Errorf("agent %q is not a participant of thread %s", caller, threadID)
	}
	t.state = ThreadStateClosed
	return nil
}

// SendMessage appends a message to a thread and delivers it to every
// mentioned participant's inbox. Delivery is non-blocking: a full inbox
// drops the message for that recipient rather than stalling the sender.
// An empty mentions list appends to the log and delivers nothing.
func (b *Broker) SendMessage(sessionID, threadID, sender string, mentions []string, content string) (*Message, error) {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	t, ok := sess.threads[threadID]
	if !ok {
		return nil, fmt.Errorf("unknown thread %s in session %s", threadID, sessionID)
	}
	if t.state == ThreadStateClosed {
		return nil, fmt.Errorf("thread %s is closed", threadID)
	}
	if _, member := t.participants[sender]; !member {
		return nil, fmt.Errorf("agent %q is not a participant of thread %s", sender, threadID)
	}

	msg := &Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Sender:    sender,
		Mentions:  mentions,
		Content:   content,
		CreatedAt: time.Now(),
	}
	t.messages = append(t.messages, msg)
	sess.log = append(sess.log, msg)
	b.totalSent.Add(1)

	delivered := 0
	dropped := 0
	seen := make(map[string]struct{}, len(mentions))
	for _, name := range mentions {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		state, ok := sess.agents[name]
		if !ok {
			b.logger.Warn("mention of unregistered agent skipped",
				zap.String("session_id", sessionID),
				zap.String("mention", name))
			continue
		}
		if _, member := t.participants[name]; !member {
			b.logger.Warn("mention of non-participant skipped",
				zap.String("thread_id", threadID),
				zap.String("mention", name))
			continue
		}

		select {
		case state.inbox <- msg:
			delivered++
		default:
			// Inbox full - drop rather than block the sender.
			dropped++
		}
	}
	b.totalDelivered.Add(int64(delivered))
	b.totalDropped.Add(int64(dropped))

	b.logger.Debug("message sent",
		zap.String("session_id", sessionID),
		zap.String("thread_id", threadID),
		zap.String("sender", sender),
		zap.Strings("mentions", mentions),
		zap.Int("delivered", delivered),
		zap.Int("dropped", dropped))

	return msg, nil
}

// WaitForMentions blocks until at least one message mentioning the
// agent arrives or the timeout elapses, returning all messages queued
// at that point. Returns an empty slice on timeout so the calling loop
// can re-check its own budget. Only messages appended since the
// previous call are observed.
func (b *Broker) WaitForMentions(ctx context.Context, sessionID, agentName string, timeout time.Duration) ([]*Message, error) {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	state, ok := sess.agents[agentName]
	sess.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q in session %s", ErrUnknownAgent, agentName, sessionID)
	}

	// Drain whatever is already queued.
	msgs := drain(state.inbox, nil)
	if len(msgs) > 0 {
		return msgs, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-state.inbox:
		return drain(state.inbox, []*Message{msg}), nil
	case <-timer.C:
		return []*Message{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drain appends all immediately-available messages without blocking.
func drain(inbox <-chan *Message, msgs []*Message) []*Message {
	for {
		select {
		case msg := <-inbox:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// SessionLog returns a copy of the full message log for a session.
func (b *Broker) SessionLog(sessionID string) ([]*Message, error) {
	sess, err := b.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	out := make([]*Message, len(sess.log))
	copy(out, sess.log)
	return out, nil
}

// Close shuts down the broker. Sessions are discarded; pending inbox
// messages are dropped.
func (b *Broker) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil // Already closed
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = make(map[string]*session)

	b.logger.Info("broker closed",
		zap.Int64("total_sent", b.totalSent.Load()),
		zap.Int64("total_delivered", b.totalDelivered.Load()),
		zap.Int64("total_dropped", b.totalDropped.Load()))

	return nil
}

func (b *Broker) getSession(sessionID string) (*session, error) {
	if b.closed.Load() {
		return nil, fmt.Errorf("broker is closed")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	sess, ok := b.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}
	return sess, nil
}
