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

package event

import (
	"sync"
	"sync/atomic"

	"github.com/teradata-labs/reef/pkg/broker"
	"go.uber.org/zap"
)

// DefaultConnBufferSize is the per-connection event buffer size.
const DefaultConnBufferSize = 100

// Conn is one open SSE consumer. Events arrive on C in publish order.
type Conn struct {
	C chan Event
}

// Store holds the append-only event log, the open-connection registry
// and the per-session user-message queues. It is constructed at process
// start and injected into the server and tool bridge; there is no
// ambient global instance.
//
// Sessions, queues and log entries are retained for the process
// lifetime. That is acceptable for the one-request-per-session
// deployment model this was built for; a long-running multi-tenant
// deployment needs an eviction or TTL pass added here.
type Store struct {
	mu sync.RWMutex

	events      []Event
	connections map[*Conn]struct{}
	sessions    map[string]broker.SessionInfo

	// Per-session FIFO of pending user requests. Single consumer per
	// session by construction (the session's orchestrator).
	userQueues map[string][]string

	logger *zap.Logger

	// Metrics (atomic counters)
	totalPublished atomic.Int64
	totalDropped   atomic.Int64
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		connections: make(map[*Conn]struct{}),
		sessions:    make(map[string]broker.SessionInfo),
		userQueues:  make(map[string][]string),
		logger:      logger,
	}
}

// AddConnection registers a new SSE consumer and returns its handle.
func (s *Store) AddConnection() *Conn {
	conn := &Conn{C: make(chan Event, DefaultConnBufferSize)}

	s.mu.Lock()
	s.connections[conn] = struct{}{}
	s.mu.Unlock()

	return conn
}

// RemoveConnection unregisters a consumer. Safe to call twice.
func (s *Store) RemoveConnection(conn *Conn) {
	s.mu.Lock()
	delete(s.connections, conn)
	s.mu.Unlock()
}

// Publish appends an event to the log and fans it out to every open
// connection. Fan-out is non-blocking: a consumer whose buffer is full
// misses the event (counted as dropped) rather than stalling the
// publisher or other consumers. The sends happen under the same lock
// as the append so every connection sees events in log order even
// with concurrent publishers.
func (s *Store) Publish(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	dropped := 0
	connCount := len(s.connections)
	for conn := range s.connections {
		select {
		case conn.C <- ev:
		default:
			dropped++
		}
	}
	s.mu.Unlock()

	s.totalPublished.Add(1)
	if dropped > 0 {
		s.totalDropped.Add(int64(dropped))
		s.logger.Warn("event dropped for slow consumers",
			zap.String("type", string(ev.Type)),
			zap.Int("dropped", dropped))
	}

	s.logger.Debug("event published",
		zap.String("type", string(ev.Type)),
		zap.Int("connections", connCount))
}

// CreateSession records session info and initializes its user queue.
func (s *Store) CreateSession(info broker.SessionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[info.SessionID] = info
	if _, ok := s.userQueues[info.SessionID]; !ok {
		s.userQueues[info.SessionID] = []string{}
	}
}

// Session returns the recorded info for a session id.
func (s *Store) Session(sessionID string) (broker.SessionInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.sessions[sessionID]
	return info, ok
}

// PushUserMessage appends a user request to a session's FIFO queue.
func (s *Store) PushUserMessage(sessionID, message string) {
	s.mu.Lock()
	s.userQueues[sessionID] = append(s.userQueues[sessionID], message)
	s.mu.Unlock()

	s.logger.Info("user message queued",
		zap.String("session_id", sessionID))
}

// PopUserMessage removes and returns the oldest queued user request for
// a session. The second return is false when the queue is empty; an
// empty queue is not an error.
func (s *Store) PopUserMessage(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.userQueues[sessionID]
	if len(queue) == 0 {
		return "", false
	}
	msg := queue[0]
	s.userQueues[sessionID] = queue[1:]
	return msg, true
}

// ActiveConnections returns the number of open SSE consumers.
func (s *Store) ActiveConnections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// TotalEvents returns the length of the event log.
func (s *Store) TotalEvents() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
