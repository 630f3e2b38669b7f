package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/halden-bio/catalyst/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels

	logger *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for a session. The returned cancel func
// must be called when the client disconnects.
func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast fans a message out to every subscriber of the session.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[sessionID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
			}
		}
	}
}

// BroadcastDiff computes the delta between two snapshots and, when it is
// non-empty, broadcasts it as JSON.
func (sm *StreamManager) BroadcastDiff(before, after *domain.State) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	bytes, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: Diff marshal failed", "session_id", after.SessionID, "err", err)
		return
	}
	sm.Broadcast(after.SessionID, string(bytes))
}
