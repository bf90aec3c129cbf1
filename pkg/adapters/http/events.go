package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
)

// allActions is the topic receiving every outcome.
const allActions = ""

// Event is the SSE payload describing one finished invocation.
type Event struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	DurationMs float64   `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // action -> set of channels
}

// NewStreamManager creates a manager with no subscribers.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for outcomes of action, or of every action
// when action is empty. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(action string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[action]; !ok {
		sm.subscribers[action] = make(map[chan<- string]struct{})
	}
	sm.subscribers[action][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[action]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, action)
			}
		}
	}
}

// Broadcast sends msg to the subscribers of topic.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// Publish broadcasts a finished invocation to its action's subscribers and
// to the subscribers of every action.
func (sm *StreamManager) Publish(e *domain.InvocationEvent) {
	payload, err := json.Marshal(Event{
		ID:         e.ID,
		Action:     e.Action,
		Outcome:    e.Outcome,
		DurationMs: float64(e.Duration.Microseconds()) / 1000,
		Timestamp:  e.Timestamp.UTC(),
	})
	if err != nil {
		slog.Error("SSE: event encode failed", "error", err)
		return
	}
	sm.Broadcast(allActions, string(payload))
	if e.Action != allActions {
		sm.Broadcast(e.Action, string(payload))
	}
}

// Hooks returns invocation hooks publishing every outcome.
func (sm *StreamManager) Hooks() domain.InvocationHooks {
	return domain.InvocationHooks{
		OnResult: func(_ context.Context, e *domain.InvocationEvent) {
			sm.Publish(e)
		},
	}
}

// SubscribeEvents handles the GET /v1/events request (SSE).
// ?action= restricts the stream to one action.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	action := r.URL.Query().Get("action")
	s.logger.Info("SSE: Subscribing to invocation outcomes", "action", action)

	ch, cancel := s.streams.Subscribe(action)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: invocation\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
