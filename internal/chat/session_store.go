package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dondo0936/portfolio-assistant/internal/schedule"
)

// SessionState is the per-conversation booking state shared across
// instances: the slots last shown to the visitor, in display order, and
// any details already collected.
type SessionState struct {
	PresentedSlots []schedule.Slot `json:"presented_slots"`
	ChosenSlot     int             `json:"chosen_slot,omitempty"` // 1-based index into PresentedSlots
	Name           string          `json:"name,omitempty"`
	Email          string          `json:"email,omitempty"`
	MeetingType    string          `json:"meeting_type,omitempty"`
}

// SessionStore persists SessionState keyed by session ID.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*SessionState, error)
	Put(ctx context.Context, sessionID string, state *SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps session state in Redis with a TTL so stale
// booking flows expire on their own.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*SessionState, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &SessionState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chat: get session: %w", err)
	}
	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("chat: decode session: %w", err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, state *SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("chat: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("chat: put session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("chat: delete session: %w", err)
	}
	return nil
}

// MemorySessionStore is a single-process fallback used when Redis is
// not configured.
type MemorySessionStore struct {
	mu     sync.RWMutex
	states map[string]SessionState
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{states: make(map[string]SessionState)}
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[sessionID]; ok {
		return &state, nil
	}
	return &SessionState{}, nil
}

func (s *MemorySessionStore) Put(ctx context.Context, sessionID string, state *SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = *state
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}
