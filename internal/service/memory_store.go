package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// In-memory implementations used when no Redis is configured (single-process
// development) and in tests. Events published on the memory bus are delivered
// synchronously on the publisher's goroutine.

type memoryTokenStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]time.Time
}

func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

func (s *memoryTokenStore) Store(ctx context.Context, identityID uuid.UUID, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionKey(identityID, sessionID)] = s.now().Add(ttl)
	return nil
}

func (s *memoryTokenStore) Exists(ctx context.Context, identityID uuid.UUID, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(identityID, sessionID)
	expiresAt, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(s.now()) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

func (s *memoryTokenStore) Delete(ctx context.Context, identityID uuid.UUID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionKey(identityID, sessionID))
	return nil
}

func (s *memoryTokenStore) DeleteAll(ctx context.Context, identityID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := RedisSessionKeyPrefix + identityID.String() + ":"
	deleted := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

type memorySessionEventBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(entity.SessionEvent)
}

func NewMemorySessionEventBus() SessionEventBus {
	return &memorySessionEventBus{handlers: make(map[int]func(entity.SessionEvent))}
}

func (b *memorySessionEventBus) Publish(ctx context.Context, event entity.SessionEvent) error {
	b.mu.RLock()
	handlers := make([]func(entity.SessionEvent), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (b *memorySessionEventBus) Subscribe(ctx context.Context, handler func(entity.SessionEvent)) (func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}, nil
}

type memoryClientSessionStore struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
}

func NewMemoryClientSessionStore() ClientSessionStore {
	return &memoryClientSessionStore{sessions: make(map[string]entity.Session)}
}

func (s *memoryClientSessionStore) Load(ctx context.Context, clientID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[clientID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *memoryClientSessionStore) Save(ctx context.Context, clientID string, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[clientID] = *session
	return nil
}

func (s *memoryClientSessionStore) Clear(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, clientID)
	return nil
}
