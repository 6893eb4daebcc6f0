package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"charterhub/models"
)

const sessionKeyPrefix = "dialogue:"

// SessionStore is the expiring key/value storage behind in-progress
// conversations. Any backing satisfies it as long as per-key single-writer
// ordering is preserved by the caller.
type SessionStore interface {
	// Get returns the session, or (nil, nil) when the key is unknown or
	// has expired.
	Get(ctx context.Context, sessionID string) (*models.DialogueSession, error)
	Put(ctx context.Context, session *models.DialogueSession, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// redisSessionStore keeps sessions in Redis with a per-write TTL.
type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore returns a SessionStore over the given Redis client.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (*models.DialogueSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogue session: %w", err)
	}
	var session models.DialogueSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse dialogue session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) Put(ctx context.Context, session *models.DialogueSession, ttl time.Duration) error {
	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal dialogue session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.SessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store dialogue session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// memorySessionStore is an in-process SessionStore with lazy expiry,
// used in tests and single-node deployments without Redis.
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session   models.DialogueSession
	expiresAt time.Time
}

// NewMemorySessionStore returns an in-memory SessionStore.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]memoryEntry)}
}

func (s *memorySessionStore) Get(ctx context.Context, sessionID string) (*models.DialogueSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	session := entry.session
	return &session, nil
}

func (s *memorySessionStore) Put(ctx context.Context, session *models.DialogueSession, ttl time.Duration) error {
	session.UpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = memoryEntry{
		session:   *session,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *memorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
