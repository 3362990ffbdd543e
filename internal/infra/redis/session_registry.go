package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Sessions themselves stay in-process (their timers and subscriber channels
// cannot cross a network boundary); Redis holds best-effort liveness markers
// so operators can see active sessions across instances.
type SessionRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Put(s *app.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(s.ID()), "1", r.ttl).Err()
}

func (r *SessionRegistry) Get(id string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	_ = r.client.Del(context.Background(), r.key(id)).Err()
}

func (r *SessionRegistry) key(id string) string {
	return "trivia:session:" + id
}
