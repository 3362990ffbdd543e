package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore keeps entries in process memory. Useful for tests and
// ephemeral runs; it applies the same ranking rule and size cap as the
// persistent backends.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{}
}

func (s *LeaderboardStore) List(_ context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LeaderboardEntry, len(s.entries))
	copy(out, s.entries)
	domain.RankEntries(out)
	return out, nil
}

func (s *LeaderboardStore) Save(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	domain.RankEntries(s.entries)
	if len(s.entries) > domain.MaxLeaderboardSize {
		s.entries = s.entries[:domain.MaxLeaderboardSize]
	}
	return nil
}

func (s *LeaderboardStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
