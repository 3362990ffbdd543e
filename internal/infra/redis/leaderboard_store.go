package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/domain"
)

const leaderboardKey = "trivia:leaderboard"

// LeaderboardStore keeps the whole board as one serialized JSON blob under a
// single fixed key, matching the persisted form of the file backend. Save is
// read-modify-write; a single active writer is assumed.
type LeaderboardStore struct {
	client *redis.Client
}

func NewLeaderboardStore(client *redis.Client) *LeaderboardStore {
	return &LeaderboardStore{client: client}
}

func (s *LeaderboardStore) List(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries := s.read(ctx)
	domain.RankEntries(entries)
	return entries, nil
}

func (s *LeaderboardStore) Save(ctx context.Context, entry domain.LeaderboardEntry) error {
	entries := append(s.read(ctx), entry)
	domain.RankEntries(entries)
	if len(entries) > domain.MaxLeaderboardSize {
		entries = entries[:domain.MaxLeaderboardSize]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, leaderboardKey, data, 0).Err()
}

func (s *LeaderboardStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, leaderboardKey).Err()
}

func (s *LeaderboardStore) read(ctx context.Context) []domain.LeaderboardEntry {
	data, err := s.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("leaderboard blob unreadable, treating as empty")
		}
		return nil
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logrus.WithError(err).Warn("leaderboard blob corrupt, treating as empty")
		return nil
	}
	return entries
}
