// Package file persists the leaderboard and the sound preference as single
// JSON blobs on local disk, one file per key.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore keeps every entry in one JSON array blob at a fixed path.
// Reads tolerate missing or corrupt data by treating it as an empty board;
// writes are plain read-modify-write with no protection against concurrent
// writers outside this process.
type LeaderboardStore struct {
	path string
}

func NewLeaderboardStore(path string) *LeaderboardStore {
	return &LeaderboardStore{path: path}
}

func (s *LeaderboardStore) List(_ context.Context) ([]domain.LeaderboardEntry, error) {
	entries := s.read()
	domain.RankEntries(entries)
	return entries, nil
}

func (s *LeaderboardStore) Save(_ context.Context, entry domain.LeaderboardEntry) error {
	entries := append(s.read(), entry)
	domain.RankEntries(entries)
	if len(entries) > domain.MaxLeaderboardSize {
		entries = entries[:domain.MaxLeaderboardSize]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *LeaderboardStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// read loads the blob, mapping missing or unparseable data to an empty board.
func (s *LeaderboardStore) read() []domain.LeaderboardEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logrus.WithError(err).WithField("path", s.path).Warn("leaderboard blob unreadable, treating as empty")
		}
		return nil
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logrus.WithError(err).WithField("path", s.path).Warn("leaderboard blob corrupt, treating as empty")
		return nil
	}
	return entries
}
