package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore persists entries in Postgres, ranked in SQL.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

func (s *LeaderboardStore) List(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, score, category, difficulty, elapsed_ms, recorded_at
		FROM leaderboard_entries
		ORDER BY score DESC, elapsed_ms ASC, name ASC
		LIMIT $1`, domain.MaxLeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var (
			entry      domain.LeaderboardEntry
			difficulty string
			recordedAt time.Time
		)
		if err := rows.Scan(&entry.Name, &entry.Score, &entry.Category, &difficulty, &entry.ElapsedMillis, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entry.Difficulty = domain.Difficulty(difficulty)
		entry.Date = recordedAt
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *LeaderboardStore) Save(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leaderboard_entries (name, score, category, difficulty, elapsed_ms, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Name, entry.Score, entry.Category, string(entry.Difficulty), entry.ElapsedMillis, entry.Date)
	if err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}

	// Evict everything below the cap, keeping the top-ranked rows.
	_, err = s.pool.Exec(ctx, `
		DELETE FROM leaderboard_entries WHERE id NOT IN (
			SELECT id FROM leaderboard_entries
			ORDER BY score DESC, elapsed_ms ASC, name ASC
			LIMIT $1
		)`, domain.MaxLeaderboardSize)
	if err != nil {
		return fmt.Errorf("trim leaderboard: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM leaderboard_entries`)
	if err != nil {
		return fmt.Errorf("clear leaderboard: %w", err)
	}
	return nil
}
