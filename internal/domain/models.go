package domain

import (
	"sort"
	"strings"
	"time"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// MaxNameLength caps player names on leaderboard entries.
const MaxNameLength = 20

// MaxLeaderboardSize caps how many entries the store keeps persisted.
const MaxLeaderboardSize = 100

// Difficulty selects the question difficulty and the score multiplier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a raw difficulty string.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", ErrInvalidDifficulty
}

// Multiplier returns the score multiplier for the difficulty.
func (d Difficulty) Multiplier() int {
	switch d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

// Points computes the score for a correct answer: a flat base plus a bonus for
// every full 3 seconds left on the countdown, scaled by difficulty.
func Points(d Difficulty, remainingSeconds int) int {
	if remainingSeconds < 0 {
		remainingSeconds = 0
	}
	return (10 + remainingSeconds/3) * d.Multiplier()
}

// Question is one multiple-choice question. Immutable once produced by a
// provider; CorrectIndex is always a valid index into Options.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Validate checks the provider contract: non-empty text, exactly four
// non-empty options, and an in-bounds correct index.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrMalformedQuestion
	}
	if len(q.Options) != OptionCount {
		return ErrMalformedQuestion
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return ErrMalformedQuestion
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ErrMalformedQuestion
	}
	return nil
}

// LeaderboardEntry is one recorded quiz result. Immutable after creation.
type LeaderboardEntry struct {
	Name          string     `json:"name"`
	Score         int        `json:"score"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	ElapsedMillis int64      `json:"elapsedMillis"`
	Date          time.Time  `json:"date"`
}

// NewLeaderboardEntry builds an entry from a finished session result,
// rejecting blank and over-long names.
func NewLeaderboardEntry(name, category string, difficulty Difficulty, score int, elapsed time.Duration, date time.Time) (LeaderboardEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LeaderboardEntry{}, ErrBlankName
	}
	if len(name) > MaxNameLength {
		return LeaderboardEntry{}, ErrNameTooLong
	}
	return LeaderboardEntry{
		Name:          name,
		Score:         score,
		Category:      category,
		Difficulty:    difficulty,
		ElapsedMillis: elapsed.Milliseconds(),
		Date:          date,
	}, nil
}

// RankEntries sorts entries in place by the ranking rule: score descending,
// then elapsed time ascending (faster wins ties), then name for a total order.
func RankEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].ElapsedMillis != entries[j].ElapsedMillis {
			return entries[i].ElapsedMillis < entries[j].ElapsedMillis
		}
		return entries[i].Name < entries[j].Name
	})
}
