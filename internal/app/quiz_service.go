package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/domain"
)

// QuestionProvider supplies question content for a category and difficulty.
// Implementations must fail rather than return malformed questions; the
// service never retries or caches a fetch.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, category string, difficulty domain.Difficulty) ([]domain.Question, error)
}

// LeaderboardStore persists and ranks score entries.
type LeaderboardStore interface {
	List(ctx context.Context) ([]domain.LeaderboardEntry, error)
	Save(ctx context.Context, entry domain.LeaderboardEntry) error
	Clear(ctx context.Context) error
}

// SessionRegistry tracks live sessions by ID.
type SessionRegistry interface {
	Put(s *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// QuizService contains the quiz use cases: starting a playthrough, recording
// its result, and reading the leaderboard.
type QuizService struct {
	provider QuestionProvider
	store    LeaderboardStore
	sessions SessionRegistry

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizService(provider QuestionProvider, store LeaderboardStore, sessions SessionRegistry) *QuizService {
	return &QuizService{
		provider: provider,
		store:    store,
		sessions: sessions,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartSession fetches questions, shuffles the full result, keeps the first
// ten (fewer if the provider returned fewer), and starts the countdown on
// question zero. Provider failures propagate; the caller decides whether to
// restart.
func (s *QuizService) StartSession(ctx context.Context, category string, difficulty domain.Difficulty, soundEnabled bool, cues CueSink) (*Session, error) {
	fetched, err := s.provider.FetchQuestions(ctx, category, difficulty)
	if err != nil {
		return nil, err
	}
	if len(fetched) == 0 {
		return nil, domain.ErrNoQuestions
	}

	questions := make([]domain.Question, len(fetched))
	copy(questions, fetched)
	s.mu.Lock()
	s.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	s.mu.Unlock()
	if len(questions) > QuestionsPerSession {
		questions = questions[:QuestionsPerSession]
	}

	session := NewSession(uuid.NewString(), category, difficulty, questions, soundEnabled, cues)
	s.sessions.Put(session)
	session.startClock()

	logrus.WithFields(logrus.Fields{
		"session":    session.ID(),
		"category":   category,
		"difficulty": difficulty,
		"questions":  len(questions),
	}).Info("quiz session started")
	return session, nil
}

// FinishSession records the finished session under the given player name and
// hands the entry to the leaderboard store. Persistence is best-effort: a
// store failure is logged and the entry is still returned to the caller.
func (s *QuizService) FinishSession(ctx context.Context, sessionID, name string) (domain.LeaderboardEntry, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.LeaderboardEntry{}, domain.ErrSessionNotFound
	}

	entry, err := session.CompleteEntry(name)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}

	if err := s.store.Save(ctx, entry); err != nil {
		logrus.WithError(err).WithField("session", sessionID).Warn("leaderboard save failed, score not recorded")
	}
	return entry, nil
}

// CloseSession discards a live session, releasing its timers. Safe to call
// for unknown IDs and after FinishSession.
func (s *QuizService) CloseSession(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

// Leaderboard returns the ranked entries. Store read failures read as an
// empty board rather than an error.
func (s *QuizService) Leaderboard(ctx context.Context) []domain.LeaderboardEntry {
	entries, err := s.store.List(ctx)
	if err != nil {
		logrus.WithError(err).Warn("leaderboard read failed, treating as empty")
		return []domain.LeaderboardEntry{}
	}
	return entries
}

// ClearLeaderboard removes every persisted entry. Irreversible; confirmation
// is the caller's concern.
func (s *QuizService) ClearLeaderboard(ctx context.Context) error {
	return s.store.Clear(ctx)
}
