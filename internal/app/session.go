package app

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/domain"
)

const (
	// QuestionsPerSession is how many questions a session keeps after shuffling.
	QuestionsPerSession = 10
	// QuestionSeconds is the per-question countdown. Fixed for every difficulty.
	QuestionSeconds = 30
	// AdvanceDelay is the feedback pause between locking an answer and moving on.
	AdvanceDelay = 1500 * time.Millisecond
	// NoAnswer marks a countdown expiry submitted on the player's behalf.
	NoAnswer = -1
)

// State is the session's play state.
type State string

const (
	StatePlaying  State = "playing"
	StateAnswered State = "answered"
	StateFinished State = "finished"
)

// Cue identifies an audio feedback cue.
type Cue string

const (
	CueCorrect   Cue = "correct"
	CueIncorrect Cue = "incorrect"
	CueComplete  Cue = "complete"
)

// CueSink plays audio feedback cues. Playback errors are swallowed by the
// session; sound is strictly best-effort.
type CueSink interface {
	PlayCue(cue Cue) error
}

// AnswerResult captures the outcome of one locked-in answer.
type AnswerResult struct {
	QuestionIndex int  `json:"questionIndex"`
	Selected      int  `json:"selected"` // NoAnswer when the countdown expired
	Correct       bool `json:"correct"`
	CorrectIndex  int  `json:"correctIndex"`
	Awarded       int  `json:"awarded"`
}

// QuestionView is a question with the answer withheld, safe to send to clients.
type QuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Snapshot is an immutable view of the session, pushed to the subscriber on
// every transition so clients can re-render from state alone.
type Snapshot struct {
	ID            string            `json:"id"`
	State         State             `json:"state"`
	Category      string            `json:"category"`
	Difficulty    domain.Difficulty `json:"difficulty"`
	QuestionIndex int               `json:"questionIndex"`
	QuestionCount int               `json:"questionCount"`
	Question      *QuestionView     `json:"question,omitempty"`
	Remaining     int               `json:"remaining"`
	Score         int               `json:"score"`
	Result        *AnswerResult     `json:"result,omitempty"`
	ElapsedMillis int64             `json:"elapsedMillis,omitempty"`
}

// Session drives one quiz playthrough: question sequencing, the per-question
// countdown, answer evaluation, and scoring. All transitions happen under one
// mutex; timers are injected so tests can drive the machine deterministically.
type Session struct {
	id           string
	category     string
	difficulty   domain.Difficulty
	soundEnabled bool
	cues         CueSink

	now      func() time.Time
	schedule func(d time.Duration, f func()) (cancel func())

	mu            sync.Mutex
	questions     []domain.Question
	current       int
	score         int
	remaining     int
	state         State
	startedAt     time.Time
	elapsed       time.Duration
	lastResult    *AnswerResult
	saved         bool
	closed        bool
	cancelAdvance func()
	subscribers   map[chan Snapshot]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session running on wall-clock timers.
func NewSession(id, category string, difficulty domain.Difficulty, questions []domain.Question, soundEnabled bool, cues CueSink) *Session {
	return NewSessionWithTimers(id, category, difficulty, questions, soundEnabled, cues, time.Now, afterFunc)
}

// NewSessionWithTimers injects the clock and the advance scheduler for
// deterministic tests.
func NewSessionWithTimers(
	id, category string,
	difficulty domain.Difficulty,
	questions []domain.Question,
	soundEnabled bool,
	cues CueSink,
	now func() time.Time,
	schedule func(d time.Duration, f func()) func(),
) *Session {
	return &Session{
		id:           id,
		category:     category,
		difficulty:   difficulty,
		soundEnabled: soundEnabled,
		cues:         cues,
		now:          now,
		schedule:     schedule,
		questions:    questions,
		remaining:    QuestionSeconds,
		state:        StatePlaying,
		startedAt:    now(),
		subscribers:  make(map[chan Snapshot]struct{}),
		done:         make(chan struct{}),
	}
}

func afterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Done is closed when the session is discarded.
func (s *Session) Done() <-chan struct{} { return s.done }

// startClock drives Tick once per second until the session closes.
func (s *Session) startClock() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-s.done:
				return
			}
		}
	}()
}

// Tick advances the countdown by one second. Reaching zero submits an
// implicit no-answer on the player's behalf. Ignored outside Playing.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying || s.closed {
		return
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.submitLocked(NoAnswer)
		return
	}
	s.broadcastLocked()
}

// Submit locks in an answer for the current question. Only the first
// submission per question is honored; later calls (including a racing
// countdown expiry) are no-ops.
func (s *Session) Submit(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitLocked(index)
}

func (s *Session) submitLocked(index int) {
	if s.state != StatePlaying || s.closed {
		return
	}

	q := s.questions[s.current]
	correct := index >= 0 && index == q.CorrectIndex
	awarded := 0
	if correct {
		awarded = domain.Points(s.difficulty, s.remaining)
		s.score += awarded
		s.playCueLocked(CueCorrect)
	} else {
		s.playCueLocked(CueIncorrect)
	}

	s.lastResult = &AnswerResult{
		QuestionIndex: s.current,
		Selected:      index,
		Correct:       correct,
		CorrectIndex:  q.CorrectIndex,
		Awarded:       awarded,
	}
	s.state = StateAnswered
	s.cancelAdvance = s.schedule(AdvanceDelay, s.advance)
	s.broadcastLocked()
}

// advance leaves the feedback pause: next question, or Finished after the last.
func (s *Session) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnswered || s.closed {
		return
	}
	s.cancelAdvance = nil
	s.lastResult = nil

	if s.current < len(s.questions)-1 {
		s.current++
		s.remaining = QuestionSeconds
		s.state = StatePlaying
	} else {
		s.elapsed = s.now().Sub(s.startedAt)
		s.state = StateFinished
		s.playCueLocked(CueComplete)
	}
	s.broadcastLocked()
}

// CompleteEntry validates the player name and produces the leaderboard entry
// for a finished session. It succeeds at most once per session.
func (s *Session) CompleteEntry(name string) (domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFinished {
		return domain.LeaderboardEntry{}, domain.ErrNotFinished
	}
	if s.saved {
		return domain.LeaderboardEntry{}, domain.ErrAlreadySaved
	}

	entry, err := domain.NewLeaderboardEntry(name, s.category, s.difficulty, s.score, s.elapsed, s.now())
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	s.saved = true
	return entry, nil
}

// Close discards the session: the tick loop stops, any pending advance timer
// is released, and subscribers are drained. A closed session can never fire a
// late transition or produce a leaderboard entry it hasn't already produced.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		if s.cancelAdvance != nil {
			s.cancelAdvance()
			s.cancelAdvance = nil
		}
		for ch := range s.subscribers {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
		close(s.done)
	})
}

// Subscribe returns a channel of snapshots, primed with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot returns the current immutable view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks a transition.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:            s.id,
		State:         s.state,
		Category:      s.category,
		Difficulty:    s.difficulty,
		QuestionIndex: s.current,
		QuestionCount: len(s.questions),
		Remaining:     s.remaining,
		Score:         s.score,
	}
	if s.state != StateFinished {
		q := s.questions[s.current]
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		snap.Question = &QuestionView{Text: q.Text, Options: opts}
	} else {
		snap.ElapsedMillis = s.elapsed.Milliseconds()
	}
	if s.lastResult != nil {
		r := *s.lastResult
		snap.Result = &r
	}
	return snap
}

func (s *Session) playCueLocked(cue Cue) {
	if !s.soundEnabled || s.cues == nil {
		return
	}
	if err := s.cues.PlayCue(cue); err != nil {
		logrus.WithError(err).WithField("cue", cue).Debug("audio cue playback failed")
	}
}
