package app_test

import (
	"sync"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// manualScheduler captures advance callbacks so tests fire them by hand.
type manualScheduler struct {
	mu       sync.Mutex
	pending  []func()
	canceled int
}

func (m *manualScheduler) schedule(_ time.Duration, f func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, f)
	fired := false
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !fired {
			fired = true
			m.canceled++
		}
	}
}

// fire runs the most recently scheduled callback.
func (m *manualScheduler) fire(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		t.Fatal("no pending advance callback")
	}
	f := m.pending[len(m.pending)-1]
	m.pending = m.pending[:len(m.pending)-1]
	m.mu.Unlock()
	f()
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedCues struct {
	mu   sync.Mutex
	cues []app.Cue
}

func (r *recordedCues) PlayCue(cue app.Cue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, cue)
	return nil
}

func questions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			Text:         "question",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 0,
		}
	}
	return qs
}

func newTestSession(t *testing.T, qs []domain.Question, difficulty domain.Difficulty, sound bool, cues app.CueSink) (*app.Session, *manualScheduler, *manualClock) {
	t.Helper()
	clock := &manualClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	sched := &manualScheduler{}
	s := app.NewSessionWithTimers("s1", "science", difficulty, qs, sound, cues, clock.Now, sched.schedule)
	return s, sched, clock
}

func TestCorrectAnswerScoresWithTimeBonus(t *testing.T) {
	s, _, _ := newTestSession(t, questions(2), domain.DifficultyHard, false, nil)

	// Burn the countdown from 30 down to 9 remaining.
	for i := 0; i < 21; i++ {
		s.Tick()
	}
	s.Submit(0)

	snap := s.Snapshot()
	if snap.State != app.StateAnswered {
		t.Fatalf("state = %s, want answered", snap.State)
	}
	if snap.Score != 39 {
		t.Fatalf("score = %d, want 39", snap.Score)
	}
	if snap.Result == nil || !snap.Result.Correct || snap.Result.Awarded != 39 {
		t.Fatalf("unexpected result: %+v", snap.Result)
	}
}

func TestWrongAnswerAndTimeoutScoreNothing(t *testing.T) {
	s, sched, _ := newTestSession(t, questions(2), domain.DifficultyMedium, false, nil)

	s.Submit(3) // wrong
	snap := s.Snapshot()
	if snap.Score != 0 {
		t.Fatalf("wrong answer scored %d", snap.Score)
	}
	sched.fire(t)

	// Timeout on question 2 behaves exactly like a wrong answer.
	for i := 0; i < app.QuestionSeconds; i++ {
		s.Tick()
	}
	snap = s.Snapshot()
	if snap.State != app.StateAnswered {
		t.Fatalf("countdown expiry did not lock an answer: %s", snap.State)
	}
	if snap.Score != 0 {
		t.Fatalf("timeout scored %d", snap.Score)
	}
	if snap.Result == nil || snap.Result.Selected != app.NoAnswer || snap.Result.Correct {
		t.Fatalf("unexpected timeout result: %+v", snap.Result)
	}
}

func TestDoubleSubmissionScoresOnce(t *testing.T) {
	s, _, _ := newTestSession(t, questions(1), domain.DifficultyEasy, false, nil)

	s.Submit(0)
	first := s.Snapshot().Score
	s.Submit(0)
	s.Tick() // a racing countdown tick is also a no-op now

	if got := s.Snapshot().Score; got != first {
		t.Fatalf("score changed after duplicate submission: %d -> %d", first, got)
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	s, sched, _ := newTestSession(t, questions(4), domain.DifficultyEasy, false, nil)

	prev := 0
	for i := 0; i < 4; i++ {
		if i%2 == 0 {
			s.Submit(0)
		} else {
			s.Submit(2)
		}
		snap := s.Snapshot()
		if snap.Score < prev {
			t.Fatalf("score decreased: %d -> %d", prev, snap.Score)
		}
		prev = snap.Score
		sched.fire(t)
	}

	if got := s.Snapshot().State; got != app.StateFinished {
		t.Fatalf("state = %s, want finished", got)
	}
}

func TestShortQuestionSetStillFinishes(t *testing.T) {
	s, sched, clock := newTestSession(t, questions(3), domain.DifficultyEasy, false, nil)

	for i := 0; i < 3; i++ {
		s.Submit(0)
		clock.Advance(2 * time.Second)
		sched.fire(t)
	}

	snap := s.Snapshot()
	if snap.State != app.StateFinished {
		t.Fatalf("state = %s, want finished after 3 questions", snap.State)
	}
	if snap.ElapsedMillis != 6000 {
		t.Fatalf("elapsed = %d, want 6000", snap.ElapsedMillis)
	}
}

func TestAudioCues(t *testing.T) {
	cues := &recordedCues{}
	s, sched, _ := newTestSession(t, questions(2), domain.DifficultyEasy, true, cues)

	s.Submit(0)
	sched.fire(t)
	s.Submit(3)
	sched.fire(t)

	want := []app.Cue{app.CueCorrect, app.CueIncorrect, app.CueComplete}
	cues.mu.Lock()
	defer cues.mu.Unlock()
	if len(cues.cues) != len(want) {
		t.Fatalf("cues = %v, want %v", cues.cues, want)
	}
	for i := range want {
		if cues.cues[i] != want[i] {
			t.Fatalf("cue %d = %s, want %s", i, cues.cues[i], want[i])
		}
	}
}

func TestSoundDisabledPlaysNoCues(t *testing.T) {
	cues := &recordedCues{}
	s, sched, _ := newTestSession(t, questions(1), domain.DifficultyEasy, false, cues)

	s.Submit(0)
	sched.fire(t)

	cues.mu.Lock()
	defer cues.mu.Unlock()
	if len(cues.cues) != 0 {
		t.Fatalf("cues played while sound disabled: %v", cues.cues)
	}
}

func TestCompleteEntry(t *testing.T) {
	s, sched, clock := newTestSession(t, questions(1), domain.DifficultyHard, false, nil)

	if _, err := s.CompleteEntry("Alice"); err != domain.ErrNotFinished {
		t.Fatalf("expected ErrNotFinished before the quiz ends, got %v", err)
	}

	s.Submit(0)
	clock.Advance(45 * time.Second)
	sched.fire(t)

	if _, err := s.CompleteEntry("   "); err != domain.ErrBlankName {
		t.Fatalf("expected ErrBlankName, got %v", err)
	}

	entry, err := s.CompleteEntry("Alice")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if entry.Score != 90 { // full 30s bonus on hard
		t.Fatalf("score = %d, want 90", entry.Score)
	}
	if entry.ElapsedMillis != 45000 {
		t.Fatalf("elapsed = %d, want 45000", entry.ElapsedMillis)
	}
	if entry.Category != "science" || entry.Difficulty != domain.DifficultyHard {
		t.Fatalf("entry metadata wrong: %+v", entry)
	}

	if _, err := s.CompleteEntry("Alice"); err != domain.ErrAlreadySaved {
		t.Fatalf("expected ErrAlreadySaved on second completion, got %v", err)
	}
}

func TestCloseReleasesPendingAdvance(t *testing.T) {
	s, sched, _ := newTestSession(t, questions(2), domain.DifficultyEasy, false, nil)

	s.Submit(0)
	s.Close()

	sched.mu.Lock()
	canceled := sched.canceled
	sched.mu.Unlock()
	if canceled != 1 {
		t.Fatalf("pending advance timer not canceled")
	}

	// Even if the callback had already left the timer queue, it must not move
	// a discarded session.
	sched.fire(t)
	s.Tick()
	if got := s.Snapshot().State; got != app.StateAnswered {
		t.Fatalf("closed session transitioned to %s", got)
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Close")
	}
}

func TestSubscribeStreamsTransitions(t *testing.T) {
	s, sched, _ := newTestSession(t, questions(1), domain.DifficultyEasy, false, nil)

	updates, cancel := s.Subscribe()
	defer cancel()

	initial := <-updates
	if initial.State != app.StatePlaying || initial.Question == nil {
		t.Fatalf("unexpected initial snapshot: %+v", initial)
	}
	if initial.Question.Text == "" || len(initial.Question.Options) != domain.OptionCount {
		t.Fatalf("question view incomplete: %+v", initial.Question)
	}

	s.Submit(0)
	answered := <-updates
	if answered.State != app.StateAnswered || answered.Result == nil {
		t.Fatalf("expected answered snapshot, got %+v", answered)
	}
	if answered.Result.CorrectIndex != 0 {
		t.Fatalf("result missing correct index: %+v", answered.Result)
	}

	sched.fire(t)
	finished := <-updates
	if finished.State != app.StateFinished {
		t.Fatalf("expected finished snapshot, got %+v", finished)
	}

	s.Close()
	if _, ok := <-updates; ok {
		t.Fatal("updates channel not closed after Close")
	}
}
