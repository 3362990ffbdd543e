package gemini

import (
	"errors"
	"strings"
	"testing"

	"trivia-quiz-service/internal/domain"
)

const validBody = `[
  {"question": "What is 2 + 2?", "options": ["3", "4", "5", "6"], "correct": 1},
  {"question": "Largest planet?", "options": ["Mars", "Venus", "Jupiter", "Saturn"], "correct": 2}
]`

func TestParseQuestions(t *testing.T) {
	questions, err := parseQuestions(validBody)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("len = %d, want 2", len(questions))
	}
	if questions[0].Text != "What is 2 + 2?" || questions[0].CorrectIndex != 1 {
		t.Fatalf("unexpected question: %+v", questions[0])
	}
}

func TestParseQuestionsStripsCodeFences(t *testing.T) {
	for _, wrapped := range []string{
		"```json\n" + validBody + "\n```",
		"```\n" + validBody + "\n```",
		"\n  " + validBody + "  \n",
	} {
		questions, err := parseQuestions(wrapped)
		if err != nil {
			t.Fatalf("parse failed for %q...: %v", wrapped[:12], err)
		}
		if len(questions) != 2 {
			t.Fatalf("len = %d, want 2", len(questions))
		}
	}
}

func TestParseQuestionsFailsClosed(t *testing.T) {
	cases := map[string]string{
		"empty response":    "",
		"not json":          "Sure! Here are your questions:",
		"wrong shape":       `{"questions": []}`,
		"three options":     `[{"question": "q", "options": ["a", "b", "c"], "correct": 0}]`,
		"five options":      `[{"question": "q", "options": ["a", "b", "c", "d", "e"], "correct": 0}]`,
		"index out of range": `[{"question": "q", "options": ["a", "b", "c", "d"], "correct": 4}]`,
		"negative index":    `[{"question": "q", "options": ["a", "b", "c", "d"], "correct": -1}]`,
		"blank text":        `[{"question": "  ", "options": ["a", "b", "c", "d"], "correct": 0}]`,
		"blank option":      `[{"question": "q", "options": ["a", "", "c", "d"], "correct": 0}]`,
	}
	for name, body := range cases {
		if _, err := parseQuestions(body); err == nil {
			t.Errorf("%s: malformed response accepted", name)
		}
	}

	// One bad question poisons the whole batch; no partial sets.
	mixed := `[
	  {"question": "fine", "options": ["a", "b", "c", "d"], "correct": 0},
	  {"question": "bad", "options": ["a", "b"], "correct": 0}
	]`
	if _, err := parseQuestions(mixed); !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected ErrMalformedQuestion, got %v", err)
	}
}

func TestParseQuestionsEmptyArray(t *testing.T) {
	if _, err := parseQuestions("[]"); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("world history", domain.DifficultyHard, 10)

	for _, want := range []string{"10", "hard", `"world history"`, "4 options", "JSON"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
