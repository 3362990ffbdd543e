package gemini

import (
	"fmt"

	"trivia-quiz-service/internal/domain"
)

// questionCount is how many questions a fetch requests; a session keeps at
// most ten of them after shuffling.
const questionCount = 10

func buildPrompt(category string, difficulty domain.Difficulty, count int) string {
	return fmt.Sprintf(`
Generate %d %s level multiple-choice quiz questions on the topic %q.
Each question must:
- Be concise and informative
- Have 4 options
- Include the correct option index
Respond with a JSON array of the following structure:
[
  {
    "question": "What is ...?",
    "options": ["A", "B", "C", "D"],
    "correct": 2
  },
  ...
]
Only return the raw JSON, no explanation, no markdown.
`, count, difficulty, category)
}
