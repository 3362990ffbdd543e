package memory

import (
	"context"
	"strings"

	"trivia-quiz-service/internal/domain"
)

// StaticProvider serves questions from an in-memory bank keyed by category.
// It backs the server when no generative provider is configured, and tests.
type StaticProvider struct {
	banks map[string][]domain.Question
}

func NewStaticProvider(banks map[string][]domain.Question) *StaticProvider {
	normalized := make(map[string][]domain.Question, len(banks))
	for category, questions := range banks {
		normalized[normalizeCategory(category)] = questions
	}
	return &StaticProvider{banks: normalized}
}

// FetchQuestions returns the bank for the category regardless of difficulty.
// Unknown categories fail the same way a provider fetch failure does.
func (p *StaticProvider) FetchQuestions(_ context.Context, category string, _ domain.Difficulty) ([]domain.Question, error) {
	questions, ok := p.banks[normalizeCategory(category)]
	if !ok || len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out, nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// SampleQuestions provides a minimal built-in bank; swap in the Gemini
// provider for generated content.
func SampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"science": {
			{Text: "What planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Mercury"}, CorrectIndex: 1},
			{Text: "What gas do plants absorb from the atmosphere?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"}, CorrectIndex: 2},
			{Text: "What is the chemical symbol for gold?", Options: []string{"Au", "Ag", "Go", "Gd"}, CorrectIndex: 0},
			{Text: "How many bones are in the adult human body?", Options: []string{"186", "206", "226", "246"}, CorrectIndex: 1},
			{Text: "What force keeps planets in orbit around the sun?", Options: []string{"Magnetism", "Friction", "Gravity", "Inertia"}, CorrectIndex: 2},
		},
		"history": {
			{Text: "In which year did World War II end?", Options: []string{"1943", "1944", "1945", "1946"}, CorrectIndex: 2},
			{Text: "Who was the first president of the United States?", Options: []string{"Thomas Jefferson", "George Washington", "John Adams", "Benjamin Franklin"}, CorrectIndex: 1},
			{Text: "Which empire built the Colosseum?", Options: []string{"Greek", "Ottoman", "Roman", "Byzantine"}, CorrectIndex: 2},
			{Text: "The Great Wall is located in which country?", Options: []string{"Japan", "China", "India", "Mongolia"}, CorrectIndex: 1},
			{Text: "Who discovered penicillin?", Options: []string{"Marie Curie", "Louis Pasteur", "Alexander Fleming", "Joseph Lister"}, CorrectIndex: 2},
		},
		"geography": {
			{Text: "What is the capital of Australia?", Options: []string{"Sydney", "Melbourne", "Canberra", "Perth"}, CorrectIndex: 2},
			{Text: "Which is the longest river in the world?", Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, CorrectIndex: 1},
			{Text: "Mount Everest sits on the border of Nepal and which country?", Options: []string{"India", "Bhutan", "China", "Pakistan"}, CorrectIndex: 2},
			{Text: "Which desert is the largest hot desert on Earth?", Options: []string{"Gobi", "Kalahari", "Sahara", "Atacama"}, CorrectIndex: 2},
			{Text: "How many continents are there?", Options: []string{"five", "six", "seven", "eight"}, CorrectIndex: 2},
		},
	}
}
