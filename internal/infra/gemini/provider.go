// Package gemini implements the question provider on top of Google's
// generative text API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"trivia-quiz-service/internal/domain"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Provider fetches generated multiple-choice questions. One generate call per
// session; no retry, no cache.
type Provider struct {
	client *genai.Client
	model  string
}

// NewProvider builds a provider. The API key is read from the environment by
// the genai client (GEMINI_API_KEY / GOOGLE_API_KEY).
func NewProvider(ctx context.Context, model string) (*Provider, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: client, model: model}, nil
}

// FetchQuestions asks the model for a question set and parses the generated
// text as strict JSON. Any malformed response fails the whole fetch; no
// partial question set ever reaches a session.
func (p *Provider) FetchQuestions(ctx context.Context, category string, difficulty domain.Difficulty) ([]domain.Question, error) {
	prompt := buildPrompt(category, difficulty, questionCount)

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions, err := parseQuestions(result.Text())
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"category":   category,
			"difficulty": difficulty,
		}).Error("gemini response rejected")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"category":   category,
		"difficulty": difficulty,
		"questions":  len(questions),
	}).Info("questions generated")
	return questions, nil
}

// questionPayload mirrors the JSON shape the prompt asks for.
type questionPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

// parseQuestions strips any markdown fencing, decodes the JSON array, and
// validates every question against the provider contract, failing closed.
func parseQuestions(raw string) ([]domain.Question, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var payloads []questionPayload
	if err := json.Unmarshal([]byte(clean), &payloads); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	questions := make([]domain.Question, 0, len(payloads))
	for i, p := range payloads {
		q := domain.Question{
			Text:         p.Question,
			Options:      p.Options,
			CorrectIndex: p.Correct,
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}
