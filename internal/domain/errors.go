package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session matches the given ID.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidDifficulty indicates an unknown difficulty string.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrMalformedQuestion indicates provider output that violates the question contract.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrNoQuestions indicates the provider produced an empty question set.
	ErrNoQuestions = errors.New("provider returned no questions")
	// ErrNotFinished is returned when a result is requested before the session finished.
	ErrNotFinished = errors.New("quiz session not finished")
	// ErrAlreadySaved is returned when a finished session is submitted twice.
	ErrAlreadySaved = errors.New("score already saved")
	// ErrBlankName rejects empty or whitespace-only player names.
	ErrBlankName = errors.New("player name is blank")
	// ErrNameTooLong rejects player names over the length cap.
	ErrNameTooLong = errors.New("player name too long")
)
