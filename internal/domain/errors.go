package domain

import "errors"

var (
	// ErrNoQuestions is returned when bank text yields zero parseable questions.
	ErrNoQuestions = errors.New("no recognizable questions")
	// ErrNoBankLoaded is returned when a round is requested before any bank exists.
	ErrNoBankLoaded = errors.New("no question bank loaded")
	// ErrBankExhausted is returned when the cursor has run past the last question.
	ErrBankExhausted = errors.New("question bank exhausted")
	// ErrNoActiveQuestion is returned when no question has been selected yet.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrGeneratorUnavailable is returned when no AI generator is configured.
	ErrGeneratorUnavailable = errors.New("question generator unavailable")
	// ErrBankNotFound indicates the archive holds no matching bank.
	ErrBankNotFound = errors.New("bank not found")
)
