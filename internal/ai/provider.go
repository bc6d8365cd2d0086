// Package ai defines the boundary to external question generators.
package ai

import "context"

// Generator produces raw question-bank text in the shared quizbank grammar.
// Implementations must be time-bounded and safe to call while the session
// keeps serving other requests.
type Generator interface {
	GenerateQuestions(ctx context.Context, subject string) (string, error)
}
