package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"live-trivia-service/internal/ai"
	"live-trivia-service/internal/domain"
	"live-trivia-service/internal/quizbank"
)

// BankArchive stores successfully loaded banks as a content library.
// Archiving is best-effort; a failing archive never fails a load.
type BankArchive interface {
	Save(ctx context.Context, record domain.BankRecord) error
}

// QuizService contains the moderator- and player-facing use cases on top of
// the single live session.
type QuizService struct {
	session   *Session
	generator ai.Generator // nil when generation is not configured
	archive   BankArchive  // nil when no archive is configured
	log       zerolog.Logger
}

func NewQuizService(session *Session, generator ai.Generator, archive BankArchive, log zerolog.Logger) *QuizService {
	return &QuizService{
		session:   session,
		generator: generator,
		archive:   archive,
		log:       log.With().Str("component", "quiz").Logger(),
	}
}

// LoadBank parses raw text in the shared format and replaces the bank
// wholesale. Load is all-or-nothing: on a parse failure the previous bank
// and cursor are left exactly as they were.
func (s *QuizService) LoadBank(ctx context.Context, origin, subject, raw string) (int, error) {
	questions, err := quizbank.Parse(raw)
	if err != nil {
		return 0, err
	}

	s.session.ReplaceBank(questions)
	s.log.Info().Str("origin", origin).Int("count", len(questions)).Msg("question bank replaced")

	if s.archive != nil {
		record := domain.BankRecord{
			ID:        uuid.NewString(),
			Origin:    origin,
			Subject:   subject,
			RawText:   raw,
			Questions: questions,
		}
		if err := s.archive.Save(ctx, record); err != nil {
			s.log.Warn().Err(err).Str("bank", record.ID).Msg("bank archive failed")
		}
	}
	return len(questions), nil
}

// Generate asks the configured AI generator for a fresh ten-question bank on
// the given subject and loads it through the same all-or-nothing path as an
// upload. A generator failure leaves the existing bank intact.
func (s *QuizService) Generate(ctx context.Context, subject string) (int, error) {
	if s.generator == nil {
		return 0, domain.ErrGeneratorUnavailable
	}

	raw, err := s.generator.GenerateQuestions(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("generate questions: %w", err)
	}

	count, err := s.LoadBank(ctx, "generate", subject, raw)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("subject", subject).Int("count", count).Msg("bank generated")
	return count, nil
}

// RestoreBank seeds the session from an archived bank, used at startup when
// the archive holds a previous content library. Session state (scores,
// cursor) always starts fresh.
func (s *QuizService) RestoreBank(record domain.BankRecord) {
	if len(record.Questions) == 0 {
		return
	}
	s.session.ReplaceBank(record.Questions)
	s.log.Info().Str("bank", record.ID).Int("count", len(record.Questions)).Msg("bank restored from archive")
}

// Advance opens the next round.
func (s *QuizService) Advance() (domain.RoundSnapshot, error) {
	return s.session.Advance()
}

// Current reads the latest selected question without side effects.
func (s *QuizService) Current() domain.CurrentView {
	return s.session.Current()
}

// AnswerKey reveals the correct option to the moderator.
func (s *QuizService) AnswerKey() (domain.AnswerKey, error) {
	return s.session.AnswerKey()
}

// SubmitAnswer validates and scores a player submission.
func (s *QuizService) SubmitAnswer(player string, choice int) domain.Verdict {
	verdict := s.session.SubmitAnswer(player, choice)
	s.log.Debug().Str("player", player).Int("choice", choice).Str("verdict", string(verdict)).Msg("answer")
	return verdict
}

// Scores returns a copy of the scoreboard.
func (s *QuizService) Scores() map[string]int {
	return s.session.Scores()
}

// Reset clears scores and round progress while keeping the loaded bank.
func (s *QuizService) Reset() {
	s.session.Reset()
	s.log.Info().Msg("session reset")
}

// Subscribe exposes the session event feed.
func (s *QuizService) Subscribe() (<-chan Event, func()) {
	return s.session.Subscribe()
}
