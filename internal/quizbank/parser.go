// Package quizbank implements the shared text format for question banks.
// Uploaded documents and AI-generated text are both parsed with the same
// grammar: blocks delimited by a "Question:" keyword, option lines marked
// with a letter or digit followed by ')' or '.', and an "Answer:" line whose
// digits give the 1-based correct option.
package quizbank

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"live-trivia-service/internal/domain"
)

var (
	delimiterRe = regexp.MustCompile(`(?i)question:`)
	optionRe    = regexp.MustCompile(`(?i)^[a-d1-9][).]\s*(.+)$`)
	answerRe    = regexp.MustCompile(`(?i)^answer:`)
	digitsRe    = regexp.MustCompile(`[^0-9]`)
)

// DefaultCorrect is the named default for the correct option when the answer
// line is missing, digit-free, or zero. The grammar is deliberately
// permissive; a block without options is still a valid question.
const DefaultCorrect = 1

// Parse converts raw bank text into questions. It returns
// domain.ErrNoQuestions when no blocks parse; callers must keep their
// previous bank in that case.
func Parse(raw string) ([]domain.Question, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\r", ""))

	var questions []domain.Question
	for _, block := range delimiterRe.Split(raw, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		questions = append(questions, parseBlock(block))
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

func parseBlock(block string) domain.Question {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	q := domain.Question{Prompt: lines[0], Correct: DefaultCorrect}
	for _, line := range lines {
		if m := optionRe.FindStringSubmatch(line); m != nil {
			q.Options = append(q.Options, strings.TrimSpace(m[1]))
			continue
		}
		if answerRe.MatchString(line) {
			q.Correct = parseAnswer(line)
		}
	}
	return q
}

func parseAnswer(line string) int {
	n, err := strconv.Atoi(digitsRe.ReplaceAllString(line, ""))
	if err != nil || n < 1 {
		return DefaultCorrect
	}
	return n
}

// Prompt builds the fixed generation prompt requesting exactly ten questions
// in the shared grammar, so generated output parses with the same rules as
// uploaded documents.
func Prompt(subject string) string {
	return fmt.Sprintf(`Write 10 short trivia questions about "%s".
Use exactly this format:
Question: [text]
1) [option 1]
2) [option 2]
3) [option 3]
4) [option 4]
Answer: [number of the correct option]`, subject)
}
