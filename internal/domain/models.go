package domain

// Question is a single multiple-choice trivia question. Questions are created
// in bulk when a bank is loaded and never mutated afterwards; a new load
// replaces the whole bank.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	// Correct is the 1-based index of the right option. It is always >= 1,
	// but malformed source text may leave it out of range for Options;
	// answer-key lookups tolerate that instead of failing.
	Correct int `json:"correct"`
}

// RoundSnapshot is what the moderator gets back when a round opens.
type RoundSnapshot struct {
	Index     int      `json:"questionIndex"`
	Prompt    string   `json:"question"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"time"` // seconds
}

// CurrentView reflects the latest selected question without side effects.
// Before the first advance (and after a reset) Index is -1 and Prompt is empty.
type CurrentView struct {
	Index   int      `json:"questionIndex"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// AnswerKey reveals the correct option of the current question to the moderator.
type AnswerKey struct {
	Correct int    `json:"correct"`
	Text    string `json:"text"`
}

// Verdict is the wire-level outcome of an answer submission. Remote clients
// match on these exact strings.
type Verdict string

const (
	VerdictNoPlayer      Verdict = "no_player"
	VerdictNoQuestion    Verdict = "no_question"
	VerdictInvalidChoice Verdict = "invalid_choice"
	VerdictCorrect       Verdict = "correct"
	VerdictWrong         Verdict = "wrong"
)

// BankRecord is an archived question bank. The archive is a content library;
// it never holds session state (scores, cursor).
type BankRecord struct {
	ID        string     `json:"id"`
	Origin    string     `json:"origin"` // "upload" or "generate"
	Subject   string     `json:"subject"`
	RawText   string     `json:"rawText"`
	Questions []Question `json:"questions"`
}
