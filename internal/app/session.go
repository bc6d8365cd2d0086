package app

import (
	"strings"
	"sync"
	"time"

	"live-trivia-service/internal/domain"
)

// MaxChoice is the fixed number of answer ordinals the wire protocol
// supports. Submissions are validated against this, not against the option
// count of the current question.
const MaxChoice = 4

// Event is pushed to live-feed subscribers whenever session state changes.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	EventBankLoaded   = "bankLoaded"
	EventRoundOpened  = "roundOpened"
	EventRoundClosed  = "roundClosed"
	EventScoreChanged = "scoreChanged"
	EventReset        = "reset"
)

type scoreChange struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

type roundClosed struct {
	Index int `json:"questionIndex"`
}

type bankLoaded struct {
	Count int `json:"count"`
}

// Session is the single live trivia session: the loaded bank, the round
// cursor and timer, and the scoreboard. All state is guarded by one mutex;
// contention is a handful of players, so a coarse lock is plenty.
type Session struct {
	mu sync.Mutex

	questions []domain.Question
	cursor    int
	current   *domain.Question
	active    bool

	// roundGen increments whenever the pending timer is superseded
	// (advance, reset, load, exhaustion). A timer callback holding a stale
	// generation is a guaranteed no-op, so a cancelled timer can never
	// close a later round and a fired timer cannot be un-fired.
	roundGen uint64
	timer    *time.Timer

	roundDuration time.Duration
	scores        map[string]int
	subscribers   map[chan Event]struct{}
}

// NewSession creates an empty session. Rounds last for the given duration.
func NewSession(roundDuration time.Duration) *Session {
	return &Session{
		cursor:        -1,
		roundDuration: roundDuration,
		scores:        make(map[string]int),
		subscribers:   make(map[chan Event]struct{}),
	}
}

// ReplaceBank swaps in a freshly parsed bank wholesale and restarts progress.
// Scores are untouched; only Reset clears them.
func (s *Session) ReplaceBank(questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = questions
	s.clearRoundLocked()
	s.broadcastLocked(Event{Type: EventBankLoaded, Payload: bankLoaded{Count: len(questions)}})
}

// BankSize reports how many questions the loaded bank holds.
func (s *Session) BankSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// Advance moves the cursor to the next question and opens a round with a
// fresh deadline. Any pending timer from a previous round is superseded
// first, so at most one timer is ever live. Returns domain.ErrNoBankLoaded
// when nothing is loaded and domain.ErrBankExhausted once the cursor runs
// past the end (no wraparound).
func (s *Session) Advance() (domain.RoundSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return domain.RoundSnapshot{}, domain.ErrNoBankLoaded
	}

	s.cursor++
	if s.cursor >= len(s.questions) {
		s.stopTimerLocked()
		s.current = nil
		s.active = false
		return domain.RoundSnapshot{}, domain.ErrBankExhausted
	}

	s.current = &s.questions[s.cursor]
	s.active = true
	s.stopTimerLocked()
	gen := s.roundGen
	s.timer = time.AfterFunc(s.roundDuration, func() { s.expireRound(gen) })

	snapshot := domain.RoundSnapshot{
		Index:     s.cursor,
		Prompt:    s.current.Prompt,
		Options:   append([]string(nil), s.current.Options...),
		TimeLimit: int(s.roundDuration / time.Second),
	}
	s.broadcastLocked(Event{Type: EventRoundOpened, Payload: snapshot})
	return snapshot, nil
}

// expireRound is the timer callback. It only closes the round it was
// scheduled for; it never moves the cursor.
func (s *Session) expireRound(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.roundGen || !s.active {
		return
	}
	s.active = false
	s.broadcastLocked(Event{Type: EventRoundClosed, Payload: roundClosed{Index: s.cursor}})
}

// Current is a side-effect-free read of the latest selected question. Safe
// to call at any time, including before the first advance.
func (s *Session) Current() domain.CurrentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := domain.CurrentView{Index: s.cursor, Options: []string{}}
	if s.current != nil {
		view.Prompt = s.current.Prompt
		view.Options = append([]string(nil), s.current.Options...)
	}
	return view
}

// AnswerKey reveals the correct option of the current question. An index out
// of range for the options resolves to a placeholder rather than an error.
func (s *Session) AnswerKey() (domain.AnswerKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.AnswerKey{}, domain.ErrNoActiveQuestion
	}
	key := domain.AnswerKey{Correct: s.current.Correct, Text: "—"}
	if idx := s.current.Correct - 1; idx >= 0 && idx < len(s.current.Options) {
		key.Text = s.current.Options[idx]
	}
	return key, nil
}

// Accepting reports whether the round timer is still open.
func (s *Session) Accepting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SubmitAnswer validates and scores one submission. Checks short-circuit in
// protocol order: empty player, then no selected question, then choice
// outside 1..MaxChoice. A player is registered at score 0 on first contact
// even when wrong.
//
// Two wire-compatibility quirks are preserved deliberately: submissions are
// not gated on the round being open (late answers still score against the
// last shown question), and repeat submissions within a round are not
// deduplicated. Both live here, in one place, should we ever break
// compatibility.
func (s *Session) SubmitAnswer(player string, choice int) domain.Verdict {
	if player = strings.TrimSpace(player); player == "" {
		return domain.VerdictNoPlayer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < 0 || s.cursor >= len(s.questions) {
		return domain.VerdictNoQuestion
	}
	if choice < 1 || choice > MaxChoice {
		return domain.VerdictInvalidChoice
	}

	if _, ok := s.scores[player]; !ok {
		s.scores[player] = 0
	}
	if choice != s.questions[s.cursor].Correct {
		return domain.VerdictWrong
	}
	s.scores[player]++
	s.broadcastLocked(Event{Type: EventScoreChanged, Payload: scoreChange{Player: player, Score: s.scores[player]}})
	return domain.VerdictCorrect
}

// Scores returns a copy of the scoreboard.
func (s *Session) Scores() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.scores))
	for player, score := range s.scores {
		out[player] = score
	}
	return out
}

// Reset clears the scoreboard and restarts progress on the still-loaded
// bank. The pending timer is cancelled so a delayed firing cannot revive a
// round that no longer exists.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scores = make(map[string]int)
	s.clearRoundLocked()
	s.broadcastLocked(Event{Type: EventReset})
}

func (s *Session) clearRoundLocked() {
	s.stopTimerLocked()
	s.cursor = -1
	s.current = nil
	s.active = false
}

func (s *Session) stopTimerLocked() {
	s.roundGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Subscribe returns a channel of session events for live feeds. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(event Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest queued event so slow feeds never block the
			// session lock.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
