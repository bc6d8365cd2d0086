package app

import (
	"sync"
	"testing"
	"time"

	"live-trivia-service/internal/domain"
)

func sampleBank() []domain.Question {
	return []domain.Question{
		{Prompt: "Q1", Options: []string{"A", "B"}, Correct: 1},
		{Prompt: "Q2", Options: []string{"A", "B", "C", "D"}, Correct: 2},
		{Prompt: "Q3", Options: []string{"A", "B", "C"}, Correct: 3},
	}
}

func TestAdvanceThroughBank(t *testing.T) {
	session := NewSession(time.Minute)
	session.ReplaceBank(sampleBank())

	for i := 0; i < 3; i++ {
		snapshot, err := session.Advance()
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if snapshot.Index != i {
			t.Fatalf("expected index %d, got %d", i, snapshot.Index)
		}
		if !session.Accepting() {
			t.Fatalf("round %d should be open", i)
		}
	}

	if _, err := session.Advance(); err != domain.ErrBankExhausted {
		t.Fatalf("expected exhaustion, got %v", err)
	}
	if session.Accepting() {
		t.Fatal("exhausted session must not accept answers")
	}
	if view := session.Current(); view.Prompt != "" {
		t.Fatalf("exhausted session should have no current question, got %+v", view)
	}
}

func TestAdvanceWithoutBank(t *testing.T) {
	session := NewSession(time.Minute)
	if _, err := session.Advance(); err != domain.ErrNoBankLoaded {
		t.Fatalf("expected ErrNoBankLoaded, got %v", err)
	}
}

func TestScoringEndToEnd(t *testing.T) {
	session := NewSession(15 * time.Second)
	session.ReplaceBank([]domain.Question{{Prompt: "Q1", Options: []string{"A", "B"}, Correct: 1}})

	snapshot, err := session.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if snapshot.Index != 0 || snapshot.Prompt != "Q1" || snapshot.TimeLimit != 15 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if len(snapshot.Options) != 2 || snapshot.Options[0] != "A" {
		t.Fatalf("unexpected options: %v", snapshot.Options)
	}

	key, err := session.AnswerKey()
	if err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if key.Correct != 1 || key.Text != "A" {
		t.Fatalf("unexpected answer key: %+v", key)
	}

	if verdict := session.SubmitAnswer("p1", 1); verdict != domain.VerdictCorrect {
		t.Fatalf("expected correct, got %s", verdict)
	}
	if scores := session.Scores(); scores["p1"] != 1 {
		t.Fatalf("expected p1 to have 1 point, got %v", scores)
	}

	if verdict := session.SubmitAnswer("p1", 2); verdict != domain.VerdictWrong {
		t.Fatalf("expected wrong, got %s", verdict)
	}
	if scores := session.Scores(); scores["p1"] != 1 {
		t.Fatalf("wrong answer must not change score, got %v", scores)
	}
}

func TestRejectionOrdering(t *testing.T) {
	session := NewSession(time.Minute)

	// Empty player is rejected before the question-existence check, even
	// with nothing loaded.
	if verdict := session.SubmitAnswer("  ", 1); verdict != domain.VerdictNoPlayer {
		t.Fatalf("expected no_player, got %s", verdict)
	}

	if verdict := session.SubmitAnswer("bob", 1); verdict != domain.VerdictNoQuestion {
		t.Fatalf("expected no_question, got %s", verdict)
	}

	session.ReplaceBank(sampleBank())
	if verdict := session.SubmitAnswer("bob", 1); verdict != domain.VerdictNoQuestion {
		t.Fatalf("expected no_question before first advance, got %s", verdict)
	}

	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if verdict := session.SubmitAnswer("bob", 5); verdict != domain.VerdictInvalidChoice {
		t.Fatalf("expected invalid_choice, got %s", verdict)
	}
	if verdict := session.SubmitAnswer("bob", 0); verdict != domain.VerdictInvalidChoice {
		t.Fatalf("expected invalid_choice for 0, got %s", verdict)
	}
}

func TestWrongAnswerRegistersPlayer(t *testing.T) {
	session := NewSession(time.Minute)
	session.ReplaceBank(sampleBank())
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if verdict := session.SubmitAnswer("carol", 2); verdict != domain.VerdictWrong {
		t.Fatalf("expected wrong, got %s", verdict)
	}
	scores := session.Scores()
	if score, ok := scores["carol"]; !ok || score != 0 {
		t.Fatalf("expected carol at 0 on first contact, got %v", scores)
	}
}

func TestCurrentIsIdempotent(t *testing.T) {
	session := NewSession(time.Minute)

	before := session.Current()
	if before.Index != -1 || before.Prompt != "" || len(before.Options) != 0 {
		t.Fatalf("fresh session should report no question, got %+v", before)
	}

	session.ReplaceBank(sampleBank())
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	first := session.Current()
	for i := 0; i < 5; i++ {
		if got := session.Current(); got.Index != first.Index || got.Prompt != first.Prompt {
			t.Fatalf("current changed between reads: %+v vs %+v", first, got)
		}
	}
}

func TestTimerClosesRound(t *testing.T) {
	session := NewSession(30 * time.Millisecond)
	session.ReplaceBank(sampleBank())

	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !session.Accepting() {
		t.Fatal("round should open accepting")
	}

	time.Sleep(100 * time.Millisecond)
	if session.Accepting() {
		t.Fatal("round should close after the deadline")
	}
	// Closing a round must not move the cursor.
	if view := session.Current(); view.Index != 0 || view.Prompt != "Q1" {
		t.Fatalf("timer must not touch the cursor, got %+v", view)
	}
}

func TestSupersededTimerIsNoOp(t *testing.T) {
	session := NewSession(200 * time.Millisecond)
	session.ReplaceBank(sampleBank())

	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	time.Sleep(120 * time.Millisecond)

	// Supersede the pending timer before it fires.
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance 2: %v", err)
	}

	// The first round's deadline has now passed; only the second round's
	// timer may close the round.
	time.Sleep(120 * time.Millisecond)
	if !session.Accepting() {
		t.Fatal("stale timer from a superseded round closed the new round")
	}

	time.Sleep(150 * time.Millisecond)
	if session.Accepting() {
		t.Fatal("the new round's own timer should have closed it")
	}
}

func TestResetCancelsPendingTimer(t *testing.T) {
	session := NewSession(100 * time.Millisecond)
	session.ReplaceBank(sampleBank())

	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	session.Reset()

	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance after reset: %v", err)
	}
	// The pre-reset timer would fire about now; it must not close the
	// round opened after the reset.
	time.Sleep(80 * time.Millisecond)
	if !session.Accepting() {
		t.Fatal("timer from before the reset closed a round opened after it")
	}
}

func TestReset(t *testing.T) {
	session := NewSession(time.Minute)
	session.ReplaceBank(sampleBank())

	for i := 0; i < 2; i++ {
		if _, err := session.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	session.SubmitAnswer("alice", 1)

	session.Reset()

	if scores := session.Scores(); len(scores) != 0 {
		t.Fatalf("expected empty scoreboard, got %v", scores)
	}
	if session.Accepting() {
		t.Fatal("reset session must not accept answers")
	}
	if view := session.Current(); view.Index != -1 || view.Prompt != "" {
		t.Fatalf("reset session should report no question, got %+v", view)
	}

	// The bank survives a reset; progress restarts at the first question.
	snapshot, err := session.Advance()
	if err != nil {
		t.Fatalf("advance after reset: %v", err)
	}
	if snapshot.Index != 0 || snapshot.Prompt != "Q1" {
		t.Fatalf("expected restart at index 0, got %+v", snapshot)
	}
}

func TestAnswerKeyBeforeAdvance(t *testing.T) {
	session := NewSession(time.Minute)
	session.ReplaceBank(sampleBank())
	if _, err := session.AnswerKey(); err != domain.ErrNoActiveQuestion {
		t.Fatalf("expected ErrNoActiveQuestion, got %v", err)
	}
}

func TestAnswerKeyOutOfRange(t *testing.T) {
	session := NewSession(time.Minute)
	session.ReplaceBank([]domain.Question{{Prompt: "Q", Options: []string{"only"}, Correct: 4}})
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	key, err := session.AnswerKey()
	if err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if key.Correct != 4 || key.Text != "—" {
		t.Fatalf("expected placeholder text for out-of-range index, got %+v", key)
	}
}

func TestConcurrentSubmissionsNoLostUpdates(t *testing.T) {
	session := NewSession(time.Minute)
	session.ReplaceBank([]domain.Question{{Prompt: "Q", Options: []string{"A", "B"}, Correct: 1}})
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	const submissions = 50
	var wg sync.WaitGroup
	wg.Add(submissions)
	for i := 0; i < submissions; i++ {
		go func() {
			defer wg.Done()
			session.SubmitAnswer("alice", 1)
		}()
	}
	wg.Wait()

	if scores := session.Scores(); scores["alice"] != submissions {
		t.Fatalf("lost updates: expected %d, got %d", submissions, scores["alice"])
	}
}

func TestLateSubmissionStillScores(t *testing.T) {
	// Compatibility quirk: answers are not gated on the round being open.
	session := NewSession(20 * time.Millisecond)
	session.ReplaceBank([]domain.Question{{Prompt: "Q", Options: []string{"A", "B"}, Correct: 2}})
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	time.Sleep(80 * time.Millisecond)
	if session.Accepting() {
		t.Fatal("round should be closed")
	}
	if verdict := session.SubmitAnswer("dave", 2); verdict != domain.VerdictCorrect {
		t.Fatalf("late submission should still score, got %s", verdict)
	}
	if scores := session.Scores(); scores["dave"] != 1 {
		t.Fatalf("expected dave at 1, got %v", scores)
	}
}

func TestRepeatSubmissionsAreNotDeduplicated(t *testing.T) {
	// Compatibility quirk: a player may resubmit within one round and
	// score again.
	session := NewSession(time.Minute)
	session.ReplaceBank([]domain.Question{{Prompt: "Q", Options: []string{"A", "B"}, Correct: 1}})
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	session.SubmitAnswer("erin", 1)
	session.SubmitAnswer("erin", 1)
	if scores := session.Scores(); scores["erin"] != 2 {
		t.Fatalf("expected repeat submission to score again, got %v", scores)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	session := NewSession(time.Minute)
	events, cancel := session.Subscribe()
	defer cancel()

	session.ReplaceBank(sampleBank())
	if event := <-events; event.Type != EventBankLoaded {
		t.Fatalf("expected %s, got %s", EventBankLoaded, event.Type)
	}

	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if event := <-events; event.Type != EventRoundOpened {
		t.Fatalf("expected %s, got %s", EventRoundOpened, event.Type)
	}

	session.SubmitAnswer("alice", 1)
	if event := <-events; event.Type != EventScoreChanged {
		t.Fatalf("expected %s, got %s", EventScoreChanged, event.Type)
	}

	session.Reset()
	if event := <-events; event.Type != EventReset {
		t.Fatalf("expected %s, got %s", EventReset, event.Type)
	}
}
