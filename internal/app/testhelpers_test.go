package app

import (
	"fmt"
	"testing"
	"time"

	"quizverse/internal/domain"
)

// manualTicks is a TickSource fed by the test. The channel is unbuffered so a
// completed send means the countdown loop took the tick.
type manualTicks struct {
	ch chan time.Time
}

func newManualTicks() *manualTicks {
	return &manualTicks{ch: make(chan time.Time)}
}

func (m *manualTicks) C() <-chan time.Time { return m.ch }
func (m *manualTicks) Stop()               {}

// send delivers one tick and reports whether the loop accepted it in time.
func (m *manualTicks) send(wait time.Duration) bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(wait):
		return false
	}
}

func buildQuiz(questions, minutes int) domain.Quiz {
	quiz := domain.Quiz{
		ID:              "quiz-1",
		Title:           "Practice",
		Difficulty:      domain.DifficultyEasy,
		DurationMinutes: minutes,
		Published:       true,
	}
	for i := 0; i < questions; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:           fmt.Sprintf("q%d", i+1),
			Text:         fmt.Sprintf("Question %d", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % domain.OptionCount,
		})
	}
	return quiz
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

// waitRemaining polls until the countdown has applied the ticks already sent.
func waitRemaining(t *testing.T, a *Attempt, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if a.View().RemainingSeconds == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("remaining never reached %d, got %d", want, a.View().RemainingSeconds)
}
