package app

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"quizverse/internal/domain"
)

func TestCountdownAutoSubmitsAtZero(t *testing.T) {
	var calls int32
	counting := func(q domain.Quiz, answers map[string]int, marked map[string]struct{}) domain.Result {
		atomic.AddInt32(&calls, 1)
		return Score(q, answers, marked)
	}
	a, _ := NewAttempt("a1", buildQuiz(10, 10), WithScorer(counting))
	_ = a.SelectAnswer("q1", 0)

	ticks := newManualTicks()
	cd, err := a.StartCountdown(ticks)
	if err != nil {
		t.Fatalf("start countdown: %v", err)
	}

	for i := 0; i < 599; i++ {
		if !ticks.send(time.Second) {
			t.Fatalf("tick %d not consumed", i+1)
		}
	}
	waitRemaining(t, a, 1)
	view := a.View()
	if view.Status != domain.AttemptRunning || view.RemainingSeconds != 1 || view.Remaining != "00:01" {
		t.Fatalf("expected one second left, got %+v", view)
	}

	if !ticks.send(time.Second) {
		t.Fatalf("final tick not consumed")
	}
	select {
	case <-cd.Done():
	case <-time.After(time.Second):
		t.Fatalf("countdown did not stop after reaching zero")
	}

	result, ok := a.Result()
	if !ok || result.Trigger != domain.TriggerTimeout {
		t.Fatalf("expected timeout submission, got %+v (submitted=%v)", result, ok)
	}
	if result.CorrectCount != 1 || result.ScorePercent != 10 {
		t.Fatalf("unexpected result %+v", result)
	}
	if a.View().RemainingSeconds != 0 {
		t.Fatalf("remaining must be zero after timeout")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one scoring pass, got %d", calls)
	}

	if ticks.send(50 * time.Millisecond) {
		t.Fatalf("countdown kept consuming ticks after submission")
	}
	a.Submit()
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("manual submit after timeout must not rescore")
	}
}

func TestManualSubmitStopsCountdown(t *testing.T) {
	a, _ := NewAttempt("a1", buildQuiz(2, 1))
	ticks := newManualTicks()
	cd, _ := a.StartCountdown(ticks)

	ticks.send(time.Second)
	waitRemaining(t, a, 59)
	result := a.Submit()
	if result.Trigger != domain.TriggerManual {
		t.Fatalf("expected manual trigger, got %s", result.Trigger)
	}

	select {
	case <-cd.Done():
	case <-time.After(time.Second):
		t.Fatalf("countdown still running after submit")
	}
	if a.View().RemainingSeconds != 59 {
		t.Fatalf("expected remaining frozen at 59, got %d", a.View().RemainingSeconds)
	}
}

func TestExitStopsCountdown(t *testing.T) {
	a, _ := NewAttempt("a1", buildQuiz(2, 1))
	ticks := newManualTicks()
	cd, _ := a.StartCountdown(ticks)

	for i := 0; i < 3; i++ {
		ticks.send(time.Second)
	}
	waitRemaining(t, a, 57)
	a.Exit()
	select {
	case <-cd.Done():
	case <-time.After(time.Second):
		t.Fatalf("countdown still running after exit")
	}

	before := a.View()
	if ticks.send(50 * time.Millisecond) {
		t.Fatalf("tick delivered after exit")
	}
	after := a.View()
	if before.RemainingSeconds != 57 || after.RemainingSeconds != before.RemainingSeconds {
		t.Fatalf("expected remaining frozen at 57, got %d then %d", before.RemainingSeconds, after.RemainingSeconds)
	}
	if after.Status != domain.AttemptRunning {
		t.Fatalf("exit must not submit, got %s", after.Status)
	}
}

func TestSingleCountdownPerAttempt(t *testing.T) {
	a, _ := NewAttempt("a1", buildQuiz(2, 1))
	defer a.Exit()

	cd, err := a.StartCountdown(newManualTicks())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := a.StartCountdown(newManualTicks()); !errors.Is(err, domain.ErrCountdownStarted) {
		t.Fatalf("expected second countdown rejected, got %v", err)
	}
	if err := cd.Start(); !errors.Is(err, domain.ErrCountdownStarted) {
		t.Fatalf("expected restart rejected, got %v", err)
	}
}

func TestCountdownStopBeforeStart(t *testing.T) {
	a, _ := NewAttempt("a1", buildQuiz(2, 1))
	cd := newCountdown(a, newManualTicks())

	cd.Stop()
	cd.Stop()
	if err := cd.Start(); err != nil {
		t.Fatalf("start after stop: %v", err)
	}
	select {
	case <-cd.Done():
	default:
		t.Fatalf("expected done closed for a stopped countdown")
	}
}
