package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quizverse/internal/app"
	"quizverse/internal/content"
	"quizverse/internal/domain"
	"quizverse/internal/infra/memory"
)

// idleTicks never fires, so attempts only end by submit or exit.
type idleTicks struct{ ch chan time.Time }

func (i idleTicks) C() <-chan time.Time { return i.ch }
func (i idleTicks) Stop()               {}

func newTestService(t *testing.T) (*app.PlayerService, *memory.AttemptStore, *time.Time) {
	t.Helper()
	ctx := context.Background()
	repo := content.NewRepository(memory.NewRecordStore())
	if _, err := repo.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	hidden := content.SampleQuizzes()[1]
	hidden.ID = "draft"
	hidden.Title = "Draft quiz"
	hidden.Published = false
	if _, err := repo.SaveQuiz(ctx, hidden); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	attempts := memory.NewAttemptStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	seq := 0
	service := app.NewPlayerService(attempts, memory.NewQuizRepository(repo, time.Minute), zerolog.New(io.Discard),
		app.WithTickSource(func() app.TickSource { return idleTicks{ch: make(chan time.Time)} }),
		app.WithIDGenerator(func() string { seq++; return fmt.Sprintf("attempt-%d", seq) }),
		app.WithServiceClock(func() time.Time { return now }),
	)
	return service, attempts, &now
}

var verified = domain.Identity{SignedIn: true, EmailVerified: true, Email: "ann@example.com"}

func TestCatalogFiltersAndLocks(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	all, err := service.Catalog(ctx, domain.Anonymous, app.CatalogFilter{})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two published quizzes, got %d", len(all))
	}
	if all[0].ID != "sample-1" || !all[0].Locked || all[1].Locked {
		t.Fatalf("unexpected lock flags %+v", all)
	}

	signedIn, _ := service.Catalog(ctx, verified, app.CatalogFilter{})
	if signedIn[0].Locked {
		t.Fatalf("verified user must see sample-1 unlocked")
	}

	found, _ := service.Catalog(ctx, domain.Anonymous, app.CatalogFilter{Search: "javascript"})
	if len(found) != 1 || found[0].ID != "sample-2" {
		t.Fatalf("expected case-insensitive search hit, got %+v", found)
	}
	easy, _ := service.Catalog(ctx, domain.Anonymous, app.CatalogFilter{Difficulty: domain.DifficultyEasy})
	if len(easy) != 1 || easy[0].ID != "sample-1" {
		t.Fatalf("expected only easy quiz, got %+v", easy)
	}
}

func TestStartChecksAccess(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	if _, err := service.Start(ctx, "sample-1", domain.Anonymous); !errors.Is(err, domain.ErrSignupRequired) {
		t.Fatalf("expected signup required, got %v", err)
	}
	unverified := domain.Identity{SignedIn: true}
	if _, err := service.Start(ctx, "sample-1", unverified); !errors.Is(err, domain.ErrSignupRequired) {
		t.Fatalf("expected signup required for unverified email, got %v", err)
	}
	if _, err := service.Start(ctx, "draft", verified); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected unpublished quiz hidden, got %v", err)
	}
	if _, err := service.Start(ctx, "missing", verified); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	view, err := service.Start(ctx, "sample-1", verified)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.AttemptID != "attempt-1" || view.RemainingSeconds != 600 || view.Total != 10 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestPlayThroughAndSubmit(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	view, err := service.Start(ctx, "sample-2", domain.Anonymous)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	id := view.AttemptID

	// js-1 correct index 0, js-2 correct index 1.
	if _, err := service.SelectAnswer(ctx, id, "js-1", 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := service.SelectAnswer(ctx, id, "js-2", 3); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := service.ToggleMark(ctx, id, "js-3"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	view, err = service.GoTo(ctx, id, 2)
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	if view.Index != 2 || !view.Marked || view.Navigator[2].Style != domain.NavCurrent || view.Navigator[0].Style != domain.NavAnswered {
		t.Fatalf("unexpected navigation state %+v", view)
	}

	result, err := service.Submit(ctx, id)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.CorrectCount != 1 || result.TotalCount != 12 || result.ScorePercent != 8 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.AttemptedCount != 2 || result.MarkedCount != 1 {
		t.Fatalf("unexpected counters %+v", result)
	}
	again, _ := service.Submit(ctx, id)
	if again != result {
		t.Fatalf("expected stable result, got %+v", again)
	}
}

func TestUnknownAttempt(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	if _, err := service.View(ctx, "nope"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
	if _, err := service.Submit(ctx, "nope"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
	if err := service.Exit(ctx, "nope"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
}

func TestServiceSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	view, _ := service.Start(ctx, "sample-2", domain.Anonymous)

	ch, cancel, err := service.Subscribe(ctx, view.AttemptID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	<-ch // initial snapshot

	if _, err := service.SelectAnswer(ctx, view.AttemptID, "js-1", 2); err != nil {
		t.Fatalf("answer: %v", err)
	}
	update := <-ch
	if update.AnsweredCount != 1 || update.Selected == nil || *update.Selected != 2 {
		t.Fatalf("expected answered update, got %+v", update)
	}
}

func TestExitAndSweep(t *testing.T) {
	ctx := context.Background()
	service, attempts, now := newTestService(t)

	running, _ := service.Start(ctx, "sample-2", domain.Anonymous)
	finished, _ := service.Start(ctx, "sample-2", domain.Anonymous)
	exited, _ := service.Start(ctx, "sample-2", domain.Anonymous)
	if _, err := service.Submit(ctx, finished.AttemptID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := service.Exit(ctx, exited.AttemptID); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if _, ok := attempts.Get(exited.AttemptID); ok {
		t.Fatalf("exited attempt should be forgotten")
	}

	if removed := service.Sweep(time.Hour); removed != 0 {
		t.Fatalf("fresh attempts must survive, removed %d", removed)
	}
	*now = now.Add(2 * time.Hour)
	if removed := service.Sweep(time.Hour); removed != 1 {
		t.Fatalf("expected one stale attempt removed, got %d", removed)
	}
	if _, ok := attempts.Get(running.AttemptID); !ok {
		t.Fatalf("running attempt must not be swept")
	}
}

func TestStepNavigation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	view, _ := service.Start(ctx, "sample-2", domain.Anonymous)

	view, _ = service.Prev(ctx, view.AttemptID)
	if view.Index != 0 {
		t.Fatalf("prev at start must stay, got %d", view.Index)
	}
	view, _ = service.Next(ctx, view.AttemptID)
	view, _ = service.Next(ctx, view.AttemptID)
	if view.Index != 2 || view.Question.ID != "js-3" {
		t.Fatalf("expected third question, got %+v", view.Question)
	}
}
