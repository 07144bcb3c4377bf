package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quizverse/internal/app"
)

func TestAttemptStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr), time.Minute)
	attempt, err := app.NewAttempt("a1", sampleQuiz())
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	store.Add(attempt)
	if got, _ := mr.Get("quiz:attempt:a1"); got != "quiz-1" {
		t.Fatalf("expected attempt marker with quiz id, got %q", got)
	}
	if len(store.List()) != 1 {
		t.Fatalf("expected one attempt")
	}

	store.Remove("a1")
	if mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestAttemptStoreMarkerOutlivesQuizDuration(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr), time.Minute)
	attempt, err := app.NewAttempt("a1", sampleQuiz())
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}
	store.Add(attempt)

	// sampleQuiz runs 5 minutes; the marker must survive it plus ttl.
	if ttl := mr.TTL("quiz:attempt:a1"); ttl != 6*time.Minute {
		t.Fatalf("expected 6m marker ttl, got %s", ttl)
	}

	mr.FastForward(5 * time.Minute)
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected attempt")
	}
	if ttl := mr.TTL("quiz:attempt:a1"); ttl != 6*time.Minute {
		t.Fatalf("expected marker ttl refreshed on use, got %s", ttl)
	}
}
