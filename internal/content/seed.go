package content

import (
	"context"
	"fmt"

	"quizverse/internal/domain"
)

// SampleQuizzes are the two demo quizzes a fresh install starts with.
func SampleQuizzes() []domain.Quiz {
	general := domain.Quiz{
		ID:              "sample-1",
		Title:           "General Knowledge Basics",
		CategoryID:      "general",
		Difficulty:      domain.DifficultyEasy,
		DurationMinutes: 10,
		RequireSignup:   true,
		Published:       true,
	}
	for i := 0; i < 10; i++ {
		general.Questions = append(general.Questions, domain.Question{
			ID:           fmt.Sprintf("q%d", i+1),
			Text:         fmt.Sprintf("Sample question %d: Which option is correct?", i+1),
			Options:      []string{"Option A", "Option B", "Option C", "Option D"},
			CorrectIndex: i % domain.OptionCount,
		})
	}

	js := domain.Quiz{
		ID:              "sample-2",
		Title:           "JavaScript Fundamentals",
		CategoryID:      "programming",
		Difficulty:      domain.DifficultyMedium,
		DurationMinutes: 15,
		Published:       true,
	}
	for i := 0; i < 12; i++ {
		js.Questions = append(js.Questions, domain.Question{
			ID:           fmt.Sprintf("js-%d", i+1),
			Text:         fmt.Sprintf("JS question %d: Choose the right answer.", i+1),
			Options:      []string{"let", "var", "const", "function"},
			CorrectIndex: i % domain.OptionCount,
		})
	}
	return []domain.Quiz{general, js}
}

// Seed stores the sample quizzes when the store holds no quizzes yet.
// It reports how many quizzes were inserted.
func (r *Repository) Seed(ctx context.Context) (int, error) {
	existing, err := r.store.List(ctx, KindQuizzes)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	samples := SampleQuizzes()
	for _, quiz := range samples {
		if _, err := r.SaveQuiz(ctx, quiz); err != nil {
			return 0, fmt.Errorf("seed %s: %w", quiz.ID, err)
		}
	}
	return len(samples), nil
}
