package app

import "quizverse/internal/domain"

// Scorer turns the final answer and mark sets into a Result. It must be pure.
type Scorer func(quiz domain.Quiz, answers map[string]int, marked map[string]struct{}) domain.Result

// Score counts exact matches against each question's correct index.
// Unanswered questions stay in the denominator.
func Score(quiz domain.Quiz, answers map[string]int, marked map[string]struct{}) domain.Result {
	correct := 0
	for _, q := range quiz.Questions {
		if choice, ok := answers[q.ID]; ok && choice == q.CorrectIndex {
			correct++
		}
	}
	total := len(quiz.Questions)
	return domain.Result{
		CorrectCount:   correct,
		TotalCount:     total,
		ScorePercent:   percent(correct, total),
		AttemptedCount: len(answers),
		MarkedCount:    len(marked),
	}
}

// percent rounds correct/total*100 half-up using integer arithmetic.
func percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (correct*200 + total) / (2 * total)
}
