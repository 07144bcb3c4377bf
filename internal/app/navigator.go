package app

import "quizverse/internal/domain"

// Navigate builds the jump-to-question overlay. Exactly one entry is current.
func Navigate(quiz domain.Quiz, current int, answers map[string]int, marked map[string]struct{}) []domain.NavStatus {
	statuses := make([]domain.NavStatus, len(quiz.Questions))
	for i, q := range quiz.Questions {
		_, answered := answers[q.ID]
		_, isMarked := marked[q.ID]
		status := domain.NavStatus{
			Index:      i,
			QuestionID: q.ID,
			IsCurrent:  i == current,
			IsAnswered: answered,
			IsMarked:   isMarked,
		}
		status.Style = navStyle(status)
		statuses[i] = status
	}
	return statuses
}

// navStyle resolves overlapping flags: current, then marked, then answered.
func navStyle(s domain.NavStatus) domain.NavStyle {
	switch {
	case s.IsCurrent:
		return domain.NavCurrent
	case s.IsMarked:
		return domain.NavMarked
	case s.IsAnswered:
		return domain.NavAnswered
	default:
		return domain.NavDefault
	}
}
