package domain

import "time"

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Difficulty levels offered by the catalog.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID           string   `json:"id" validate:"required"`
	Text         string   `json:"text" validate:"required"`
	Options      []string `json:"options" validate:"len=4,dive,required"`
	CorrectIndex int      `json:"correctIndex" validate:"min=0,max=3"`
}

// Quiz is the immutable record handed to the player.
type Quiz struct {
	ID              string     `json:"id" validate:"required"`
	Title           string     `json:"title" validate:"required"`
	CategoryID      string     `json:"categoryId,omitempty"`
	SubcategoryID   string     `json:"subcategoryId,omitempty"`
	Difficulty      string     `json:"difficulty,omitempty" validate:"omitempty,oneof=Easy Medium Hard"`
	DurationMinutes int        `json:"durationMinutes" validate:"min=1"`
	RequireSignup   bool       `json:"requireSignup"`
	Published       bool       `json:"published"`
	Questions       []Question `json:"questions" validate:"min=1,unique=ID,dive"`
}

// QuestionIndex returns the position of the question with the given id, or -1.
func (q Quiz) QuestionIndex(questionID string) int {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

// QuizSummary is a catalog row; Locked reflects the caller's identity.
type QuizSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	CategoryID      string `json:"categoryId,omitempty"`
	SubcategoryID   string `json:"subcategoryId,omitempty"`
	Difficulty      string `json:"difficulty,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
	QuestionCount   int    `json:"questionCount"`
	RequireSignup   bool   `json:"requireSignup"`
	Locked          bool   `json:"locked"`
}

// Category groups quizzes on the landing page.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	Slug  string `json:"slug" validate:"required"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order"`
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required"`
	Slug       string `json:"slug" validate:"required"`
	CategoryID string `json:"categoryId" validate:"required"`
}

// Identity is what the identity provider knows about the caller.
type Identity struct {
	SignedIn      bool   `json:"signedIn"`
	EmailVerified bool   `json:"emailVerified"`
	Email         string `json:"email,omitempty"`
	Admin         bool   `json:"admin,omitempty"`
}

// Anonymous is the identity of a caller without a token.
var Anonymous = Identity{}

// SubmitTrigger records why an attempt was submitted.
type SubmitTrigger string

const (
	TriggerManual  SubmitTrigger = "manual"
	TriggerTimeout SubmitTrigger = "timeout"
)

// Result is computed once when an attempt is submitted.
type Result struct {
	CorrectCount   int           `json:"correctCount"`
	TotalCount     int           `json:"totalCount"`
	ScorePercent   int           `json:"scorePercent"`
	AttemptedCount int           `json:"attemptedCount"`
	MarkedCount    int           `json:"markedCount"`
	Trigger        SubmitTrigger `json:"trigger"`
	SubmittedAt    time.Time     `json:"submittedAt"`
}

// NavStyle is the single visual state of a navigator button.
type NavStyle string

const (
	NavCurrent  NavStyle = "current"
	NavMarked   NavStyle = "marked"
	NavAnswered NavStyle = "answered"
	NavDefault  NavStyle = "default"
)

// NavStatus describes one question in the jump-to-question overlay.
type NavStatus struct {
	Index      int      `json:"index"`
	QuestionID string   `json:"questionId"`
	IsCurrent  bool     `json:"isCurrent"`
	IsAnswered bool     `json:"isAnswered"`
	IsMarked   bool     `json:"isMarked"`
	Style      NavStyle `json:"style"`
}

// AttemptStatus is the state of the player state machine.
type AttemptStatus string

const (
	AttemptRunning   AttemptStatus = "running"
	AttemptSubmitted AttemptStatus = "submitted"
)

// QuestionView is a question without its correct answer.
type QuestionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// AttemptView is the snapshot the presentation layer renders.
type AttemptView struct {
	AttemptID        string        `json:"attemptId"`
	QuizID           string        `json:"quizId"`
	Title            string        `json:"title"`
	Index            int           `json:"index"`
	Total            int           `json:"total"`
	Question         QuestionView  `json:"question"`
	Selected         *int          `json:"selected"`
	Marked           bool          `json:"marked"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Remaining        string        `json:"remaining"`
	Navigator        []NavStatus   `json:"navigator"`
	AnsweredCount    int           `json:"answeredCount"`
	MarkedCount      int           `json:"markedCount"`
	Status           AttemptStatus `json:"status"`
	Result           *Result       `json:"result,omitempty"`
}
