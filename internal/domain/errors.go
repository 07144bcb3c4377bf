package domain

import "errors"

var (
	// ErrAttemptNotFound is returned when an attempt id is unknown or already exited.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question ID that is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionOutOfRange indicates an answer index outside the question's options.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrEmptyQuiz is returned when an attempt is built from a quiz without questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrInvalidQuiz wraps structural validation failures of a quiz record.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrSignupRequired is returned when a restricted quiz is started without a verified identity.
	ErrSignupRequired = errors.New("sign in with a verified email to attempt this quiz")
	// ErrCountdownStarted is a programming error: one countdown per attempt.
	ErrCountdownStarted = errors.New("countdown already started")
	// ErrCategoryNotFound is returned when a subcategory or quiz references a missing category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrRecordNotFound is returned by record stores for missing keys.
	ErrRecordNotFound = errors.New("record not found")
	// ErrTokenInvalid is returned for malformed, expired or mis-signed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrInvalidCredentials is returned when admin login fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
