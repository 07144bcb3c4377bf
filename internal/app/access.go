package app

import "quizverse/internal/domain"

// CanAttempt is the single gate for restricted quizzes: open quizzes are
// available to everyone, restricted ones need a signed-in, verified identity.
func CanAttempt(quiz domain.Quiz, identity domain.Identity) bool {
	if !quiz.RequireSignup {
		return true
	}
	return identity.SignedIn && identity.EmailVerified
}
