package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quizverse/internal/domain"
)

// AttemptRepository abstracts where live attempts are kept (in-memory, Redis-marked, etc).
type AttemptRepository interface {
	Add(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Remove(attemptID string)
	List() []*Attempt
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	PublishedQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// CatalogFilter narrows the quiz list the way the browse page does.
type CatalogFilter struct {
	Search     string
	Difficulty string
}

// PlayerService contains the quiz player use cases.
type PlayerService struct {
	attempts AttemptRepository
	quizzes  QuizRepository
	ticks    func() TickSource
	newID    func() string
	now      func() time.Time
	log      zerolog.Logger
}

// ServiceOption customizes a PlayerService.
type ServiceOption func(*PlayerService)

// WithTickSource sets the countdown tick source factory.
func WithTickSource(factory func() TickSource) ServiceOption {
	return func(s *PlayerService) { s.ticks = factory }
}

// WithIDGenerator sets how attempt ids are minted.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *PlayerService) { s.newID = newID }
}

// WithServiceClock allows deterministic timestamps in tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *PlayerService) { s.now = now }
}

func NewPlayerService(attempts AttemptRepository, quizzes QuizRepository, log zerolog.Logger, opts ...ServiceOption) *PlayerService {
	s := &PlayerService{
		attempts: attempts,
		quizzes:  quizzes,
		ticks:    SecondTicker,
		newID:    uuid.NewString,
		now:      time.Now,
		log:      log.With().Str("component", "player").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog lists published quizzes with the lock flag computed for identity.
func (s *PlayerService) Catalog(ctx context.Context, identity domain.Identity, filter CatalogFilter) ([]domain.QuizSummary, error) {
	quizzes, err := s.quizzes.PublishedQuizzes(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	summaries := make([]domain.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		if search != "" && !strings.Contains(strings.ToLower(q.Title), search) {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		summaries = append(summaries, domain.QuizSummary{
			ID:              q.ID,
			Title:           q.Title,
			CategoryID:      q.CategoryID,
			SubcategoryID:   q.SubcategoryID,
			Difficulty:      q.Difficulty,
			DurationMinutes: q.DurationMinutes,
			QuestionCount:   len(q.Questions),
			RequireSignup:   q.RequireSignup,
			Locked:          !CanAttempt(q, identity),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Title != summaries[j].Title {
			return summaries[i].Title < summaries[j].Title
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Start checks access once, then creates a running attempt with its countdown.
func (s *PlayerService) Start(ctx context.Context, quizID string, identity domain.Identity) (domain.AttemptView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptView{}, err
	}
	if !quiz.Published {
		return domain.AttemptView{}, domain.ErrQuizNotFound
	}
	if !CanAttempt(quiz, identity) {
		return domain.AttemptView{}, domain.ErrSignupRequired
	}

	attempt, err := NewAttempt(s.newID(), quiz, WithClock(s.now), WithSubmitHook(s.logSubmission))
	if err != nil {
		return domain.AttemptView{}, err
	}
	if _, err := attempt.StartCountdown(s.ticks()); err != nil {
		return domain.AttemptView{}, err
	}
	s.attempts.Add(attempt)

	s.log.Info().
		Str("attempt_id", attempt.ID()).
		Str("quiz_id", quiz.ID).
		Int("duration_minutes", quiz.DurationMinutes).
		Msg("attempt started")
	return attempt.View(), nil
}

// View returns the current snapshot of an attempt.
func (s *PlayerService) View(_ context.Context, attemptID string) (domain.AttemptView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.AttemptView{}, domain.ErrAttemptNotFound
	}
	return attempt.View(), nil
}

// SelectAnswer records an answer for the given question.
func (s *PlayerService) SelectAnswer(_ context.Context, attemptID, questionID string, option int) (domain.AttemptView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.AttemptView{}, domain.ErrAttemptNotFound
	}
	if err := attempt.SelectAnswer(questionID, option); err != nil {
		return domain.AttemptView{}, err
	}
	return attempt.View(), nil
}

// ToggleMark flips the review mark of a question.
func (s *PlayerService) ToggleMark(_ context.Context, attemptID, questionID string) (domain.AttemptView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.AttemptView{}, domain.ErrAttemptNotFound
	}
	if err := attempt.ToggleMark(questionID); err != nil {
		return domain.AttemptView{}, err
	}
	return attempt.View(), nil
}

// GoTo jumps to a question index; invalid targets leave the view unchanged.
func (s *PlayerService) GoTo(_ context.Context, attemptID string, index int) (domain.AttemptView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.AttemptView{}, domain.ErrAttemptNotFound
	}
	attempt.GoTo(index)
	return attempt.View(), nil
}

// Next moves one question forward; at the last question nothing changes.
func (s *PlayerService) Next(_ context.Context, attemptID string) (domain.AttemptView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.AttemptView{}, domain.ErrAttemptNotFound
	}
	attempt.Next()
	return attempt.View(), nil
}

// Prev moves one question back; at the first question nothing changes.
func (s *PlayerService) Prev(_ context.Context, attemptID string) (domain.AttemptView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.AttemptView{}, domain.ErrAttemptNotFound
	}
	attempt.Prev()
	return attempt.View(), nil
}

// Submit finishes the attempt; repeated calls return the stored result.
func (s *PlayerService) Submit(_ context.Context, attemptID string) (domain.Result, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.Result{}, domain.ErrAttemptNotFound
	}
	return attempt.Submit(), nil
}

// Subscribe returns a channel that receives views for an attempt.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *PlayerService) Subscribe(_ context.Context, attemptID string) (<-chan domain.AttemptView, func(), error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, nil, domain.ErrAttemptNotFound
	}
	ch, cancel := attempt.Subscribe()
	return ch, cancel, nil
}

// Exit cancels the attempt's countdown and forgets it.
func (s *PlayerService) Exit(_ context.Context, attemptID string) error {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.ErrAttemptNotFound
	}
	attempt.Exit()
	s.attempts.Remove(attemptID)
	s.log.Info().Str("attempt_id", attemptID).Msg("attempt exited")
	return nil
}

// Sweep exits submitted attempts nobody touched for longer than retention.
func (s *PlayerService) Sweep(retention time.Duration) int {
	cutoff := s.now().Add(-retention)
	removed := 0
	for _, attempt := range s.attempts.List() {
		if !attempt.Submitted() || attempt.UpdatedAt().After(cutoff) {
			continue
		}
		attempt.Exit()
		s.attempts.Remove(attempt.ID())
		removed++
	}
	if removed > 0 {
		s.log.Info().Int("count", removed).Msg("swept finished attempts")
	}
	return removed
}

func (s *PlayerService) logSubmission(attempt *Attempt, result domain.Result) {
	s.log.Info().
		Str("attempt_id", attempt.ID()).
		Str("quiz_id", attempt.Quiz().ID).
		Str("trigger", string(result.Trigger)).
		Int("correct", result.CorrectCount).
		Int("total", result.TotalCount).
		Int("score", result.ScorePercent).
		Msg("attempt submitted")
}
