package app

import (
	"fmt"
	"sync"
	"time"

	"quizverse/internal/domain"
	"quizverse/internal/validator"
)

// Attempt is one run of a user through a quiz: Running until submitted by
// the user or by the countdown, then Submitted for good.
type Attempt struct {
	id       string
	quiz     domain.Quiz
	score    Scorer
	now      func() time.Time
	onSubmit func(*Attempt, domain.Result)

	mu          sync.Mutex
	index       int
	answers     map[string]int
	marked      map[string]struct{}
	remaining   int
	submitted   bool
	exited      bool
	result      domain.Result
	startedAt   time.Time
	updatedAt   time.Time
	countdown   *Countdown
	subscribers map[chan domain.AttemptView]struct{}
}

// AttemptOption customizes an Attempt at construction.
type AttemptOption func(*Attempt)

// WithScorer replaces the default Score function.
func WithScorer(scorer Scorer) AttemptOption {
	return func(a *Attempt) { a.score = scorer }
}

// WithClock allows deterministic timestamps in tests.
func WithClock(now func() time.Time) AttemptOption {
	return func(a *Attempt) { a.now = now }
}

// WithSubmitHook registers a callback that runs once, after the attempt is
// submitted and outside its lock.
func WithSubmitHook(hook func(*Attempt, domain.Result)) AttemptOption {
	return func(a *Attempt) { a.onSubmit = hook }
}

// NewAttempt seeds a Running attempt: index 0, nothing answered or marked,
// and the full duration on the clock.
func NewAttempt(id string, quiz domain.Quiz, opts ...AttemptOption) (*Attempt, error) {
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	if err := validator.Struct(quiz); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuiz, err)
	}

	a := &Attempt{
		id:          id,
		quiz:        quiz,
		score:       Score,
		now:         time.Now,
		answers:     make(map[string]int),
		marked:      make(map[string]struct{}),
		remaining:   quiz.DurationMinutes * 60,
		subscribers: make(map[chan domain.AttemptView]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.startedAt = a.now()
	a.updatedAt = a.startedAt
	return a, nil
}

// ID returns the attempt identifier.
func (a *Attempt) ID() string { return a.id }

// Quiz returns the quiz this attempt runs.
func (a *Attempt) Quiz() domain.Quiz { return a.quiz }

// SelectAnswer records (or overwrites) the chosen option for a question.
// It does not move the current index and is a no-op once submitted.
func (a *Attempt) SelectAnswer(questionID string, option int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted || a.exited {
		return nil
	}
	idx := a.quiz.QuestionIndex(questionID)
	if idx < 0 {
		return domain.ErrQuestionNotFound
	}
	if option < 0 || option >= len(a.quiz.Questions[idx].Options) {
		return domain.ErrOptionOutOfRange
	}
	a.answers[questionID] = option
	a.touchLocked()
	return nil
}

// ToggleMark flips the review mark of a question. No-op once submitted.
func (a *Attempt) ToggleMark(questionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted || a.exited {
		return nil
	}
	if a.quiz.QuestionIndex(questionID) < 0 {
		return domain.ErrQuestionNotFound
	}
	if _, ok := a.marked[questionID]; ok {
		delete(a.marked, questionID)
	} else {
		a.marked[questionID] = struct{}{}
	}
	a.touchLocked()
	return nil
}

// GoTo moves to index; out-of-range targets are ignored.
func (a *Attempt) GoTo(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goToLocked(index)
}

// Next moves forward one question when possible.
func (a *Attempt) Next() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goToLocked(a.index + 1)
}

// Prev moves back one question when possible.
func (a *Attempt) Prev() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goToLocked(a.index - 1)
}

func (a *Attempt) goToLocked(index int) {
	if a.exited || index < 0 || index >= len(a.quiz.Questions) {
		return
	}
	a.index = index
	a.touchLocked()
}

// Submit freezes the attempt and scores it. Later calls return the same Result.
// An exited attempt is never scored; Submit returns its unchanged result.
func (a *Attempt) Submit() domain.Result {
	return a.submit(domain.TriggerManual)
}

func (a *Attempt) submit(trigger domain.SubmitTrigger) domain.Result {
	a.mu.Lock()
	result, first := a.submitLocked(trigger)
	hook := a.onSubmit
	a.mu.Unlock()

	if first && hook != nil {
		hook(a, result)
	}
	return result
}

func (a *Attempt) submitLocked(trigger domain.SubmitTrigger) (domain.Result, bool) {
	if a.submitted || a.exited {
		return a.result, false
	}
	a.submitted = true
	if a.countdown != nil {
		a.countdown.Stop()
	}
	result := a.score(a.quiz, a.answers, a.marked)
	result.Trigger = trigger
	result.SubmittedAt = a.now()
	a.result = result
	a.touchLocked()
	return result, true
}

// tick applies one countdown second and reports whether the countdown should continue.
func (a *Attempt) tick() bool {
	a.mu.Lock()
	if a.submitted || a.exited {
		a.mu.Unlock()
		return false
	}
	if a.remaining <= 1 {
		a.remaining = 0
		result, first := a.submitLocked(domain.TriggerTimeout)
		hook := a.onSubmit
		a.mu.Unlock()
		if first && hook != nil {
			hook(a, result)
		}
		return false
	}
	a.remaining--
	a.broadcastLocked()
	a.mu.Unlock()
	return true
}

// StartCountdown attaches and starts the attempt's only countdown.
func (a *Attempt) StartCountdown(source TickSource) (*Countdown, error) {
	a.mu.Lock()
	if a.countdown != nil {
		a.mu.Unlock()
		return nil, domain.ErrCountdownStarted
	}
	cd := newCountdown(a, source)
	a.countdown = cd
	a.mu.Unlock()

	if err := cd.Start(); err != nil {
		return nil, err
	}
	return cd, nil
}

// Exit tears the attempt down: the countdown stops and subscribers are closed.
// Nothing changes the attempt afterwards.
func (a *Attempt) Exit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.exited {
		return
	}
	a.exited = true
	if a.countdown != nil {
		a.countdown.Stop()
	}
	for ch := range a.subscribers {
		delete(a.subscribers, ch)
		close(ch)
	}
}

// Result returns the submission result, if any.
func (a *Attempt) Result() (domain.Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, a.submitted
}

// Submitted reports whether the attempt reached its terminal state.
func (a *Attempt) Submitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitted
}

// UpdatedAt is the time of the last state change.
func (a *Attempt) UpdatedAt() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.updatedAt
}

// View returns the presentation snapshot.
func (a *Attempt) View() domain.AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

// Subscribe returns a channel of views pushed after every change and tick.
// The caller must invoke the returned cancel function to avoid leaks.
func (a *Attempt) Subscribe() (<-chan domain.AttemptView, func()) {
	ch := make(chan domain.AttemptView, 8)

	a.mu.Lock()
	if a.exited {
		a.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	a.subscribers[ch] = struct{}{}
	ch <- a.viewLocked()
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Attempt) touchLocked() {
	a.updatedAt = a.now()
	a.broadcastLocked()
}

func (a *Attempt) broadcastLocked() {
	if len(a.subscribers) == 0 {
		return
	}
	view := a.viewLocked()
	for ch := range a.subscribers {
		select {
		case ch <- view:
		default:
			// Drop the oldest view so slow readers always catch up to the latest.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (a *Attempt) viewLocked() domain.AttemptView {
	q := a.quiz.Questions[a.index]
	_, marked := a.marked[q.ID]

	view := domain.AttemptView{
		AttemptID: a.id,
		QuizID:    a.quiz.ID,
		Title:     a.quiz.Title,
		Index:     a.index,
		Total:     len(a.quiz.Questions),
		Question: domain.QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		},
		Marked:           marked,
		RemainingSeconds: a.remaining,
		Remaining:        FormatClock(a.remaining),
		Navigator:        Navigate(a.quiz, a.index, a.answers, a.marked),
		AnsweredCount:    len(a.answers),
		MarkedCount:      len(a.marked),
		Status:           domain.AttemptRunning,
	}
	if choice, ok := a.answers[q.ID]; ok {
		view.Selected = &choice
	}
	if a.submitted {
		result := a.result
		view.Status = domain.AttemptSubmitted
		view.Result = &result
	}
	return view
}

// FormatClock renders seconds as zero-padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
