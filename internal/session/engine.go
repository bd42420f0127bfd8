// Package session hosts a single timed exam attempt: the answer registry,
// navigation state, countdown timer, and the at-most-once submission
// protocol. One Engine exists per active attempt and owns all of its mutable
// state; nothing is shared between attempts.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/model"
	"github.com/eduprep/exam-engine/internal/scoring"
)

// SubmissionState tracks where the attempt is in the submission protocol.
type SubmissionState string

const (
	NotSubmitted SubmissionState = "NOT_SUBMITTED"
	Submitting   SubmissionState = "SUBMITTING"
	Submitted    SubmissionState = "SUBMITTED"
	SubmitFailed SubmissionState = "SUBMIT_FAILED"
)

// Submission protocol errors.
var (
	ErrAlreadySubmitted = errors.New("attempt has already been submitted")
	ErrSubmitInFlight   = errors.New("submission is already in progress")
	ErrSessionFrozen    = errors.New("session is frozen, answers can no longer change")
	ErrAuthRequired     = errors.New("no user identity available, re-authentication required")
)

// Submitter delivers a computed result to the remote store.
type Submitter interface {
	SubmitResult(ctx context.Context, examID uuid.UUID, bearer string, result model.ExamResult) error
}

// Outcome describes a completed submission attempt.
type Outcome struct {
	Result        model.ExamResult
	AutoSubmitted bool
	// Err is non-nil when the remote store rejected the result. The
	// computed result is retained on the engine and may be retried.
	Err error
}

// Hooks are optional engine callbacks. They run on the timer goroutine (ticks
// and auto-submission) and must not block.
type Hooks struct {
	OnTick     func(remaining int)
	OnFinished func(Outcome)
}

// Config assembles an Engine.
type Config struct {
	Paper     model.ExamPaper
	Bearer    string // bearer credential forwarded to the remote store
	StudentID string
	Submitter Submitter
	Hooks     Hooks
	Logger    zerolog.Logger

	// RemainingSeconds overrides the exam's full duration when resuming an
	// interrupted attempt. Zero means start fresh.
	RemainingSeconds int
	// RestoredAnswers seeds the registry when resuming. Unknown question
	// IDs are dropped.
	RestoredAnswers map[model.QuestionID]string
	// TickInterval defaults to one second; tests may compress it.
	TickInterval time.Duration

	now func() time.Time // test seam
}

// Snapshot is a point-in-time view of the session state.
type Snapshot struct {
	CurrentIndex       int                         `json:"current_index"`
	SecondsRemaining   int                         `json:"seconds_remaining"`
	Clock              string                      `json:"clock"`
	Answers            map[model.QuestionID]string `json:"answers"`
	SubmissionInFlight bool                        `json:"submission_in_flight"`
	Submitted          bool                        `json:"submitted"`
}

// Engine drives one exam attempt from load to terminal state.
//
// All interaction funnels through the engine's lock, so a timer tick and a
// user action can never interleave inside a critical section. In particular
// the submission guard is evaluated synchronously, before any network call
// starts, which is what makes submission at-most-once even when timer expiry
// and a manual submit race.
type Engine struct {
	mu sync.Mutex

	exam      model.Exam
	questions []model.Question
	registry  *AnswerRegistry
	nav       *Navigator
	timer     *Countdown

	bearer    string
	studentID string
	submitter Submitter
	hooks     Hooks
	log       zerolog.Logger
	now       func() time.Time

	state  SubmissionState
	result *model.ExamResult
}

// New builds an Engine from a loaded exam paper. The timer stays Idle until
// Start is called; if construction fails, nothing was started and there is
// nothing to tear down.
func New(cfg Config) (*Engine, error) {
	if len(cfg.Paper.Questions) == 0 {
		return nil, errors.New("exam paper has no questions")
	}
	if cfg.Submitter == nil {
		return nil, errors.New("submitter is required")
	}

	remaining := cfg.RemainingSeconds
	if remaining <= 0 {
		remaining = cfg.Paper.Exam.DurationSeconds()
	}
	if remaining <= 0 {
		return nil, errors.New("exam has no time allotted")
	}

	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	now := cfg.now
	if now == nil {
		now = time.Now
	}

	registry := NewAnswerRegistry(cfg.Paper.Questions)
	for qid, sel := range cfg.RestoredAnswers {
		_ = registry.Select(qid, sel) // unknown IDs from a stale cache are dropped
	}

	return &Engine{
		exam:      cfg.Paper.Exam,
		questions: cfg.Paper.Questions,
		registry:  registry,
		nav:       NewNavigator(len(cfg.Paper.Questions)),
		timer:     NewCountdown(remaining, interval),
		bearer:    cfg.Bearer,
		studentID: cfg.StudentID,
		submitter: cfg.Submitter,
		hooks:     cfg.Hooks,
		log:       cfg.Logger.With().Str("component", "session_engine").Str("exam_id", cfg.Paper.Exam.ID.String()).Logger(),
		now:       now,
		state:     NotSubmitted,
	}, nil
}

// Start begins the countdown. Expiry triggers the auto-submit path.
func (e *Engine) Start() error {
	return e.timer.Start(e.hooks.OnTick, func() {
		e.log.Info().Msg("countdown expired, auto-submitting")
		// Best effort: auto-submission must not be tied to any request
		// context, the student may be gone.
		_, _ = e.submit(context.Background(), true)
	})
}

// Close tears the session down: the timer is cancelled so no tick can fire
// afterwards. A submission already in flight is left to complete or fail on
// its own.
func (e *Engine) Close() {
	e.timer.Stop()
}

// Exam returns the immutable exam metadata.
func (e *Engine) Exam() model.Exam {
	return e.exam
}

// Questions returns the immutable ordered question list.
func (e *Engine) Questions() []model.Question {
	return e.questions
}

// Select records a selection for a question. It overwrites idempotently and
// fails once the session is frozen by submission.
func (e *Engine) Select(questionID model.QuestionID, optionText string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != NotSubmitted && e.state != SubmitFailed {
		return ErrSessionFrozen
	}
	return e.registry.Select(questionID, optionText)
}

// Answer returns the current selection for a question.
func (e *Engine) Answer(questionID model.QuestionID) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Get(questionID)
}

// Next moves to the following question, clamped at the last index.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.Next()
}

// Previous moves to the prior question, clamped at index 0.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.Previous()
}

// GoTo jumps to an explicit question index.
func (e *Engine) GoTo(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.GoTo(index)
}

// CurrentIndex returns the displayed question index.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Current()
}

// State returns a copy of the live session state.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	remaining := e.timer.Remaining()
	return Snapshot{
		CurrentIndex:       e.nav.Current(),
		SecondsRemaining:   remaining,
		Clock:              FormatClock(remaining),
		Answers:            e.registry.Snapshot(),
		SubmissionInFlight: e.state == Submitting,
		Submitted:          e.state == Submitted,
	}
}

// Result returns the computed result, if submission has been attempted.
func (e *Engine) Result() (model.ExamResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return model.ExamResult{}, false
	}
	return *e.result, true
}

// SubmissionStatus returns where the attempt is in the protocol.
func (e *Engine) SubmissionStatus() SubmissionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Submit runs the manual submission path. After a remote failure the retained
// result is resent as-is; answers are not re-scored.
func (e *Engine) Submit(ctx context.Context) (model.ExamResult, error) {
	return e.submit(ctx, false)
}

func (e *Engine) submit(ctx context.Context, auto bool) (model.ExamResult, error) {
	e.mu.Lock()

	switch e.state {
	case Submitting:
		e.mu.Unlock()
		return model.ExamResult{}, ErrSubmitInFlight
	case Submitted:
		e.mu.Unlock()
		return model.ExamResult{}, ErrAlreadySubmitted
	}

	// Never send an anonymous result. The attempt stays open so the
	// student can re-authenticate and retry.
	if e.bearer == "" {
		e.mu.Unlock()
		return model.ExamResult{}, ErrAuthRequired
	}

	// Guard passed: freeze the session before anything suspends. The timer
	// is stopped here so a straggling tick cannot re-enter this path.
	e.state = Submitting
	e.timer.Stop()

	var result model.ExamResult
	if e.result != nil {
		// Retry after SubmitFailed: the score was already computed and
		// must not be recomputed.
		result = *e.result
	} else {
		result = scoring.Score(e.exam, e.questions, e.registry.Snapshot(), e.now().UTC(), auto)
		e.result = &result
	}
	bearer := e.bearer
	e.mu.Unlock()

	err := e.submitter.SubmitResult(ctx, e.exam.ID, bearer, result)

	e.mu.Lock()
	if err != nil {
		e.state = SubmitFailed
		e.log.Error().Err(err).Bool("auto", auto).Msg("result submission failed, score retained")
	} else {
		e.state = Submitted
		e.log.Info().
			Float64("total_marks", result.TotalMarks).
			Int("correct", result.CorrectCount).
			Int("wrong", result.WrongCount).
			Bool("auto", auto).
			Msg("attempt submitted")
	}
	e.mu.Unlock()

	if e.hooks.OnFinished != nil {
		e.hooks.OnFinished(Outcome{Result: result, AutoSubmitted: result.IsAutoSubmitted, Err: err})
	}
	return result, err
}
