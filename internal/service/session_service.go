package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/config"
	"github.com/eduprep/exam-engine/internal/model"
	"github.com/eduprep/exam-engine/internal/remote"
	"github.com/eduprep/exam-engine/internal/repository"
	"github.com/eduprep/exam-engine/internal/scoring"
	"github.com/eduprep/exam-engine/internal/session"
	"github.com/eduprep/exam-engine/internal/worker"
)

// Session lifecycle errors.
var (
	ErrNoActiveSession  = errors.New("no active session for this exam")
	ErrAttemptSubmitted = errors.New("this attempt was already submitted")
	ErrAttemptExpired   = errors.New("attempt time was exhausted, result auto-submitted")
)

// SessionEvent is pushed to WebSocket subscribers of an attempt.
type SessionEvent struct {
	Type             string
	SecondsRemaining int
	Outcome          *session.Outcome
}

const (
	EventTick     = "tick"
	EventFinished = "finished"
)

// StartedSession is what the handler returns when an attempt begins or
// resumes.
type StartedSession struct {
	Exam      model.Exam       `json:"exam"`
	Questions []model.Question `json:"questions"`
	State     session.Snapshot `json:"state"`
	Resumed   bool             `json:"resumed"`
}

// SessionService owns the active session engines: one per (exam, user)
// attempt, created by the session loader path and torn down at submission or
// shutdown. Engines are never shared between attempts.
type SessionService struct {
	client  *remote.Client
	rdb     *redis.Client
	journal *repository.AttemptJournalRepository
	retry   *worker.SubmitRetryWorker
	log     zerolog.Logger

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	engine *session.Engine
	hub    *eventHub
	bearer string
	userID string
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	client *remote.Client,
	rdb *redis.Client,
	journal *repository.AttemptJournalRepository,
	retry *worker.SubmitRetryWorker,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		client:  client,
		rdb:     rdb,
		journal: journal,
		retry:   retry,
		log:     log.With().Str("component", "session_service").Logger(),
		entries: make(map[string]*sessionEntry),
	}
}

func attemptKey(examID uuid.UUID, userID string) string {
	return userID + ":" + examID.String()
}

// StartSession loads the exam exactly once and brings an engine to Running.
//
// Load or auth failure is fatal to session start: no timer is started and no
// partial state is kept. If the same attempt is already live in this process
// it is resumed as-is; if only the Redis mirror survives (process restart),
// the registry and clock are rebuilt from it.
func (s *SessionService) StartSession(ctx context.Context, examID uuid.UUID, userID, bearer string) (*StartedSession, error) {
	key := attemptKey(examID, userID)

	s.mu.Lock()
	if entry, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return &StartedSession{
			Exam:      entry.engine.Exam(),
			Questions: entry.engine.Questions(),
			State:     entry.engine.State(),
			Resumed:   true,
		}, nil
	}
	s.mu.Unlock()

	submitted, err := s.rdb.Exists(ctx, config.CacheKey.AttemptSubmittedKey(examID.String(), userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check submitted flag: %w", err)
	}
	if submitted > 0 {
		return nil, ErrAttemptSubmitted
	}

	paper, err := s.client.FetchExamPaper(ctx, examID, bearer)
	if err != nil {
		return nil, err
	}

	remaining, resumed, err := s.resolveRemaining(ctx, examID, userID, paper.Exam.DurationSeconds())
	if err != nil {
		return nil, err
	}

	restored := map[model.QuestionID]string{}
	if resumed {
		restored, err = s.restoredAnswers(ctx, examID, userID)
		if err != nil {
			return nil, err
		}
	}

	if remaining <= 0 {
		// The clock ran out while no process was hosting the attempt.
		// Finalize it now from whatever was autosaved.
		if err := s.finalizeExpired(ctx, examID, userID, bearer, paper, restored); err != nil {
			return nil, err
		}
		return nil, ErrAttemptExpired
	}

	hub := newEventHub()
	engine, err := session.New(session.Config{
		Paper:            *paper,
		Bearer:           bearer,
		StudentID:        userID,
		Submitter:        s.client,
		Logger:           s.log,
		RemainingSeconds: remaining,
		RestoredAnswers:  restored,
		Hooks: session.Hooks{
			OnTick: func(remaining int) {
				hub.publish(SessionEvent{Type: EventTick, SecondsRemaining: remaining})
			},
			OnFinished: func(o session.Outcome) {
				// Runs on the submitting goroutine (possibly the timer's);
				// side effects move off it immediately.
				go s.onFinished(examID, userID, bearer, o)
				hub.publish(SessionEvent{Type: EventFinished, Outcome: &o})
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build session engine: %w", err)
	}

	if !resumed {
		startKey := config.CacheKey.AttemptStartKey(examID.String(), userID)
		if err := s.rdb.Set(ctx, startKey, time.Now().Unix(), 0).Err(); err != nil {
			return nil, fmt.Errorf("record start time: %w", err)
		}
	}

	if err := engine.Start(); err != nil {
		return nil, fmt.Errorf("start countdown: %w", err)
	}

	s.mu.Lock()
	if existing, ok := s.entries[key]; ok {
		// A concurrent start won the race; keep theirs, discard ours.
		s.mu.Unlock()
		engine.Close()
		return &StartedSession{
			Exam:      existing.engine.Exam(),
			Questions: existing.engine.Questions(),
			State:     existing.engine.State(),
			Resumed:   true,
		}, nil
	}
	s.entries[key] = &sessionEntry{engine: engine, hub: hub, bearer: bearer, userID: userID}
	s.mu.Unlock()

	s.log.Info().
		Str("exam_id", examID.String()).
		Str("user_id", userID).
		Int("seconds_remaining", remaining).
		Bool("resumed", resumed).
		Msg("session started")

	return &StartedSession{
		Exam:      paper.Exam,
		Questions: paper.Questions,
		State:     engine.State(),
		Resumed:   resumed,
	}, nil
}

// resolveRemaining derives the clock budget, honoring a start time recorded
// by an earlier process.
func (s *SessionService) resolveRemaining(ctx context.Context, examID uuid.UUID, userID string, duration int) (remaining int, resumed bool, err error) {
	startKey := config.CacheKey.AttemptStartKey(examID.String(), userID)
	val, err := s.rdb.Get(ctx, startKey).Result()
	if errors.Is(err, redis.Nil) {
		return duration, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read start time: %w", err)
	}

	startUnix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid start time in cache: %w", err)
	}

	elapsed := int(time.Since(time.Unix(startUnix, 0)).Seconds())
	return duration - elapsed, true, nil
}

func (s *SessionService) restoredAnswers(ctx context.Context, examID uuid.UUID, userID string) (map[model.QuestionID]string, error) {
	raw, err := s.rdb.HGetAll(ctx, config.CacheKey.AttemptAnswersKey(examID.String(), userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("restore answers: %w", err)
	}

	out := make(map[model.QuestionID]string, len(raw))
	for k, v := range raw {
		qid, err := model.ParseQuestionID(k)
		if err != nil {
			continue // stale or corrupt cache entry
		}
		out[qid] = v
	}
	return out, nil
}

// Select records a selection and mirrors it to Redis and the journal queue.
func (s *SessionService) Select(ctx context.Context, examID uuid.UUID, userID string, questionID model.QuestionID, optionText string) error {
	entry, err := s.entry(examID, userID)
	if err != nil {
		return err
	}

	if err := entry.engine.Select(questionID, optionText); err != nil {
		return err
	}

	answersKey := config.CacheKey.AttemptAnswersKey(examID.String(), userID)
	if err := s.rdb.HSet(ctx, answersKey, questionID.String(), optionText).Err(); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("answer mirror failed")
	}

	payload, _ := json.Marshal(worker.AnswerPayload{
		ExamID:     examID,
		UserID:     userID,
		QuestionID: questionID.String(),
		Answer:     optionText,
	})
	s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload)

	return nil
}

// Navigate applies a navigation action and returns the new index.
func (s *SessionService) Navigate(examID uuid.UUID, userID string, move func(*session.Engine) error) (int, error) {
	entry, err := s.entry(examID, userID)
	if err != nil {
		return 0, err
	}
	if err := move(entry.engine); err != nil {
		return 0, err
	}
	return entry.engine.CurrentIndex(), nil
}

// State returns the live snapshot for page-reload recovery.
func (s *SessionService) State(examID uuid.UUID, userID string) (*StartedSession, error) {
	entry, err := s.entry(examID, userID)
	if err != nil {
		return nil, err
	}
	return &StartedSession{
		Exam:      entry.engine.Exam(),
		Questions: entry.engine.Questions(),
		State:     entry.engine.State(),
		Resumed:   true,
	}, nil
}

// Submit runs the manual submission path for an attempt.
func (s *SessionService) Submit(ctx context.Context, examID uuid.UUID, userID string) (model.ExamResult, error) {
	entry, err := s.entry(examID, userID)
	if err != nil {
		return model.ExamResult{}, err
	}
	return entry.engine.Submit(ctx)
}

// Subscribe attaches a listener to an attempt's tick/finish events. The
// returned cancel func must be called when the listener goes away.
func (s *SessionService) Subscribe(examID uuid.UUID, userID string) (<-chan SessionEvent, func(), error) {
	entry, err := s.entry(examID, userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := entry.hub.subscribe()
	return ch, cancel, nil
}

// Shutdown cancels every live countdown. Submissions already in flight are
// left to finish on their own.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		entry.engine.Close()
		delete(s.entries, key)
	}
}

func (s *SessionService) entry(examID uuid.UUID, userID string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[attemptKey(examID, userID)]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return entry, nil
}

// onFinished journals the outcome and clears per-attempt state. Delivery
// failures keep the attempt alive for manual retry; an auto-submission
// failure additionally goes to the retry queue, because the student may
// never come back to retry it.
func (s *SessionService) onFinished(examID uuid.UUID, userID, bearer string, o session.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if o.Err != nil {
		if err := s.journal.RecordResult(ctx, examID, userID, o.Result, false); err != nil {
			s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("journal result failed")
		}
		if o.AutoSubmitted {
			if err := s.retry.Enqueue(ctx, worker.RetryPayload{
				ExamID: examID,
				UserID: userID,
				Bearer: bearer,
				Result: o.Result,
			}); err != nil {
				s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("retry enqueue failed")
			}
			// Terminal for this process either way: the worker owns it now.
			s.finalize(ctx, examID, userID)
		}
		return
	}

	if err := s.journal.RecordResult(ctx, examID, userID, o.Result, true); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("journal result failed")
	}
	if err := s.rdb.Set(ctx, config.CacheKey.AttemptSubmittedKey(examID.String(), userID), 1, 0).Err(); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("submitted flag failed")
	}
	s.finalize(ctx, examID, userID)
}

// finalize drops the live engine and the autosave mirror for an attempt.
func (s *SessionService) finalize(ctx context.Context, examID uuid.UUID, userID string) {
	key := attemptKey(examID, userID)

	s.mu.Lock()
	entry, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if ok {
		entry.engine.Close()
		entry.hub.close()
	}

	s.rdb.Del(ctx,
		config.CacheKey.AttemptAnswersKey(examID.String(), userID),
		config.CacheKey.AttemptStartKey(examID.String(), userID),
	)
	if err := s.journal.ClearAnswers(ctx, examID, userID); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("clear journal answers failed")
	}
}

// finalizeExpired scores an attempt whose clock ran out with no live engine
// and pushes the result toward the remote store.
func (s *SessionService) finalizeExpired(ctx context.Context, examID uuid.UUID, userID, bearer string, paper *model.ExamPaper, restored map[model.QuestionID]string) error {
	result := scoring.Score(paper.Exam, paper.Questions, restored, time.Now().UTC(), true)

	err := s.client.SubmitResult(ctx, examID, bearer, result)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("expired-attempt delivery failed, queueing")
		if qerr := s.retry.Enqueue(ctx, worker.RetryPayload{
			ExamID: examID,
			UserID: userID,
			Bearer: bearer,
			Result: result,
		}); qerr != nil {
			return fmt.Errorf("queue expired attempt: %w", qerr)
		}
	}

	if jerr := s.journal.RecordResult(ctx, examID, userID, result, err == nil); jerr != nil {
		s.log.Error().Err(jerr).Str("exam_id", examID.String()).Msg("journal result failed")
	}
	if err := s.rdb.Set(ctx, config.CacheKey.AttemptSubmittedKey(examID.String(), userID), 1, 0).Err(); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("submitted flag failed")
	}
	s.finalize(ctx, examID, userID)
	return nil
}
