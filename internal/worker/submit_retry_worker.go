package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/config"
	"github.com/eduprep/exam-engine/internal/model"
	"github.com/eduprep/exam-engine/internal/remote"
	"github.com/eduprep/exam-engine/internal/repository"
)

const retryPollTimeout = 1 * time.Second

// RetryPayload is one failed submission waiting in the retry queue.
type RetryPayload struct {
	ExamID uuid.UUID        `json:"exam_id"`
	UserID string           `json:"user_id"`
	Bearer string           `json:"bearer"`
	Result model.ExamResult `json:"result"`
}

// SubmitRetryWorker consumes the retry queue and resends results the remote
// store previously rejected. A computed score is never dropped: a payload
// that fails again goes back on the queue after a delay.
type SubmitRetryWorker struct {
	rdb    *redis.Client
	client *remote.Client
	repo   *repository.AttemptJournalRepository
	delay  time.Duration
	log    zerolog.Logger
}

// NewSubmitRetryWorker creates a new SubmitRetryWorker.
func NewSubmitRetryWorker(rdb *redis.Client, client *remote.Client, repo *repository.AttemptJournalRepository, delay time.Duration, log zerolog.Logger) *SubmitRetryWorker {
	return &SubmitRetryWorker{
		rdb:    rdb,
		client: client,
		repo:   repo,
		delay:  delay,
		log:    log.With().Str("component", "submit_retry_worker").Logger(),
	}
}

// Enqueue pushes a failed submission onto the retry queue.
func (w *SubmitRetryWorker) Enqueue(ctx context.Context, p RetryPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return w.rdb.RPush(ctx, config.WorkerKey.RetrySubmissionsQueue, raw).Err()
}

// Start begins the worker loop. Call in a goroutine; it returns when ctx is
// cancelled, after draining what it can.
func (w *SubmitRetryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *SubmitRetryWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, retryPollTimeout, config.WorkerKey.RetrySubmissionsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload RetryPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Invalid retry payload, dropping")
		return
	}

	if err := w.deliver(ctx, &payload); err != nil {
		w.log.Warn().Err(err).
			Str("exam_id", payload.ExamID.String()).
			Str("user_id", payload.UserID).
			Dur("retry_in", w.delay).
			Msg("Resubmission failed, requeueing")
		w.rdb.RPush(ctx, config.WorkerKey.RetrySubmissionsQueue, result[1])

		select {
		case <-ctx.Done():
		case <-time.After(w.delay):
		}
	}
}

func (w *SubmitRetryWorker) deliver(ctx context.Context, p *RetryPayload) error {
	if err := w.client.SubmitResult(ctx, p.ExamID, p.Bearer, p.Result); err != nil {
		return err
	}

	if err := w.repo.MarkDelivered(ctx, p.ExamID, p.UserID); err != nil {
		// The remote store has the result; a journal hiccup is not worth
		// resending and risking confusion upstream.
		w.log.Error().Err(err).Str("exam_id", p.ExamID.String()).Msg("MarkDelivered failed")
	}

	w.log.Info().
		Str("exam_id", p.ExamID.String()).
		Str("user_id", p.UserID).
		Float64("total_marks", p.Result.TotalMarks).
		Msg("Queued result delivered")
	return nil
}

// drain makes one pass over the remaining queue before shutdown. Payloads
// that still fail are pushed back for the next process start.
func (w *SubmitRetryWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.RetrySubmissionsQueue).Result()
		if err != nil {
			break
		}

		var payload RetryPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.deliver(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain delivery error")
			w.rdb.RPush(ctx, config.WorkerKey.RetrySubmissionsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
