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
	"github.com/eduprep/exam-engine/internal/repository"
)

// AnswerPayload is one autosaved selection queued for the journal.
type AnswerPayload struct {
	ExamID     uuid.UUID `json:"exam_id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	Answer     string    `json:"answer"`
}

// AutosaveWorker consumes the answer queue and upserts selections into the
// attempt journal, keeping the hot path (a WebSocket select action) free of
// Postgres latency.
type AutosaveWorker struct {
	rdb  *redis.Client
	repo *repository.AttemptJournalRepository
	log  zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(rdb *redis.Client, repo *repository.AttemptJournalRepository, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		rdb:  rdb,
		repo: repo,
		log:  log.With().Str("component", "autosave_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
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

func (w *AutosaveWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistAnswersQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload AnswerPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persist(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("exam_id", payload.ExamID.String()).
			Str("user_id", payload.UserID).
			Msg("Persist error, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *AutosaveWorker) persist(ctx context.Context, p *AnswerPayload) error {
	qid, err := model.ParseQuestionID(p.QuestionID)
	if err != nil {
		return err
	}
	return w.repo.RecordAnswer(ctx, p.ExamID, p.UserID, qid, p.Answer)
}

// drain processes all remaining items in the queue before shutdown.
func (w *AutosaveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		var payload AnswerPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persist(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
