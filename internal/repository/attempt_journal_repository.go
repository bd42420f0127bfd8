package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduprep/exam-engine/internal/model"
)

// AttemptJournalRepository persists a local journal of attempts: autosaved
// answers while the session runs, and the write-once result row at
// submission. The remote exam API remains the store of record; the journal
// exists so an attempt survives a process restart and a remote outage leaves
// an auditable trace.
type AttemptJournalRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptJournalRepository creates a new AttemptJournalRepository.
func NewAttemptJournalRepository(pool *pgxpool.Pool) *AttemptJournalRepository {
	return &AttemptJournalRepository{pool: pool}
}

// RecordAnswer upserts one autosaved selection.
func (r *AttemptJournalRepository) RecordAnswer(ctx context.Context, examID uuid.UUID, userID string, questionID model.QuestionID, answer string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_answers (exam_id, user_id, question_id, answer)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, user_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer, updated_at = NOW()`,
		examID, userID, uuid.UUID(questionID), answer,
	)
	return err
}

// RecordResult inserts the write-once result row. A second insert for the
// same attempt is a silent no-op; results are never overwritten.
func (r *AttemptJournalRepository) RecordResult(ctx context.Context, examID uuid.UUID, userID string, result model.ExamResult, delivered bool) error {
	answers, err := json.Marshal(result.UserAnswers)
	if err != nil {
		return fmt.Errorf("encode answer records: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempt_results
		   (exam_id, user_id, exam_name, total_questions, correct_count, wrong_count,
		    total_marks, user_answers, auto_submitted, submitted_at, delivered)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (exam_id, user_id) DO NOTHING`,
		examID, userID, result.ExamName, result.TotalQuestions, result.CorrectCount,
		result.WrongCount, result.TotalMarks, answers, result.IsAutoSubmitted,
		result.SubmittedAt, delivered,
	)
	return err
}

// MarkDelivered flags a journaled result as accepted by the remote store.
func (r *AttemptJournalRepository) MarkDelivered(ctx context.Context, examID uuid.UUID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempt_results
		 SET delivered = TRUE, delivered_at = NOW()
		 WHERE exam_id = $1 AND user_id = $2`,
		examID, userID,
	)
	return err
}

// ClearAnswers drops the autosave rows once a result row exists; the journal
// keeps only the final record.
func (r *AttemptJournalRepository) ClearAnswers(ctx context.Context, examID uuid.UUID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM attempt_answers WHERE exam_id = $1 AND user_id = $2`,
		examID, userID,
	)
	return err
}

// UndeliveredSince lists journaled results that never reached the remote
// store, oldest first, for operator tooling.
func (r *AttemptJournalRepository) UndeliveredSince(ctx context.Context, since time.Time) ([]UndeliveredResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT exam_id, user_id, total_marks, submitted_at
		 FROM attempt_results
		 WHERE delivered = FALSE AND submitted_at >= $1
		 ORDER BY submitted_at ASC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UndeliveredResult
	for rows.Next() {
		var u UndeliveredResult
		if err := rows.Scan(&u.ExamID, &u.UserID, &u.TotalMarks, &u.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UndeliveredResult is a journal row still awaiting remote delivery.
type UndeliveredResult struct {
	ExamID      uuid.UUID `json:"exam_id"`
	UserID      string    `json:"user_id"`
	TotalMarks  float64   `json:"total_marks"`
	SubmittedAt time.Time `json:"submitted_at"`
}
