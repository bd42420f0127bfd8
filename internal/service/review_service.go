package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/remote"
	"github.com/eduprep/exam-engine/internal/review"
)

// ReviewService re-fetches a stored result and renders it for the review
// screen.
type ReviewService struct {
	client   *remote.Client
	renderer *review.Renderer
	log      zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(client *remote.Client, renderer *review.Renderer, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		client:   client,
		renderer: renderer,
		log:      log.With().Str("component", "review_service").Logger(),
	}
}

// GetReview fetches the stored result for exam+user and replays it into
// display rows. Rendering is pure, so repeated calls for the same stored
// result always produce the same payload.
func (s *ReviewService) GetReview(ctx context.Context, examID uuid.UUID, userID, bearer string) (*review.ResultReview, error) {
	result, err := s.client.FetchResult(ctx, examID, userID, bearer)
	if err != nil {
		return nil, err
	}

	rendered := s.renderer.Render(*result)
	return &rendered, nil
}
