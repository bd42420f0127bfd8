package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduprep/exam-engine/internal/middleware"
	"github.com/eduprep/exam-engine/internal/remote"
	"github.com/eduprep/exam-engine/internal/response"
	"github.com/eduprep/exam-engine/internal/service"
)

// ReviewHandler serves the post-submission review screen.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// GetReview godoc
// GET /api/v1/student/exams/:exam_id/review
// Re-fetches the stored result and replays it into display rows.
func (h *ReviewHandler) GetReview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rendered, err := h.reviews.GetReview(c.Request.Context(), examID, claims.UserID, middleware.GetBearer(c))
	if err != nil {
		switch {
		case errors.Is(err, remote.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrResultUnavailable)
		case errors.Is(err, remote.ErrUnauthorized):
			response.Fail(c, http.StatusUnauthorized, response.ErrAuthRequired)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrResultUnavailable)
		}
		return
	}

	response.Success(c, http.StatusOK, rendered)
}
