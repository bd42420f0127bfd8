package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduprep/exam-engine/internal/middleware"
	"github.com/eduprep/exam-engine/internal/model"
	"github.com/eduprep/exam-engine/internal/remote"
	"github.com/eduprep/exam-engine/internal/response"
	"github.com/eduprep/exam-engine/internal/service"
	"github.com/eduprep/exam-engine/internal/session"
	"github.com/eduprep/exam-engine/internal/validator"
)

// selectAnswerRequest records a selection over REST, for clients without a
// live WebSocket.
type selectAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Answer     string `json:"answer" binding:"required"`
}

// navigateRequest jumps to an explicit question index.
type navigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// SessionHandler exposes the REST surface of an exam attempt: start/resume,
// state recovery, and a manual submit fallback for clients without a live
// WebSocket.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// StartSession godoc
// POST /api/v1/student/exams/:exam_id/session
// Loads the exam exactly once and starts (or resumes) the countdown.
func (h *SessionHandler) StartSession(c *gin.Context) {
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

	started, err := h.sessions.StartSession(c.Request.Context(), examID, claims.UserID, middleware.GetBearer(c))
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, started)
}

// GetState godoc
// GET /api/v1/student/exams/:exam_id/session
// Returns the live snapshot so a reloaded page can restore answers,
// position, and remaining time.
func (h *SessionHandler) GetState(c *gin.Context) {
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

	state, err := h.sessions.State(examID, claims.UserID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// SelectAnswer godoc
// POST /api/v1/student/exams/:exam_id/session/answer
// REST fallback for the WebSocket select action.
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
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

	var req selectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	qid, err := model.ParseQuestionID(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.sessions.Select(c.Request.Context(), examID, claims.UserID, qid, req.Answer); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_id": req.QuestionID})
}

// Navigate godoc
// POST /api/v1/student/exams/:exam_id/session/position
// REST fallback for the WebSocket goto action.
func (h *SessionHandler) Navigate(c *gin.Context) {
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

	var req navigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	index, err := h.sessions.Navigate(examID, claims.UserID, func(e *session.Engine) error {
		return e.GoTo(*req.Index)
	})
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"index": index})
}

// Submit godoc
// POST /api/v1/student/exams/:exam_id/session/submit
// Manual submission. Also the retry path after a SUBMISSION_FAILED response.
func (h *SessionHandler) Submit(c *gin.Context) {
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

	result, err := h.sessions.Submit(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		if isKnownSessionErr(err) {
			failSession(c, err)
			return
		}
		// Remote store rejected the result; the computed score is retained
		// on the engine and this endpoint can be called again to retry.
		response.Fail(c, http.StatusBadGateway, response.ErrSubmitFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

func isKnownSessionErr(err error) bool {
	for _, known := range []error{
		service.ErrNoActiveSession, service.ErrAttemptSubmitted, service.ErrAttemptExpired,
		session.ErrAlreadySubmitted, session.ErrSubmitInFlight, session.ErrSessionFrozen,
		session.ErrAuthRequired, session.ErrUnknownQuestion, session.ErrIndexOutOfRange,
		remote.ErrUnauthorized, remote.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// failSession maps session pipeline errors onto the response envelope.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrAttemptSubmitted), errors.Is(err, session.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrAttemptExpired):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, session.ErrSubmitInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmitInFlight)
	case errors.Is(err, session.ErrSessionFrozen):
		response.Fail(c, http.StatusConflict, response.ErrSessionFrozen)
	case errors.Is(err, session.ErrAuthRequired), errors.Is(err, remote.ErrUnauthorized):
		response.Fail(c, http.StatusUnauthorized, response.ErrAuthRequired)
	case errors.Is(err, session.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	case errors.Is(err, session.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	case errors.Is(err, remote.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamLoadFailed)
	default:
		response.Fail(c, http.StatusBadGateway, response.ErrExamLoadFailed)
	}
}
