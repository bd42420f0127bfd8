package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/middleware"
	"github.com/eduprep/exam-engine/internal/model"
	"github.com/eduprep/exam-engine/internal/service"
	"github.com/eduprep/exam-engine/internal/session"
	ws "github.com/eduprep/exam-engine/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live attempt: selections and navigation flow up,
// countdown ticks and the terminal submission event flow down.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/student/exams/:exam_id/stream
// Requires an already-started session; the REST start endpoint creates it.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	userID := claims.UserID

	events, cancel, err := h.sessions.Subscribe(examID, userID)
	if err != nil {
		ws.WriteError(conn, "no active session for this exam")
		return
	}
	defer cancel()

	wsLog := h.log.With().
		Str("user_id", userID).
		Str("exam_id", examID.String()).
		Logger()
	wsLog.Info().Msg("Student connected")

	// Engine events are pushed from their own goroutine; the reader below
	// owns the connection lifetime.
	go h.pushEvents(conn, events)

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionSelect:
			h.handleSelect(c, conn, examID, userID, &msg)
		case ws.ActionNext:
			h.handleNavigate(conn, examID, userID, func(e *session.Engine) error { e.Next(); return nil })
		case ws.ActionPrevious:
			h.handleNavigate(conn, examID, userID, func(e *session.Engine) error { e.Previous(); return nil })
		case ws.ActionGoTo:
			index := msg.Index
			h.handleNavigate(conn, examID, userID, func(e *session.Engine) error { return e.GoTo(index) })
		case ws.ActionSubmit:
			h.handleSubmit(c, conn, wsLog, examID, userID)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// pushEvents forwards countdown ticks and the terminal submission event until
// the hub closes the channel.
func (h *WSHandler) pushEvents(conn *websocket.Conn, events <-chan service.SessionEvent) {
	for ev := range events {
		switch ev.Type {
		case service.EventTick:
			ws.WriteTyped(conn, ws.TickResponse{
				Event:            ws.EventTick,
				SecondsRemaining: ev.SecondsRemaining,
				Clock:            session.FormatClock(ev.SecondsRemaining),
			})
		case service.EventFinished:
			if ev.Outcome == nil {
				continue
			}
			if ev.Outcome.Err != nil {
				ws.WriteTyped(conn, ws.ErrorResponse{Event: ws.EventSubmitFailed, Error: "result could not be delivered, score retained"})
				continue
			}
			event := ws.EventSubmitted
			if ev.Outcome.AutoSubmitted {
				event = ws.EventAutoSubmitted
			}
			ws.WriteTyped(conn, ws.SubmittedResponse{
				Event:      event,
				TotalMarks: ev.Outcome.Result.TotalMarks,
				Correct:    ev.Outcome.Result.CorrectCount,
				Wrong:      ev.Outcome.Result.WrongCount,
				Auto:       ev.Outcome.AutoSubmitted,
			})
		}
	}
}

func (h *WSHandler) handleSelect(c *gin.Context, conn *websocket.Conn, examID uuid.UUID, userID string, msg *ws.RequestPayload) {
	if msg.QID == "" || msg.Answer == "" {
		ws.WriteError(conn, "q_id and ans are required")
		return
	}

	qid, err := model.ParseQuestionID(msg.QID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	if err := h.sessions.Select(c.Request.Context(), examID, userID, qid, msg.Answer); err != nil {
		ws.WriteError(conn, err.Error())
		return
	}

	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

func (h *WSHandler) handleNavigate(conn *websocket.Conn, examID uuid.UUID, userID string, move func(*session.Engine) error) {
	index, err := h.sessions.Navigate(examID, userID, move)
	if err != nil {
		ws.WriteError(conn, err.Error())
		return
	}
	ws.WriteTyped(conn, ws.PositionResponse{Event: ws.EventPosition, Index: index})
}

func (h *WSHandler) handleSubmit(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, examID uuid.UUID, userID string) {
	// The submitted/submit_failed event reaches the client through the
	// event stream; a rejection (double submit, lost auth) is answered
	// directly.
	if _, err := h.sessions.Submit(c.Request.Context(), examID, userID); err != nil {
		switch err {
		case session.ErrAlreadySubmitted, session.ErrSubmitInFlight:
			wsLog.Debug().Err(err).Msg("Duplicate submit ignored")
			ws.WriteError(conn, err.Error())
		case session.ErrAuthRequired:
			ws.WriteError(conn, "re-authentication required before submitting")
		case service.ErrNoActiveSession:
			ws.WriteError(conn, err.Error())
		default:
			// Delivery failure: the finished event already told the
			// client the score is retained.
			wsLog.Warn().Err(err).Msg("Submit delivery failed")
		}
	}
}
