package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect   Action = "select"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionGoTo     Action = "goto"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestPayload carries any client action; unused fields stay zero.
type RequestPayload struct {
	Action Action `json:"action"`
	QID    string `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`
	Index  int    `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError         Event = "error"
	EventSaved         Event = "saved"
	EventPosition      Event = "position"
	EventTick          Event = "tick"
	EventSubmitted     Event = "submitted"
	EventSubmitFailed  Event = "submit_failed"
	EventAutoSubmitted Event = "auto_submitted"
	EventPong          Event = "pong"
)

// SavedResponse acknowledges a recorded selection.
type SavedResponse struct {
	Event Event  `json:"event"`
	QID   string `json:"q_id"`
}

// PositionResponse reports the current question index after navigation.
type PositionResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// TickResponse is pushed once per second while the countdown runs.
type TickResponse struct {
	Event            Event  `json:"event"`
	SecondsRemaining int    `json:"seconds_remaining"`
	Clock            string `json:"clock"`
}

// SubmittedResponse reports a terminal submission, manual or automatic.
type SubmittedResponse struct {
	Event      Event   `json:"event"`
	TotalMarks float64 `json:"total_marks"`
	Correct    int     `json:"correct"`
	Wrong      int     `json:"wrong"`
	Auto       bool    `json:"auto"`
}

// ErrorResponse reports a rejected action. The session stays open unless the
// error says otherwise.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
