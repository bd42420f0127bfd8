package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrAuthRequired  ErrCode = "AUTH_REQUIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrSessionNotFound   ErrCode = "SESSION_NOT_FOUND"
	ErrSessionActive     ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionFrozen     ErrCode = "SESSION_FROZEN"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"
	ErrSubmitInFlight    ErrCode = "SUBMISSION_IN_FLIGHT"
	ErrSubmitFailed      ErrCode = "SUBMISSION_FAILED"
	ErrUnknownQuestion   ErrCode = "UNKNOWN_QUESTION"
	ErrIndexOutOfRange   ErrCode = "QUESTION_INDEX_OUT_OF_RANGE"
	ErrExamLoadFailed    ErrCode = "EXAM_LOAD_FAILED"
	ErrResultUnavailable ErrCode = "RESULT_UNAVAILABLE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrAuthRequired:
		return "Your sign-in has expired. Please sign in again before submitting."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrSessionNotFound:
		return "No active exam session was found."
	case ErrSessionActive:
		return "An attempt for this exam is already in progress."
	case ErrSessionFrozen:
		return "This attempt has been submitted; answers can no longer change."
	case ErrAlreadySubmitted:
		return "This attempt has already been submitted."
	case ErrSubmitInFlight:
		return "Submission is already in progress."
	case ErrSubmitFailed:
		return "Your score was saved locally but could not be submitted. Please retry."
	case ErrUnknownQuestion:
		return "That question is not part of this exam."
	case ErrIndexOutOfRange:
		return "Question number is out of range."
	case ErrExamLoadFailed:
		return "The exam could not be loaded. Please try again."
	case ErrResultUnavailable:
		return "No stored result was found for this exam."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
