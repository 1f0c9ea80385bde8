package dto

// Stable machine-readable reason codes returned in error envelopes.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeAlreadyAttempted = "ALREADY_ATTEMPTED"
	CodeExamEnded        = "EXAM_ENDED"
	CodeAttemptClosed    = "ATTEMPT_CLOSED"
	CodeTimeExpired      = "TIME_EXPIRED"
	CodeStoreError       = "STORE_ERROR"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Redirect bool   `json:"redirect,omitempty"`
}
