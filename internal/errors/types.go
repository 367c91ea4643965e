package errors

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "not_found")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

type InsufficientCreditsResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CreditsNeeded int    `json:"credits_needed"`
	Shortfall     int    `json:"shortfall"`
	Balance       any    `json:"balance"`
}

type PlanGateResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Plan    string `json:"plan"`
}

type ErrorInfo struct {
	category  string
	sanitized string
}

// standard error codes
const (
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeValidationError     = "validation_error"
	CodeServerError         = "server_error"
	CodeBadRequest          = "bad_request"
	CodeConflict            = "conflict"
	CodeTooManyRequests     = "too_many_requests"
	CodeInsufficientCredits = "insufficient_credits"
	CodeUpstreamError       = "upstream_error"
	CodeServiceUnavailable  = "service_unavailable"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)
