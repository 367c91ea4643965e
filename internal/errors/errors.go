package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/logger"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For WebSocket handlers:
//   - Log with logger.ErrorErr() and close the connection
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}

	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = classifyError(err).sanitized
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	response := ErrorResponse{
		Error:   CodeValidationError,
		Message: "request validation failed",
	}

	if err != nil {
		// validation messages describe the caller's input, never server state
		response.Details = err.Error()
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 402 with the numbers the client needs to offer a top-up
func InsufficientCredits(c *gin.Context, needed, shortfall int, balance any) {
	c.JSON(http.StatusPaymentRequired, InsufficientCreditsResponse{
		Error:         CodeInsufficientCredits,
		Message:       "not enough credits for this action",
		CreditsNeeded: needed,
		Shortfall:     shortfall,
		Balance:       balance,
	})
}

// returns a 403 carrying the plan gate code (PLAN_LIMIT_EXCEEDED, PLAN_TOO_LOW)
func PlanGate(c *gin.Context, code, message, plan string) {
	c.JSON(http.StatusForbidden, PlanGateResponse{
		Error:   code,
		Message: message,
		Plan:    plan,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	info := classifyError(err)

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
		"category", info.category,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: info.sanitized,
	})
}

// returns a 500 when the model backend produced no usable output (every sub-call failed,
// judge or synthesis call failed). nothing is charged for these
func UpstreamUnavailable(c *gin.Context, message string, err error) {
	if message == "" {
		message = "model backend unavailable"
	}

	logger.Warn(message,
		"path", c.Request.URL.Path,
		"user_id", c.GetString("user_id"),
		"error", err,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeUpstreamError,
		Message: message,
		Details: classifyError(err).sanitized,
	})
}

// returns a 503 for features whose backing service is not configured
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "service unavailable"
	}

	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   CodeServiceUnavailable,
		Message: message,
	})
}

// returns a 409 conflict error
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "resource conflict"
	}

	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeConflict,
		Message: message,
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}
