package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// a rule maps matching errors to a category and the message shown in production
type rule struct {
	match     func(err error, msg string) bool
	category  string
	sanitized string
}

// first match wins; typed checks come before message matching
var rules = []rule{
	{isPgError, CategoryDatabase, "database operation failed"},
	{is(pgx.ErrNoRows), CategoryNotFound, "resource not found"},
	{is(context.DeadlineExceeded), CategoryTimeout, "request timed out"},
	{is(context.Canceled), CategoryTimeout, "request canceled"},
	{contains("rate limit", "upstream", "completion"), CategoryNetwork, "model backend unavailable"},
	{contains("timeout", "deadline"), CategoryTimeout, "request timed out"},
	{contains("not found", "no rows"), CategoryNotFound, "resource not found"},
	{contains("database", "sql", "postgres", "pgx"), CategoryDatabase, "database operation failed"},
	{contains("redis", "connection", "dial"), CategoryNetwork, "connection error occurred"},
	{contains("validation", "binding", "invalid", "required"), CategoryValidation, "validation failed"},
}

// analyzes an error and returns its category and sanitized message.
// outside production the raw message is kept for debugging.
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	production := os.Getenv("ENVIRONMENT") == "production"
	msg := strings.ToLower(err.Error())

	for _, r := range rules {
		if r.match(err, msg) {
			return ErrorInfo{r.category, sanitize(production, r.sanitized, err)}
		}
	}

	return ErrorInfo{CategoryUnknown, sanitize(production, "an error occurred", err)}
}

func sanitize(production bool, safe string, err error) string {
	if production {
		return safe
	}
	return err.Error()
}

func isPgError(err error, _ string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

func is(target error) func(error, string) bool {
	return func(err error, _ string) bool {
		return errors.Is(err, target)
	}
}

func contains(needles ...string) func(error, string) bool {
	return func(_ error, msg string) bool {
		for _, n := range needles {
			if strings.Contains(msg, n) {
				return true
			}
		}
		return false
	}
}
