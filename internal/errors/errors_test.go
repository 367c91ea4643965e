package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	tests := []struct {
		name      string
		err       error
		category  string
		sanitized string
	}{
		{"pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), CategoryDatabase, "database operation failed"},
		{"no rows", fmt.Errorf("find: %w", pgx.ErrNoRows), CategoryNotFound, "resource not found"},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), CategoryTimeout, "request timed out"},
		{"upstream", fmt.Errorf("completion backend rate limit exceeded"), CategoryNetwork, "model backend unavailable"},
		{"redis", fmt.Errorf("redis: connection refused"), CategoryNetwork, "connection error occurred"},
		{"unknown", fmt.Errorf("boom"), CategoryUnknown, "an error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := classifyError(tt.err)
			assert.Equal(t, tt.category, info.category)
			assert.Equal(t, tt.sanitized, info.sanitized)
		})
	}
}

func TestClassifyError_DevelopmentKeepsMessage(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	info := classifyError(fmt.Errorf("insert: %w", &pgconn.PgError{Message: "duplicate key"}))
	assert.Contains(t, info.sanitized, "duplicate key")
}

func respond(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/judge", nil)
	fn(c)

	return w
}

func TestInsufficientCredits(t *testing.T) {
	w := respond(func(c *gin.Context) {
		InsufficientCredits(c, 6, 2, map[string]int{"total": 4})
	})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "insufficient_credits", body["error"])
	assert.Equal(t, 6.0, body["credits_needed"])
	assert.Equal(t, 2.0, body["shortfall"])
	assert.NotNil(t, body["balance"])
}

func TestPlanGate(t *testing.T) {
	w := respond(func(c *gin.Context) {
		PlanGate(c, "PLAN_TOO_LOW", "research panel is not available on the free plan", "free")
	})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body PlanGateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PLAN_TOO_LOW", body.Error)
	assert.Equal(t, "free", body.Plan)
}
