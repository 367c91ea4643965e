package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/miriamlab/history"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

func newRouter(t *testing.T, plan credits.Plan) (*gin.Engine, *history.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ws := wallets.NewMemoryStore()
	ws.Put(wallets.Wallet{
		UserID:             "u1",
		Plan:               plan,
		FreeDailyRemaining: credits.DailyFreeCredits,
		LastDailyReset:     time.Now(),
	})
	plans := wallets.NewService(ws)
	store := history.NewMemoryStore()

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("user_id", "u1") })
	router.GET("/sessions", ListSessionsHandler(store, plans))
	router.POST("/sessions", CreateSessionHandler(store, plans))

	return router, store
}

func create(router *gin.Engine, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body) //nolint:errcheck // test code
	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateSession_TrimsToPlanLimit(t *testing.T) {
	router, store := newRouter(t, credits.PlanFree)
	limit := credits.LimitsFor(credits.PlanFree).MaxHistorySessions

	for i := 0; i <= limit; i++ {
		w := create(router, gin.H{"mode": "compare", "title": fmt.Sprintf("run %d", i)})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	sessions, err := store.List(context.Background(), "u1", 1000)
	require.NoError(t, err)
	assert.Len(t, sessions, limit)

	for _, s := range sessions {
		assert.NotEqual(t, "run 0", s.Title)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	router, _ := newRouter(t, credits.PlanFree)

	assert.Equal(t, http.StatusBadRequest, create(router, gin.H{"mode": "poetry"}).Code)
	assert.Equal(t, http.StatusBadRequest, create(router, gin.H{"title": "no mode"}).Code)
}

func TestListSessions(t *testing.T) {
	router, _ := newRouter(t, credits.PlanStarter)
	require.Equal(t, http.StatusCreated, create(router, gin.H{"mode": "judge", "title": "first"}).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListSessionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Limit)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "first", resp.Sessions[0].Title)
}
