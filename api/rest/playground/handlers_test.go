package playground

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/llm"
	"codeberg.org/miriamlab/server/internal/metering"
	"codeberg.org/miriamlab/server/internal/metrics"
	"codeberg.org/miriamlab/server/internal/orchestrator"
	"codeberg.org/miriamlab/server/miriamlab/usage"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type scriptedCompleter struct {
	answers map[string]string
	errs    map[string]error
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	if err := s.errs[req.Model]; err != nil {
		return nil, err
	}

	answer, ok := s.answers[req.Model]
	if !ok {
		answer = req.Model + " answer"
	}

	return &llm.Completion{
		Text:  answer,
		Model: req.Model,
		Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

type usageLog struct {
	mu      sync.Mutex
	entries []usage.Entry
}

func (u *usageLog) Log(_ context.Context, e *usage.Entry) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.entries = append(u.entries, *e)
	return nil
}

func (u *usageLog) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.entries)
}

type harness struct {
	completer *scriptedCompleter
	store     *wallets.MemoryStore
	service   *wallets.Service
	usage     *usageLog
	router    *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		completer: &scriptedCompleter{answers: map[string]string{}, errs: map[string]error{}},
		store:     wallets.NewMemoryStore(),
		usage:     &usageLog{},
	}
	h.service = wallets.NewService(h.store).WithClock(func() time.Time { return testNow })

	engine := orchestrator.New(h.completer, orchestrator.Options{})
	meter := metering.NewMeter(h.service, h.usage, events.NewBus(), metrics.New(prometheus.NewRegistry()))

	h.router = gin.New()
	api := h.router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set("user_id", user)
		}
	})
	api.POST("/chat", ChatHandler(engine, meter))
	api.POST("/compare", CompareHandler(engine, meter))
	api.POST("/judge", JudgeHandler(engine, meter))
	api.POST("/research", ResearchHandler(engine, meter))

	return h
}

func (h *harness) wallet(userID string, plan credits.Plan, free, sub, topup int) {
	h.store.Put(wallets.Wallet{
		UserID:                userID,
		Plan:                  plan,
		FreeDailyRemaining:    free,
		SubscriptionRemaining: sub,
		TopupRemaining:        topup,
		LastDailyReset:        testNow.Add(-time.Hour),
	})
}

func (h *harness) post(t *testing.T, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) total(t *testing.T, userID string) int {
	t.Helper()

	w, err := h.store.Find(context.Background(), userID)
	require.NoError(t, err)
	return w.Balance().Total()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChat_ChargesOneCredit(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanFree, 10, 0, 0)

	w := h.post(t, "/api/v1/chat", "u1", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hello"}},
		"model":    "m1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "m1 answer", body["text"])
	creditsBlock := body["credits"].(map[string]any)
	assert.Equal(t, true, creditsBlock["charged"])
	assert.Equal(t, float64(1), creditsBlock["credits_spent"])

	assert.Equal(t, 9, h.total(t, "u1"))
	assert.Equal(t, 1, h.usage.count())
}

func TestChat_Unauthenticated(t *testing.T) {
	h := newHarness(t)

	w := h.post(t, "/api/v1/chat", "", gin.H{"messages": []gin.H{{"role": "user", "content": "hi"}}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChat_BackendFailureIsNotCharged(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanFree, 10, 0, 0)
	h.completer.errs["m1"] = errors.New("boom")

	w := h.post(t, "/api/v1/chat", "u1", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hello"}},
		"model":    "m1",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 10, h.total(t, "u1"))
	assert.Zero(t, h.usage.count())
}

func TestChat_RateLimitedBackend(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanFree, 10, 0, 0)
	h.completer.errs["m1"] = llm.ErrRateLimited

	w := h.post(t, "/api/v1/chat", "u1", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hello"}},
		"model":    "m1",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 10, h.total(t, "u1"))
}

func TestCompare_PartialFailureIsCharged(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanFree, 2, 0, 5)
	h.completer.errs["b"] = errors.New("upstream down")

	w := h.post(t, "/api/v1/compare", "u1", gin.H{
		"prompt": "explain goroutines",
		"models": []string{"a", "b", "c"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Results []orchestrator.ModelResult `json:"results"`
		Credits metering.Receipt           `json:"credits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "a", resp.Results[0].Model)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Zero(t, resp.Results[1].Usage.TotalTokens)

	assert.True(t, resp.Credits.Charged)
	assert.Equal(t, 3, resp.Credits.CreditsSpent)
	require.NotNil(t, resp.Credits.Balance)
	assert.Equal(t, 0, resp.Credits.Balance.FreeDaily)
	assert.Equal(t, 4, resp.Credits.Balance.Topup)
}

func TestCompare_AllFailedIsNotCharged(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanStarter, 10, 100, 0)
	h.completer.errs["a"] = errors.New("down")
	h.completer.errs["b"] = errors.New("down")

	w := h.post(t, "/api/v1/compare", "u1", gin.H{
		"prompt": "p",
		"models": []string{"a", "b"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 110, h.total(t, "u1"))
	assert.Zero(t, h.usage.count())
}

func TestCompare_Denials(t *testing.T) {
	tests := []struct {
		name   string
		plan   credits.Plan
		free   int
		models []string
		status int
		code   string
	}{
		{"free plan above its model cap", credits.PlanFree, 10, []string{"a", "b", "c", "d"}, http.StatusForbidden, credits.CodePlanLimitExceeded},
		{"gate wins over insufficiency", credits.PlanFree, 0, []string{"a", "b", "c", "d"}, http.StatusForbidden, credits.CodePlanLimitExceeded},
		{"insufficient credits", credits.PlanStarter, 2, []string{"a", "b"}, http.StatusPaymentRequired, "insufficient_credits"},
		{"more than five models", credits.PlanPro, 10, []string{"a", "b", "c", "d", "e", "f"}, http.StatusBadRequest, "validation_error"},
		{"no models", credits.PlanPro, 10, []string{}, http.StatusBadRequest, "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.wallet("u1", tt.plan, tt.free, 0, 0)

			w := h.post(t, "/api/v1/compare", "u1", gin.H{"prompt": "p", "models": tt.models})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w)["error"])
			assert.Equal(t, tt.free, h.total(t, "u1"))
		})
	}
}

func TestMalformedRequests_RejectedBeforeWalletCheck(t *testing.T) {
	tests := []struct {
		name string
		path string
		body gin.H
	}{
		{"blank compare prompt", "/api/v1/compare", gin.H{"prompt": "   ", "models": []string{"a", "b"}}},
		{"blank compare model", "/api/v1/compare", gin.H{"prompt": "p", "models": []string{"a", " "}}},
		{"duplicate judge candidates", "/api/v1/judge", gin.H{"prompt": "p", "candidate_models": []string{"a", "a"}, "judge_model": "j"}},
		{"blank research question", "/api/v1/research", gin.H{"question": "\t", "expert_models": []string{"a"}, "synthesizer_model": "s"}},
		{"unknown chat role", "/api/v1/chat", gin.H{"messages": []gin.H{{"role": "tool", "content": "hi"}}}},
		{"empty chat content", "/api/v1/chat", gin.H{"messages": []gin.H{{"role": "user", "content": ""}}}},
		{"whitespace chat content", "/api/v1/chat", gin.H{"messages": []gin.H{{"role": "user", "content": "  "}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.wallet("u1", credits.PlanStarter, 0, 0, 0)

			w := h.post(t, tt.path, "u1", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "validation_error", decode(t, w)["error"])
			assert.Zero(t, h.usage.count())
		})
	}
}

func TestCompare_InsufficientBody(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanStarter, 1, 1, 0)

	w := h.post(t, "/api/v1/compare", "u1", gin.H{"prompt": "p", "models": []string{"a", "b", "c", "d"}})
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(5), body["credits_needed"])
	assert.Equal(t, float64(3), body["shortfall"])
	assert.NotNil(t, body["balance"])
}

func TestJudge_FallbackVerdictIsCharged(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanFree, 10, 0, 0)
	h.completer.answers["judge"] = "I prefer the second one."

	w := h.post(t, "/api/v1/judge", "u1", gin.H{
		"prompt":           "p",
		"candidate_models": []string{"a", "b"},
		"judge_model":      "judge",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp JudgeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.JudgeParsed)
	require.Len(t, resp.Verdict.Ranking, 2)
	assert.Equal(t, 0.5, resp.Verdict.Ranking[0].Score)
	assert.Equal(t, 6, resp.Credits.CreditsSpent)
	assert.Equal(t, 4, h.total(t, "u1"))
}

func TestJudge_RankingCompleted(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanFree, 10, 0, 0)
	h.completer.answers["judge"] = `{"ranking":[{"model":"b","rank":1,"score":0.9,"comment":"clear"}],"summary":"b is best"}`

	w := h.post(t, "/api/v1/judge", "u1", gin.H{
		"prompt":           "p",
		"candidate_models": []string{"a", "b"},
		"judge_model":      "judge",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp JudgeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Verdict.Ranking, 2)
	assert.Equal(t, "b", resp.Verdict.Ranking[0].Model)
	assert.Equal(t, "a", resp.Verdict.Ranking[1].Model)
	assert.Equal(t, 2, resp.Verdict.Ranking[1].Rank)
	assert.Equal(t, "b is best", resp.Verdict.Summary)
}

func TestJudge_TooManyCandidates(t *testing.T) {
	h := newHarness(t)
	h.wallet("u1", credits.PlanPro, 10, 0, 0)

	w := h.post(t, "/api/v1/judge", "u1", gin.H{
		"prompt":           "p",
		"candidate_models": []string{"a", "b", "c", "d"},
		"judge_model":      "judge",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResearch(t *testing.T) {
	synthesis := `{"content":"combined report","follow_up_questions":["what next?"]}`

	t.Run("free plan is gated", func(t *testing.T) {
		h := newHarness(t)
		h.wallet("u1", credits.PlanFree, 10, 0, 100)

		w := h.post(t, "/api/v1/research", "u1", gin.H{
			"question":          "q",
			"expert_models":     []string{"a"},
			"synthesizer_model": "s",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)

		body := decode(t, w)
		assert.Equal(t, credits.CodePlanTooLow, body["error"])
		assert.Equal(t, "free", body["plan"])
	})

	t.Run("success charges ten", func(t *testing.T) {
		h := newHarness(t)
		h.wallet("u1", credits.PlanStarter, 4, 20, 0)
		h.completer.answers["s"] = synthesis

		w := h.post(t, "/api/v1/research", "u1", gin.H{
			"question":          "q",
			"expert_models":     []string{"a", "b"},
			"synthesizer_model": "s",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp ResearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "combined report", resp.Synthesized.Content)
		assert.Equal(t, []string{"what next?"}, resp.Synthesized.FollowUpQuestions)
		assert.Equal(t, 10, resp.Credits.CreditsSpent)
		require.NotNil(t, resp.Credits.Balance)
		assert.Equal(t, 0, resp.Credits.Balance.FreeDaily)
		assert.Equal(t, 14, resp.Credits.Balance.Subscription)
	})

	t.Run("synthesis failure is not charged", func(t *testing.T) {
		h := newHarness(t)
		h.wallet("u1", credits.PlanPro, 10, 100, 0)
		h.completer.answers["s"] = "not json at all"

		w := h.post(t, "/api/v1/research", "u1", gin.H{
			"question":          "q",
			"expert_models":     []string{"a"},
			"synthesizer_model": "s",
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 110, h.total(t, "u1"))
		assert.Zero(t, h.usage.count())
	})
}

func TestCharge(t *testing.T) {
	h := newHarness(t)
	meter := metering.NewMeter(h.service, h.usage, events.NewBus(), metrics.New(prometheus.NewRegistry()))
	h.router.POST("/charge", func(c *gin.Context) { c.Set("user_id", "u1") }, ChargeHandler(meter))
	h.wallet("u1", credits.PlanFree, 3, 0, 4)

	w := h.post(t, "/charge", "", gin.H{"mode": "judge"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var receipt metering.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	assert.True(t, receipt.Charged)
	assert.Equal(t, 6, receipt.CreditsSpent)
	assert.Equal(t, 1, receipt.Balance.Topup)

	w = h.post(t, "/charge", "", gin.H{"mode": "chat"})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.post(t, "/charge", "", gin.H{"mode": "chat"})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = h.post(t, "/charge", "", gin.H{"mode": "poetry"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.post(t, "/charge", "", gin.H{"mode": "research", "model_count": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
