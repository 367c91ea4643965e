package playground

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/errors"
	"codeberg.org/miriamlab/server/internal/llm"
	"codeberg.org/miriamlab/server/internal/metering"
	"codeberg.org/miriamlab/server/internal/orchestrator"
)

// ChatHandler godoc
// @Summary Single-model chat
// @Description Runs one completion and charges 1 credit on success
// @Tags playground
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Chat messages"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.InsufficientCreditsResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/chat [post]
// @Security BearerAuth
func ChatHandler(engine Orchestrator, meter Meter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		chat := orchestrator.ChatRequest{
			Messages:    req.Messages,
			Model:       req.Model,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}
		if !validate(c, chat) || !preflight(c, meter, userID, credits.ModeChat, 1) {
			return
		}

		result, err := engine.Chat(c.Request.Context(), chat)
		if err != nil {
			respondFailure(c, credits.ModeChat, err)
			return
		}

		receipt := meter.Settle(c.Request.Context(), metering.Action{
			UserID:     userID,
			Mode:       credits.ModeChat,
			ModelCount: 1,
			Summary:    result.Summary(),
		})

		c.JSON(http.StatusOK, ChatResponse{ChatResult: result, Credits: receipt})
	}
}

// CompareHandler godoc
// @Summary Compare models side by side
// @Description Sends one prompt to up to 5 models in parallel. Charged 3 credits for up to 3 models, 5 otherwise
// @Tags playground
// @Accept json
// @Produce json
// @Param request body CompareRequest true "Prompt and models"
// @Success 200 {object} CompareResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.InsufficientCreditsResponse
// @Failure 403 {object} errors.PlanGateResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/compare [post]
// @Security BearerAuth
func CompareHandler(engine Orchestrator, meter Meter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		compare := orchestrator.CompareRequest{
			Prompt:      req.Prompt,
			System:      req.System,
			Models:      req.Models,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}
		n := len(req.Models)
		if !validate(c, compare) || !preflight(c, meter, userID, credits.ModeCompare, n) {
			return
		}

		result, err := engine.Compare(c.Request.Context(), compare)
		if err != nil {
			respondFailure(c, credits.ModeCompare, err)
			return
		}

		receipt := meter.Settle(c.Request.Context(), metering.Action{
			UserID:     userID,
			Mode:       credits.ModeCompare,
			ModelCount: n,
			Summary:    result.Summary(),
		})

		c.JSON(http.StatusOK, CompareResponse{CompareResult: result, Credits: receipt})
	}
}

// JudgeHandler godoc
// @Summary Rank candidate answers with a judge model
// @Description Runs up to 3 candidates, then asks the judge model for a ranking. Charged 6 credits
// @Tags playground
// @Accept json
// @Produce json
// @Param request body JudgeRequest true "Prompt, candidates and judge"
// @Success 200 {object} JudgeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.InsufficientCreditsResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/judge [post]
// @Security BearerAuth
func JudgeHandler(engine Orchestrator, meter Meter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req JudgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		judge := orchestrator.JudgeRequest{
			Prompt:          req.Prompt,
			System:          req.System,
			CandidateModels: req.CandidateModels,
			JudgeModel:      req.JudgeModel,
			Temperature:     req.Temperature,
			MaxTokens:       req.MaxTokens,
		}
		n := len(req.CandidateModels)
		if !validate(c, judge) || !preflight(c, meter, userID, credits.ModeJudge, n) {
			return
		}

		result, err := engine.Judge(c.Request.Context(), judge)
		if err != nil {
			respondFailure(c, credits.ModeJudge, err)
			return
		}

		receipt := meter.Settle(c.Request.Context(), metering.Action{
			UserID:     userID,
			Mode:       credits.ModeJudge,
			ModelCount: n,
			Summary:    result.Summary(),
			Metadata: map[string]any{
				"judge_model":  result.JudgeModel,
				"judge_parsed": result.JudgeParsed,
			},
		})

		c.JSON(http.StatusOK, JudgeResponse{JudgeResult: result, Credits: receipt})
	}
}

// ResearchHandler godoc
// @Summary Multi-expert research report
// @Description Asks up to 5 expert models from different perspectives and synthesizes one report. Charged 10 credits; paid plans only
// @Tags playground
// @Accept json
// @Produce json
// @Param request body ResearchRequest true "Question, experts and synthesizer"
// @Success 200 {object} ResearchResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.InsufficientCreditsResponse
// @Failure 403 {object} errors.PlanGateResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/research [post]
// @Security BearerAuth
func ResearchHandler(engine Orchestrator, meter Meter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req ResearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		research := orchestrator.ResearchRequest{
			Question:         req.Question,
			ExpertModels:     req.ExpertModels,
			SynthesizerModel: req.SynthesizerModel,
			Temperature:      req.Temperature,
			MaxTokens:        req.MaxTokens,
		}
		n := len(req.ExpertModels)
		if !validate(c, research) || !preflight(c, meter, userID, credits.ModeResearch, n) {
			return
		}

		result, err := engine.Research(c.Request.Context(), research)
		if err != nil {
			respondFailure(c, credits.ModeResearch, err)
			return
		}

		receipt := meter.Settle(c.Request.Context(), metering.Action{
			UserID:     userID,
			Mode:       credits.ModeResearch,
			ModelCount: n,
			Summary:    result.Summary(),
			Metadata: map[string]any{
				"synthesizer_model": result.SynthesizerModel,
			},
		})

		c.JSON(http.StatusOK, ResearchResponse{ResearchResult: result, Credits: receipt})
	}
}

// ChargeHandler godoc
// @Summary Charge credits for an action
// @Description Debits the price of one action directly, applying the same plan gate and sufficiency checks as the playground routes
// @Tags playground
// @Accept json
// @Produce json
// @Param request body ChargeRequest true "Mode and model count"
// @Success 200 {object} metering.Receipt
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.InsufficientCreditsResponse
// @Failure 403 {object} errors.PlanGateResponse
// @Router /api/v1/charge [post]
// @Security BearerAuth
func ChargeHandler(meter Meter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req ChargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		mode := credits.Mode(req.Mode)
		if !credits.ValidMode(mode) {
			errors.BadRequest(c, "mode must be one of chat, compare, judge, research", nil)
			return
		}

		n := req.ModelCount
		if n == 0 {
			n = 1
		}

		if !preflight(c, meter, userID, mode, n) {
			return
		}

		receipt := meter.Settle(c.Request.Context(), metering.Action{
			UserID:     userID,
			Mode:       mode,
			ModelCount: n,
			Metadata:   map[string]any{"source": "direct"},
		})

		if !receipt.Charged {
			// the balance moved between the check and the debit
			needed := credits.CreditsNeeded(mode, n)
			var balance any
			shortfall := needed
			if receipt.Balance != nil {
				balance = receipt.Balance
				shortfall = max(needed-receipt.Balance.Total(), 0)
			}
			errors.InsufficientCredits(c, needed, shortfall, balance)
			return
		}

		c.JSON(http.StatusOK, receipt)
	}
}

// rejects malformed requests with 400 before any wallet read
func validate(c *gin.Context, req interface{ Validate() error }) bool {
	if err := req.Validate(); err != nil {
		errors.ValidationError(c, err)
		return false
	}
	return true
}

// writes the denial and returns false when the action must not run
func preflight(c *gin.Context, meter Meter, userID string, mode credits.Mode, modelCount int) bool {
	_, err := meter.Preflight(c.Request.Context(), userID, mode, modelCount)
	if err == nil {
		return true
	}

	respondDenied(c, err)
	return false
}

// maps a plan gate or insufficiency error to 403/402, anything else to 500
func respondDenied(c *gin.Context, err error) {
	var gate *credits.GateError
	var insufficient *metering.InsufficientCreditsError

	switch {
	case stderrors.As(err, &gate):
		errors.PlanGate(c, gate.Code, gate.Message, string(gate.Plan))
	case stderrors.As(err, &insufficient):
		errors.InsufficientCredits(c, insufficient.CreditsNeeded, insufficient.Shortfall, insufficient.Balance)
	default:
		errors.InternalError(c, "failed to check wallet", err)
	}
}

// orchestration failures are never charged
func respondFailure(c *gin.Context, mode credits.Mode, err error) {
	switch {
	case stderrors.Is(err, orchestrator.ErrInvalidRequest):
		errors.ValidationError(c, err)
	case stderrors.Is(err, llm.ErrRateLimited):
		errors.TooManyRequests(c, "model backend is rate limited, retry shortly")
	default:
		errors.UpstreamUnavailable(c, string(mode)+" failed", err)
	}
}
