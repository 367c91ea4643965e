package playground

import (
	"context"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/llm"
	"codeberg.org/miriamlab/server/internal/metering"
	"codeberg.org/miriamlab/server/internal/orchestrator"
)

// Orchestrator runs the four playground modes.
type Orchestrator interface {
	Chat(ctx context.Context, req orchestrator.ChatRequest) (*orchestrator.ChatResult, error)
	Compare(ctx context.Context, req orchestrator.CompareRequest) (*orchestrator.CompareResult, error)
	Judge(ctx context.Context, req orchestrator.JudgeRequest) (*orchestrator.JudgeResult, error)
	Research(ctx context.Context, req orchestrator.ResearchRequest) (*orchestrator.ResearchResult, error)
}

// Meter gates an action before dispatch and charges it after success.
type Meter interface {
	Preflight(ctx context.Context, userID string, mode credits.Mode, modelCount int) (*credits.Balance, error)
	Settle(ctx context.Context, a metering.Action) metering.Receipt
}

type ChargeRequest struct {
	Mode       string `json:"mode" binding:"required"`
	ModelCount int    `json:"model_count" binding:"gte=0,lte=5"`
}

type ChatRequest struct {
	Messages    []llm.Message `json:"messages" binding:"required,min=1,dive"`
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature" binding:"gte=0,lte=2"`
	MaxTokens   int           `json:"max_tokens" binding:"gte=0"`
}

type ChatResponse struct {
	*orchestrator.ChatResult
	Credits metering.Receipt `json:"credits"`
}

// CompareRequest accepts up to 5 models; the caller's plan may allow fewer.
type CompareRequest struct {
	Prompt      string   `json:"prompt" binding:"required"`
	Models      []string `json:"models" binding:"required,min=1,max=5,dive,required"`
	System      string   `json:"system"`
	Temperature float32  `json:"temperature" binding:"gte=0,lte=2"`
	MaxTokens   int      `json:"max_tokens" binding:"gte=0"`
}

type CompareResponse struct {
	*orchestrator.CompareResult
	Credits metering.Receipt `json:"credits"`
}

type JudgeRequest struct {
	Prompt          string   `json:"prompt" binding:"required"`
	CandidateModels []string `json:"candidate_models" binding:"required,min=1,max=3,dive,required"`
	JudgeModel      string   `json:"judge_model" binding:"required"`
	System          string   `json:"system"`
	Temperature     float32  `json:"temperature" binding:"gte=0,lte=2"`
	MaxTokens       int      `json:"max_tokens" binding:"gte=0"`
}

type JudgeResponse struct {
	*orchestrator.JudgeResult
	Credits metering.Receipt `json:"credits"`
}

type ResearchRequest struct {
	Question         string   `json:"question" binding:"required"`
	ExpertModels     []string `json:"expert_models" binding:"required,min=1,max=5,dive,required"`
	SynthesizerModel string   `json:"synthesizer_model" binding:"required"`
	Temperature      float32  `json:"temperature" binding:"gte=0,lte=2"`
	MaxTokens        int      `json:"max_tokens" binding:"gte=0"`
}

type ResearchResponse struct {
	*orchestrator.ResearchResult
	Credits metering.Receipt `json:"credits"`
}
