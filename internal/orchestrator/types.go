package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/llm"
)

// ErrInvalidRequest wraps every input validation failure.
var ErrInvalidRequest = errors.New("invalid request")

var (
	ErrNoMessages            = fmt.Errorf("%w: at least one message is required", ErrInvalidRequest)
	ErrEmptyPrompt           = fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	ErrMissingModel          = fmt.Errorf("%w: model identifier is required", ErrInvalidRequest)
	ErrInvalidMessage        = fmt.Errorf("%w: messages need a system, user or assistant role and non-empty content", ErrInvalidRequest)
	ErrDuplicateCandidates   = fmt.Errorf("%w: candidate models must be distinct", ErrInvalidRequest)
	ErrInvalidModelCount     = fmt.Errorf("%w: compare needs between 1 and %d models", ErrInvalidRequest, credits.MaxCompareModels)
	ErrInvalidCandidateCount = fmt.Errorf("%w: judge needs between 1 and %d candidate models", ErrInvalidRequest, credits.MaxJudgeCandidates)
	ErrInvalidExpertCount    = fmt.Errorf("%w: research needs between 1 and %d expert models", ErrInvalidRequest, credits.MaxResearchExperts)
)

// request-level failures after dispatch; none of these are charged
var (
	ErrAllModelsFailed  = errors.New("all models failed")
	ErrAllExpertsFailed = errors.New("all expert models failed")
	ErrJudgeFailed      = errors.New("judge model failed")
	ErrSynthesisFailed  = errors.New("research synthesis failed")
)

// CallObserver is notified after every completion call.
type CallObserver func(mode credits.Mode, model string, err error, elapsed time.Duration)

// Options tunes the engine. Zero values take defaults.
type Options struct {
	CallTimeout          time.Duration
	JudgeTemperature     float32
	SynthesisTemperature float32
	JudgeMaxTokens       int
	SynthesisMaxTokens   int
	ExpertMaxTokens      int
	OnCall               CallObserver
}

type ChatRequest struct {
	Messages    []llm.Message
	Model       string
	Temperature float32
	MaxTokens   int
}

type ChatResult struct {
	Text   string    `json:"text"`
	Model  string    `json:"model"`
	Usage  llm.Usage `json:"usage"`
	TimeMS int64     `json:"time_ms"`
}

type CompareRequest struct {
	Prompt      string
	System      string
	Models      []string
	Temperature float32
	MaxTokens   int
}

// ModelResult is one model's answer within a batch. Failed models carry Error and zero usage.
type ModelResult struct {
	Model  string    `json:"model"`
	Output string    `json:"output"`
	TimeMS int64     `json:"time_ms"`
	Usage  llm.Usage `json:"usage"`
	Error  string    `json:"error,omitempty"`
}

func (r ModelResult) OK() bool {
	return r.Error == ""
}

// CompareResult is index-aligned with CompareRequest.Models.
type CompareResult struct {
	Results []ModelResult `json:"results"`
}

type JudgeRequest struct {
	Prompt          string
	System          string
	CandidateModels []string
	JudgeModel      string
	Temperature     float32
	MaxTokens       int
}

type RankingEntry struct {
	Model   string  `json:"model"`
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
}

type JudgeVerdict struct {
	Ranking []RankingEntry `json:"ranking"`
	Summary string         `json:"summary"`
}

type JudgeResult struct {
	Candidates []ModelResult `json:"candidates"`
	Verdict    JudgeVerdict  `json:"judge_result"`
	JudgeModel string        `json:"judge_model"`
	JudgeUsage llm.Usage     `json:"judge_usage"`

	// false when the verdict is the order-based fallback
	JudgeParsed bool `json:"judge_parsed"`
}

type ResearchRequest struct {
	Question         string
	ExpertModels     []string
	SynthesizerModel string
	Temperature      float32
	MaxTokens        int
}

type ExpertReport struct {
	Model  string    `json:"model"`
	Report string    `json:"report"`
	Usage  llm.Usage `json:"usage"`
	TimeMS int64     `json:"time_ms"`
	Error  string    `json:"error,omitempty"`
}

type SynthesizedReport struct {
	Content           string    `json:"content"`
	FollowUpQuestions []string  `json:"follow_up_questions"`
	Usage             llm.Usage `json:"usage"`
}

type ResearchResult struct {
	ExpertReports    []ExpertReport    `json:"expert_reports"`
	Synthesized      SynthesizedReport `json:"synthesized_report"`
	SynthesizerModel string            `json:"synthesizer_model"`
}

// Summary condenses a result for the usage log.
type Summary struct {
	Models    []string
	Usage     llm.Usage
	Succeeded int
	Failed    int
}
