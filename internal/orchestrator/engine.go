// Package orchestrator dispatches prompts to one or many models and
// aggregates their answers for the chat, compare, judge and research modes.
//
// Batches fan out concurrently and always wait for every call. A failed
// model is reported inline; only a batch where nothing succeeded fails
// the whole action.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/llm"
)

const (
	defaultCallTimeout          = 120 * time.Second
	defaultJudgeTemperature     = float32(0.3)
	defaultSynthesisTemperature = float32(0.5)
	defaultJudgeMaxTokens       = 2000
	defaultSynthesisMaxTokens   = 3000
	defaultExpertMaxTokens      = 2000
)

// Engine runs the four orchestration modes against a completion backend.
type Engine struct {
	completer llm.Completer
	opts      Options
}

func New(completer llm.Completer, opts Options) *Engine {
	if opts.CallTimeout == 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.JudgeTemperature == 0 {
		opts.JudgeTemperature = defaultJudgeTemperature
	}
	if opts.SynthesisTemperature == 0 {
		opts.SynthesisTemperature = defaultSynthesisTemperature
	}
	if opts.JudgeMaxTokens == 0 {
		opts.JudgeMaxTokens = defaultJudgeMaxTokens
	}
	if opts.SynthesisMaxTokens == 0 {
		opts.SynthesisMaxTokens = defaultSynthesisMaxTokens
	}
	if opts.ExpertMaxTokens == 0 {
		opts.ExpertMaxTokens = defaultExpertMaxTokens
	}

	return &Engine{completer: completer, opts: opts}
}

// Chat makes a single completion call, adding the default persona when no system message was given.
func (e *Engine) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	messages := withDefaultPersona(req.Messages)

	out := e.call(ctx, credits.ModeChat, llm.CompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if out.err != nil {
		return nil, out.err
	}

	return &ChatResult{
		Text:   out.completion.Text,
		Model:  out.completion.Model,
		Usage:  out.completion.Usage,
		TimeMS: out.elapsed.Milliseconds(),
	}, nil
}

func withDefaultPersona(messages []llm.Message) []llm.Message {
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			return messages
		}
	}

	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: defaultPersonaPrompt})
	return append(out, messages...)
}

// Compare sends the same prompt to every model. The returned result is always
// index-aligned with req.Models, including when ErrAllModelsFailed is returned.
func (e *Engine) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	results := e.runCandidates(ctx, credits.ModeCompare, req.Models, promptMessages(req.System, req.Prompt), req.Temperature, req.MaxTokens)
	out := &CompareResult{Results: results}

	if countOK(results) == 0 {
		return out, ErrAllModelsFailed
	}

	return out, nil
}

// Judge collects candidate answers and has the judge model rank the successful ones.
// An unparseable verdict degrades to FallbackRanking instead of failing.
func (e *Engine) Judge(ctx context.Context, req JudgeRequest) (*JudgeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidates := e.runCandidates(ctx, credits.ModeJudge, req.CandidateModels, promptMessages(req.System, req.Prompt), req.Temperature, req.MaxTokens)
	result := &JudgeResult{Candidates: candidates, JudgeModel: req.JudgeModel}

	successful := make([]ModelResult, 0, len(candidates))
	for _, c := range candidates {
		if c.OK() {
			successful = append(successful, c)
		}
	}

	if len(successful) == 0 {
		return result, ErrAllModelsFailed
	}

	out := e.call(ctx, credits.ModeJudge, llm.CompletionRequest{
		Model: req.JudgeModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: judgeSystemPrompt},
			{Role: llm.RoleUser, Content: buildJudgePrompt(req.Prompt, req.System, successful)},
		},
		Temperature: e.opts.JudgeTemperature,
		MaxTokens:   e.opts.JudgeMaxTokens,
	})
	if out.err != nil {
		return result, fmt.Errorf("%w: %w", ErrJudgeFailed, out.err)
	}

	result.JudgeUsage = out.completion.Usage

	verdict := parseJudgeVerdict(out.completion.Text)
	if verdict.OK {
		result.Verdict = verdict.Value
		result.JudgeParsed = true
	} else {
		result.Verdict = FallbackRanking(successful)
	}

	result.Verdict = CompleteRanking(result.Verdict, successful)

	return result, nil
}

// Research asks every expert model from a rotating perspective, then synthesizes
// the successful reports. Synthesis failures fail the whole action.
func (e *Engine) Research(ctx context.Context, req ResearchRequest) (*ResearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = e.opts.ExpertMaxTokens
	}

	calls := make([]llm.CompletionRequest, len(req.ExpertModels))
	for i, model := range req.ExpertModels {
		calls[i] = llm.CompletionRequest{
			Model: model,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: expertPerspective(i)},
				{Role: llm.RoleUser, Content: req.Question},
			},
			Temperature: req.Temperature,
			MaxTokens:   maxTokens,
		}
	}

	outcomes := e.fanOut(ctx, credits.ModeResearch, calls)

	result := &ResearchResult{
		ExpertReports:    make([]ExpertReport, len(outcomes)),
		SynthesizerModel: req.SynthesizerModel,
	}
	successful := make([]ExpertReport, 0, len(outcomes))

	for i, o := range outcomes {
		report := ExpertReport{Model: req.ExpertModels[i], TimeMS: o.elapsed.Milliseconds()}
		if o.err != nil {
			report.Error = o.err.Error()
		} else {
			report.Report = o.completion.Text
			report.Usage = o.completion.Usage
			successful = append(successful, report)
		}
		result.ExpertReports[i] = report
	}

	if len(successful) == 0 {
		return result, ErrAllExpertsFailed
	}

	out := e.call(ctx, credits.ModeResearch, llm.CompletionRequest{
		Model: req.SynthesizerModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: synthesisSystemPrompt},
			{Role: llm.RoleUser, Content: buildSynthesisPrompt(req.Question, successful)},
		},
		Temperature: e.opts.SynthesisTemperature,
		MaxTokens:   e.opts.SynthesisMaxTokens,
	})
	if out.err != nil {
		return result, fmt.Errorf("%w: %w", ErrSynthesisFailed, out.err)
	}

	parsed := parseSynthesis(out.completion.Text)
	if !parsed.OK {
		return result, fmt.Errorf("%w: synthesizer response was not valid JSON", ErrSynthesisFailed)
	}

	followUps := parsed.Value.FollowUpQuestions
	if followUps == nil {
		followUps = []string{}
	}

	result.Synthesized = SynthesizedReport{
		Content:           parsed.Value.Content,
		FollowUpQuestions: followUps,
		Usage:             out.completion.Usage,
	}

	return result, nil
}

func (e *Engine) runCandidates(ctx context.Context, mode credits.Mode, models []string, messages []llm.Message, temperature float32, maxTokens int) []ModelResult {
	calls := make([]llm.CompletionRequest, len(models))
	for i, model := range models {
		calls[i] = llm.CompletionRequest{
			Model:       model,
			Messages:    messages,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}
	}

	outcomes := e.fanOut(ctx, mode, calls)

	results := make([]ModelResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = ModelResult{Model: models[i], TimeMS: o.elapsed.Milliseconds()}
		if o.err != nil {
			results[i].Error = o.err.Error()
			continue
		}
		results[i].Output = o.completion.Text
		results[i].Usage = o.completion.Usage
	}

	return results
}

type callOutcome struct {
	completion *llm.Completion
	err        error
	elapsed    time.Duration
}

// runs every call concurrently and waits for all of them. outcomes[i] belongs to calls[i]
func (e *Engine) fanOut(ctx context.Context, mode credits.Mode, calls []llm.CompletionRequest) []callOutcome {
	outcomes := make([]callOutcome, len(calls))

	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = e.call(ctx, mode, calls[i])
		}(i)
	}
	wg.Wait()

	return outcomes
}

func (e *Engine) call(ctx context.Context, mode credits.Mode, req llm.CompletionRequest) (out callOutcome) {
	callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out = callOutcome{err: fmt.Errorf("model %s: completion panicked: %v", req.Model, r)}
		}
		out.elapsed = time.Since(start)

		if e.opts.OnCall != nil {
			e.opts.OnCall(mode, req.Model, out.err, out.elapsed)
		}
	}()

	completion, err := e.completer.Complete(callCtx, req)
	if err == nil && completion == nil {
		err = fmt.Errorf("model %s: %w", req.Model, llm.ErrEmptyResponse)
	}

	return callOutcome{completion: completion, err: err}
}

func promptMessages(system, prompt string) []llm.Message {
	messages := make([]llm.Message, 0, 2)
	if system != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})
}

func countOK(results []ModelResult) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}
