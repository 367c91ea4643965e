package orchestrator

import (
	"strings"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/llm"
)

// Validate checks the request shape only; it never touches a backend.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return ErrNoMessages
	}
	for _, m := range r.Messages {
		switch m.Role {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		default:
			return ErrInvalidMessage
		}
		if strings.TrimSpace(m.Content) == "" {
			return ErrInvalidMessage
		}
	}
	return nil
}

func (r CompareRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(r.Models) < 1 || len(r.Models) > credits.MaxCompareModels {
		return ErrInvalidModelCount
	}
	return requireModels(r.Models)
}

func (r JudgeRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(r.CandidateModels) < 1 || len(r.CandidateModels) > credits.MaxJudgeCandidates {
		return ErrInvalidCandidateCount
	}
	if err := requireModels(append([]string{r.JudgeModel}, r.CandidateModels...)); err != nil {
		return err
	}
	if hasDuplicates(r.CandidateModels) {
		return ErrDuplicateCandidates
	}
	return nil
}

func (r ResearchRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ErrEmptyPrompt
	}
	if len(r.ExpertModels) < 1 || len(r.ExpertModels) > credits.MaxResearchExperts {
		return ErrInvalidExpertCount
	}
	return requireModels(append([]string{r.SynthesizerModel}, r.ExpertModels...))
}

func requireModels(models []string) error {
	for _, m := range models {
		if strings.TrimSpace(m) == "" {
			return ErrMissingModel
		}
	}
	return nil
}

func hasDuplicates(models []string) bool {
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if seen[m] {
			return true
		}
		seen[m] = true
	}
	return false
}
