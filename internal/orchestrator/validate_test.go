package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/miriamlab/server/internal/llm"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  interface{ Validate() error }
		want error
	}{
		{"chat ok", ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}}, nil},
		{"chat no messages", ChatRequest{}, ErrNoMessages},
		{"chat unknown role", ChatRequest{Messages: []llm.Message{{Role: "tool", Content: "hi"}}}, ErrInvalidMessage},
		{"chat blank content", ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: " "}}}, ErrInvalidMessage},
		{"compare ok", CompareRequest{Prompt: "p", Models: []string{"a", "b"}}, nil},
		{"compare blank prompt", CompareRequest{Prompt: "  ", Models: []string{"a"}}, ErrEmptyPrompt},
		{"compare blank model", CompareRequest{Prompt: "p", Models: []string{"a", ""}}, ErrMissingModel},
		{"compare too many", CompareRequest{Prompt: "p", Models: []string{"a", "b", "c", "d", "e", "f"}}, ErrInvalidModelCount},
		{"judge ok", JudgeRequest{Prompt: "p", CandidateModels: []string{"a", "b"}, JudgeModel: "j"}, nil},
		{"judge duplicates", JudgeRequest{Prompt: "p", CandidateModels: []string{"a", "a"}, JudgeModel: "j"}, ErrDuplicateCandidates},
		{"judge missing judge", JudgeRequest{Prompt: "p", CandidateModels: []string{"a"}}, ErrMissingModel},
		{"research ok", ResearchRequest{Question: "q", ExpertModels: []string{"a"}, SynthesizerModel: "s"}, nil},
		{"research blank question", ResearchRequest{Question: "\n", ExpertModels: []string{"a"}, SynthesizerModel: "s"}, ErrEmptyPrompt},
		{"research no experts", ResearchRequest{Question: "q", SynthesizerModel: "s"}, ErrInvalidExpertCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
