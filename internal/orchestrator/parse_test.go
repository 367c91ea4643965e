package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJudgeVerdict(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		ok     bool
		models []string
	}{
		{
			name:   "bare json",
			raw:    `{"ranking": [{"model": "a", "rank": 1, "score": 0.8}], "summary": "s"}`,
			ok:     true,
			models: []string{"a"},
		},
		{
			name:   "wrapped in prose and fences",
			raw:    "Here you go:\n```json\n{\"ranking\": [{\"model\": \"b\", \"rank\": 1, \"score\": 0.8, \"comment\": \"uses {braces}\"}]}\n```\nThanks!",
			ok:     true,
			models: []string{"b"},
		},
		{
			name:   "trailing object after verdict",
			raw:    `{"ranking": [{"model": "a", "rank": 1}]} and also {"x": 1}`,
			ok:     true,
			models: []string{"a"},
		},
		{
			name: "empty ranking",
			raw:  `{"ranking": [], "summary": "nothing"}`,
		},
		{
			name: "no json",
			raw:  "all of them were fine",
		},
		{
			name: "truncated json",
			raw:  `{"ranking": [{"model": "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseJudgeVerdict(tt.raw)
			assert.Equal(t, tt.ok, p.OK)
			assert.Equal(t, tt.raw, p.Raw)

			if !tt.ok {
				return
			}

			var models []string
			for _, e := range p.Value.Ranking {
				models = append(models, e.Model)
			}
			assert.Equal(t, tt.models, models)
		})
	}
}

func TestBalancedObject_IgnoresBracesInStrings(t *testing.T) {
	span, ok := balancedObject(`{"a": "}\"{", "b": {"c": 1}} tail`)
	require.True(t, ok)
	assert.Equal(t, `{"a": "}\"{", "b": {"c": 1}}`, span)

	_, ok = balancedObject(`{"a": 1`)
	assert.False(t, ok)
}

func TestCompleteRanking_DropsDuplicates(t *testing.T) {
	successful := []ModelResult{{Model: "a"}, {Model: "b"}}
	v := JudgeVerdict{Ranking: []RankingEntry{
		{Model: "a", Rank: 1, Score: -0.2},
		{Model: "a", Rank: 2, Score: 0.4},
	}}

	out := CompleteRanking(v, successful)
	require.Len(t, out.Ranking, 2)
	assert.Equal(t, RankingEntry{Model: "a", Rank: 1, Score: 0}, out.Ranking[0])
	assert.Equal(t, "b", out.Ranking[1].Model)
	assert.Equal(t, 2, out.Ranking[1].Rank)
	assert.Equal(t, notEvaluatedComment, out.Ranking[1].Comment)
}

func TestFallbackRanking(t *testing.T) {
	out := FallbackRanking([]ModelResult{{Model: "x"}, {Model: "y"}})

	require.Len(t, out.Ranking, 2)
	assert.Equal(t, fallbackSummary, out.Summary)
	assert.Equal(t, "y", out.Ranking[1].Model)
	assert.Equal(t, 2, out.Ranking[1].Rank)
	assert.Equal(t, 0.5, out.Ranking[1].Score)
}

func TestParseSynthesis_NilFollowUps(t *testing.T) {
	p := parseSynthesis(`{"content": "report"}`)
	require.True(t, p.OK)
	assert.Equal(t, "report", p.Value.Content)
	assert.Nil(t, p.Value.FollowUpQuestions)
}
