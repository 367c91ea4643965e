package orchestrator

import (
	"encoding/json"
	"strings"
)

const (
	fallbackComment     = "Automatic ranking (judge response parsing failed)"
	fallbackSummary     = "Judge evaluation completed, but response parsing failed."
	fallbackScore       = 0.5
	notEvaluatedComment = "Not evaluated by judge"
	notEvaluatedScore   = 0.0
)

// Parsed is the outcome of reading structured data out of model text.
// When OK is false Value is the zero value and Raw holds the text that failed.
type Parsed[T any] struct {
	Value T
	Raw   string
	OK    bool
}

// pulls the first JSON object out of free text and decodes it
func parseJSON[T any](raw string) Parsed[T] {
	for _, candidate := range jsonCandidates(raw) {
		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return Parsed[T]{Value: v, Raw: raw, OK: true}
		}
	}

	return Parsed[T]{Raw: raw}
}

// the first balanced {...} span, then the span from the first { to the last }
func jsonCandidates(raw string) []string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil
	}

	var out []string
	if span, ok := balancedObject(raw[start:]); ok {
		out = append(out, span)
	}

	if end := strings.LastIndexByte(raw, '}'); end > start {
		greedy := raw[start : end+1]
		if len(out) == 0 || out[0] != greedy {
			out = append(out, greedy)
		}
	}

	return out
}

// s starts with '{'. braces inside JSON strings are ignored
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// a verdict without any ranking entries is treated as unparseable
func parseJudgeVerdict(raw string) Parsed[JudgeVerdict] {
	p := parseJSON[JudgeVerdict](raw)
	if p.OK && len(p.Value.Ranking) == 0 {
		return Parsed[JudgeVerdict]{Raw: raw}
	}
	return p
}

type synthesisPayload struct {
	Content           string   `json:"content"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

func parseSynthesis(raw string) Parsed[synthesisPayload] {
	p := parseJSON[synthesisPayload](raw)
	if p.OK && strings.TrimSpace(p.Value.Content) == "" {
		return Parsed[synthesisPayload]{Raw: raw}
	}
	return p
}

// FallbackRanking ranks candidates in their original order with a neutral score.
func FallbackRanking(successful []ModelResult) JudgeVerdict {
	ranking := make([]RankingEntry, len(successful))
	for i, c := range successful {
		ranking[i] = RankingEntry{
			Model:   c.Model,
			Rank:    i + 1,
			Score:   fallbackScore,
			Comment: fallbackComment,
		}
	}

	return JudgeVerdict{Ranking: ranking, Summary: fallbackSummary}
}

// CompleteRanking makes the ranking cover every successful candidate exactly once.
// Entries for unknown or repeated models are dropped, scores are clamped to [0,1],
// and candidates the judge skipped are appended with a zero score.
func CompleteRanking(v JudgeVerdict, successful []ModelResult) JudgeVerdict {
	known := make(map[string]bool, len(successful))
	for _, c := range successful {
		known[c.Model] = true
	}

	seen := make(map[string]bool, len(successful))
	ranking := make([]RankingEntry, 0, len(successful))

	for _, e := range v.Ranking {
		if !known[e.Model] || seen[e.Model] {
			continue
		}
		seen[e.Model] = true
		e.Score = clampScore(e.Score)
		ranking = append(ranking, e)
	}

	for _, c := range successful {
		if seen[c.Model] {
			continue
		}
		seen[c.Model] = true
		ranking = append(ranking, RankingEntry{
			Model:   c.Model,
			Rank:    len(ranking) + 1,
			Score:   notEvaluatedScore,
			Comment: notEvaluatedComment,
		})
	}

	return JudgeVerdict{Ranking: ranking, Summary: v.Summary}
}

func clampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
