package orchestrator

import "codeberg.org/miriamlab/server/internal/llm"

func (r *ChatResult) Summary() Summary {
	return Summary{Models: []string{r.Model}, Usage: r.Usage, Succeeded: 1}
}

func (r *CompareResult) Summary() Summary {
	return summarizeCandidates(r.Results)
}

// judge usage is counted on top of the candidates; the judge model is listed last
func (r *JudgeResult) Summary() Summary {
	s := summarizeCandidates(r.Candidates)
	s.Models = append(s.Models, r.JudgeModel)
	s.Usage = s.Usage.Add(r.JudgeUsage)
	return s
}

func (r *ResearchResult) Summary() Summary {
	s := Summary{Models: make([]string, 0, len(r.ExpertReports)+1)}

	for _, e := range r.ExpertReports {
		s.Models = append(s.Models, e.Model)
		if e.Error != "" {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Usage = s.Usage.Add(e.Usage)
	}

	s.Models = append(s.Models, r.SynthesizerModel)
	s.Usage = s.Usage.Add(r.Synthesized.Usage)

	return s
}

func summarizeCandidates(results []ModelResult) Summary {
	s := Summary{Models: make([]string, 0, len(results))}
	var usage llm.Usage

	for _, r := range results {
		s.Models = append(s.Models, r.Model)
		if !r.OK() {
			s.Failed++
			continue
		}
		s.Succeeded++
		usage = usage.Add(r.Usage)
	}

	s.Usage = usage
	return s
}
