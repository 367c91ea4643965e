package orchestrator

import (
	"fmt"
	"strings"
)

// injected into single chat when the caller sent no system message
const defaultPersonaPrompt = "You are Miriam, a friendly and highly capable AI assistant. " +
	"You speak both Arabic and English and answer in whichever language the user uses. " +
	"You are great at coding, debugging, research, and explaining complex topics simply. " +
	"Keep answers structured, concise, and practical. " +
	"When answering in Arabic, use a clear modern tone and avoid overly formal language."

// research experts cycle through these by index
var expertPerspectives = []string{
	"You are a technical expert. Provide a detailed, technical analysis focusing on facts, data, and implementation details.",
	"You are a creative strategist. Provide innovative ideas, alternative perspectives, and strategic recommendations.",
	"You are a critical analyst. Provide a balanced evaluation, identify potential issues, and suggest improvements.",
}

const (
	judgeSystemPrompt     = "You are an expert AI evaluator. Always respond with valid JSON only."
	synthesisSystemPrompt = "You are a research synthesizer. Always respond with valid JSON only."
)

func expertPerspective(index int) string {
	return expertPerspectives[index%len(expertPerspectives)]
}

func buildJudgePrompt(prompt, system string, candidates []ModelResult) string {
	var b strings.Builder

	b.WriteString("You are an expert AI evaluator. Rank and critique the following AI model responses to the same user prompt.\n\n")
	b.WriteString("USER PROMPT:\n")
	b.WriteString(prompt)
	b.WriteString("\n\n")

	if system != "" {
		fmt.Fprintf(&b, "SYSTEM INSTRUCTION: %s\n\n", system)
	}

	b.WriteString("CANDIDATE RESPONSES:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "\n%d. Model: %s\nResponse:\n%s\n", i+1, c.Model, c.Output)
	}

	b.WriteString(`
Evaluate and rank these responses from best (rank 1) to worst. Consider accuracy, completeness,
clarity, relevance to the prompt and quality of reasoning. Respond in this JSON format:
{
  "ranking": [
    {"model": "model_name", "rank": 1, "score": 0.95, "comment": "Brief explanation of this ranking"}
  ],
  "summary": "Overall summary comparing all responses"
}

Use the exact model names given above. Scores are between 0 and 1.
Return ONLY the JSON, no additional text.`)

	return b.String()
}

func buildSynthesisPrompt(question string, reports []ExpertReport) string {
	var b strings.Builder

	b.WriteString("You are a research synthesizer. Merge and synthesize multiple expert reports on the same question.\n\n")
	b.WriteString("RESEARCH QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nEXPERT REPORTS:\n")

	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "\nExpert %d (%s):\n%s\n", i+1, r.Model, r.Report)
	}

	b.WriteString(`
Synthesize these reports into one comprehensive final report that:
1. Identifies common themes and agreements
2. Highlights unique insights from each expert
3. Resolves contradictions or conflicts
4. Provides a cohesive, well-structured summary
5. Suggests 3-5 follow-up questions for deeper exploration

Respond in this JSON format:
{
  "content": "Your synthesized report here...",
  "follow_up_questions": ["Question 1", "Question 2", "Question 3"]
}

Return ONLY the JSON, no additional text.`)

	return b.String()
}
