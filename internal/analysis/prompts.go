package analysis

import (
	"fmt"
	"strings"
)

const (
	evaluatorSystem = "You are an independent question evaluator. Analyze each question in complete isolation. Return ONLY valid JSON, no markdown."
	assessorSystem  = "You are an educational assessor. Return ONLY valid JSON, no markdown."
	generatorSystem = "You are an expert test creator. Return ONLY valid JSON, no markdown formatting."
)

// buildIsolatedPrompt frames a single question-answer pair for evaluation.
// The prompt is self-contained: it forbids inference from other questions,
// continuity assumptions, or recall beyond the given pair, so no
// cross-question leakage can skew the score.
func buildIsolatedPrompt(rolePrompt string, q Question, answerText string) string {
	criteria := q.ExpectedCriteria
	if criteria == "" {
		criteria = "N/A"
	}

	return fmt.Sprintf(`%s

Analyze this SINGLE question and answer independently. Do not reference any other questions or answers.

Question: %s
Expected Criteria: %s
User Answer: %s

Provide analysis in JSON format with ONLY these fields:
{
  "question_number": %d,
  "score": <number between 0-100>,
  "feedback": "<brief feedback about THIS answer only>"
}

CRITICAL RULES:
- Do not infer or recall information beyond this single question
- Do not assume continuity with other questions
- Analyze ONLY the provided answer against the provided question
- Keep feedback focused solely on this question-answer pair`,
		rolePrompt, q.QuestionText, criteria, answerText, q.QuestionID)
}

// buildAggregatePrompt asks for the narrative session analysis. Only the
// already-computed mean score and the question count are supplied; the
// provider is told not to recompute the score, which keeps the numeric
// average and the narrative consistent.
func buildAggregatePrompt(rolePrompt string, questionCount int, meanScore float64) string {
	return fmt.Sprintf(`%s

Analyze the user's cognitive interaction with AI systems based on these scores.

Session Summary:
- Total questions: %d
- Average score: %.1f%%

Provide analysis in STRICT JSON format with EXACTLY these fields:
{
  "overall_score": %g,
  "index": ["<item1>", "<item2>", "<item3>", "<item4>", "<item5>", "<item6>", "<item7>"],
  "analysis": "<paragraph1>\n\n<paragraph2>\n\n<paragraph3>",
  "operational_projection": "<one paragraph>"
}

CRITICAL FORMATTING RULES:
- index: Exactly 6-7 items, each 5-6 words maximum, descriptive phrases
- analysis: MUST be 2-3 separate paragraphs separated by \n\n (double newline)
  Each paragraph should be 3-5 sentences
  NO bullet points, NO sections, continuous prose only
- operational_projection: ONE paragraph, 3-4 sentences, conditional phrasing
- Do NOT use special characters, quotes, or control characters in strings
- Score is already calculated: %g - do NOT recalculate
- Write in a neutral, analytical tone similar to academic assessment`,
		rolePrompt, questionCount, meanScore, meanScore, meanScore)
}

// buildLegacyAggregatePrompt is the single-provider degraded path's summary
// prompt, kept for the backward-compatible analysis shape.
func buildLegacyAggregatePrompt(category, level string, questionCount int, meanScore float64, scores []float64) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%g", s)
	}

	return fmt.Sprintf(`Based on these aggregated scores for a %s test at %s, provide overall analysis.

Session Summary:
- Total questions: %d
- Average score: %.1f%%
- Scores distribution: [%s]

Provide analysis in JSON format:
{
  "overall_score": %g,
  "detailed_analysis": "<2-3 sentences about overall performance>",
  "strengths": ["<strength 1>", "<strength 2>"],
  "improvements": ["<area 1>", "<area 2>", "<area 3>"],
  "recommendations": "<personalized learning recommendation>"
}

CRITICAL RULES:
- Do not infer or recall specific question content
- Do not assume continuity with previous sessions
- Base analysis ONLY on the provided aggregated scores
- Keep analysis general and constructive`,
		category, level, questionCount, meanScore, strings.Join(parts, ", "), meanScore)
}

// buildQuestionGenPrompt asks the provider for a fresh question set.
func buildQuestionGenPrompt(category, level string, numQuestions int) string {
	return fmt.Sprintf(`Generate %d test questions for a %s test at %s.

For each question, provide:
1. A clear, concise question
2. Expected answer criteria

Format the response as a JSON array with objects containing 'question' and 'expected_answer_criteria'.
Make questions progressively challenging based on the level.`,
		numQuestions, category, level)
}

// rolePrompts gives each provider a distinct analytical framing. The framing
// is descriptive only; it does not change the output schema.
var rolePrompts = map[string]string{
	"gpt4o":   "You are a technical evaluator analyzing cognitive framing abilities. Analyze each question independently.",
	"claude":  "You are a pedagogical expert evaluating reasoning patterns. Analyze each question independently.",
	"grok":    "You are a critical thinking assessor evaluating decision-making. Analyze each question independently.",
	"groq":    "You are a cognitive skills evaluator analyzing analytical thinking. Analyze each question independently.",
	"gemini":  "You are a strategic analyst evaluating problem-solving approaches. Analyze each question independently.",
	"mistral": "You are an AI interaction specialist evaluating meta-cognitive awareness. Analyze each question independently.",
}

const defaultRolePrompt = "You are an impartial evaluator of AI interaction skills. Analyze each question independently."

// RolePromptFor returns the role framing for a provider name.
func RolePromptFor(provider string) string {
	if p, ok := rolePrompts[provider]; ok {
		return p
	}
	return defaultRolePrompt
}
