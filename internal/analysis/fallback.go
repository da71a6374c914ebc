package analysis

import (
	"context"
	"log"

	"github.com/prajwalmandlik2004/indx-corporate/internal/llm"
	"github.com/prajwalmandlik2004/indx-corporate/internal/util"
	"github.com/tidwall/gjson"
)

// LegacyAnalysis is the single-provider analysis shape predating the
// multi-provider orchestrator. The submit flow falls back to it when full
// orchestration fails catastrophically. Its overall score stays on the
// 0-100 scale.
type LegacyAnalysis struct {
	OverallScore     float64          `json:"overall_score"`
	DetailedAnalysis string           `json:"detailed_analysis"`
	QuestionFeedback []QuestionResult `json:"question_feedback"`
	Strengths        []string         `json:"strengths"`
	Improvements     []string         `json:"improvements"`
	Recommendations  []string         `json:"recommendations"`
}

// AnalyzeSingle runs the degraded single-provider analysis path. Like the
// orchestrator it never returns an error: aggregate failures yield generic
// narrative fields around the scores that did compute.
func AnalyzeSingle(ctx context.Context, provider llm.Provider, questions []Question, answers []Answer, category, level string) *LegacyAnalysis {
	payload := NewSessionPayload(questions, answers, category, level)
	s := NewSessionAnalyzer(provider, RolePromptFor(provider.Name()))

	feedback := make([]QuestionResult, len(payload.Questions))
	scores := make([]float64, len(payload.Questions))
	for i, q := range payload.Questions {
		feedback[i] = s.evaluateQuestion(ctx, payload, q)
		scores[i] = feedback[i].Score
	}
	mean := meanScore(feedback)

	result := &LegacyAnalysis{
		OverallScore:     mean,
		DetailedAnalysis: "Analysis in progress. Please try again later.",
		QuestionFeedback: feedback,
		Strengths:        []string{"Completion of test"},
		Improvements:     []string{"Review concepts"},
		Recommendations:  []string{"Continue practicing"},
	}

	raw, err := provider.Invoke(ctx, llm.Request{
		Prompt:      buildLegacyAggregatePrompt(category, level, len(payload.Questions), mean, scores),
		System:      assessorSystem,
		Temperature: aggregateTemperature,
		MaxTokens:   aggregateMaxTokens,
	})
	if err != nil {
		log.Printf("%s: legacy aggregate analysis failed: %v", provider.Name(), err)
		return result
	}

	text, err := util.SanitizeAndParse(raw)
	if err != nil {
		log.Printf("%s: legacy aggregate analysis unparsable: %v", provider.Name(), err)
		return result
	}

	if s := gjson.Get(text, "detailed_analysis").String(); s != "" {
		result.DetailedAnalysis = s
	}
	if v := gjson.Get(text, "strengths"); v.IsArray() {
		result.Strengths = stringList(v)
	}
	if v := gjson.Get(text, "improvements"); v.IsArray() {
		result.Improvements = stringList(v)
	}
	if s := gjson.Get(text, "recommendations").String(); s != "" {
		result.Recommendations = []string{s}
	}
	return result
}

func stringList(v gjson.Result) []string {
	items := v.Array()
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}
