package analysis

import (
	"context"
	"fmt"
	"log"

	"github.com/prajwalmandlik2004/indx-corporate/internal/llm"
	"github.com/prajwalmandlik2004/indx-corporate/internal/util"
	"github.com/tidwall/gjson"
)

const (
	generateTemperature = 0.7
	generateMaxTokens   = 2000
)

// QuestionGenerator produces a fresh question set for a category and level
// from a single provider. Generation is best-effort: on any failure it
// returns deterministic placeholder questions so a test can always start.
type QuestionGenerator struct {
	provider llm.Provider
}

// NewQuestionGenerator builds a generator on the given provider.
func NewQuestionGenerator(provider llm.Provider) *QuestionGenerator {
	return &QuestionGenerator{provider: provider}
}

// Generate returns numQuestions questions with ids assigned 1..N.
func (g *QuestionGenerator) Generate(ctx context.Context, category, level string, numQuestions int) []Question {
	raw, err := g.provider.Invoke(ctx, llm.Request{
		Prompt:      buildQuestionGenPrompt(category, level, numQuestions),
		System:      generatorSystem,
		Temperature: generateTemperature,
		MaxTokens:   generateMaxTokens,
	})
	if err != nil {
		log.Printf("question generation failed: %v", err)
		return defaultQuestions(category, level, numQuestions)
	}

	text, err := util.SanitizeAndParse(raw)
	if err != nil {
		log.Printf("generated questions unparsable: %v", err)
		return defaultQuestions(category, level, numQuestions)
	}

	items := gjson.Parse(text).Array()
	if len(items) == 0 {
		log.Printf("question generation returned an empty set")
		return defaultQuestions(category, level, numQuestions)
	}

	questions := make([]Question, 0, len(items))
	for i, item := range items {
		questions = append(questions, Question{
			QuestionID:       i + 1,
			QuestionText:     item.Get("question").String(),
			ExpectedCriteria: item.Get("expected_answer_criteria").String(),
		})
	}
	return questions
}

func defaultQuestions(category, level string, numQuestions int) []Question {
	questions := make([]Question, numQuestions)
	for i := range questions {
		questions[i] = Question{
			QuestionID:       i + 1,
			QuestionText:     fmt.Sprintf("Question %d for %s - %s", i+1, category, level),
			ExpectedCriteria: "Provide a detailed answer",
		}
	}
	return questions
}
