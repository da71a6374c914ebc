package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prajwalmandlik2004/indx-corporate/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoQuestions() []Question {
	return []Question{
		{QuestionID: 1, QuestionText: "What is a prompt?", ExpectedCriteria: "Defines prompting"},
		{QuestionID: 2, QuestionText: "When would you distrust a model answer?"},
	}
}

func isQuestionPrompt(req llm.Request) bool {
	return strings.Contains(req.Prompt, "SINGLE question")
}

// scriptedProvider answers question evaluations from the scores map (keyed by
// a fragment of the question text) and aggregation with the given payload.
func scriptedProvider(name string, scores map[string]float64, aggregate string) *llm.MockProvider {
	mock := llm.NewMockProvider(name)
	mock.InvokeFunc = func(ctx context.Context, req llm.Request) (string, error) {
		if isQuestionPrompt(req) {
			for fragment, score := range scores {
				if strings.Contains(req.Prompt, fragment) {
					return fmt.Sprintf(`{"question_number": 99, "score": %g, "feedback": "noted"}`, score), nil
				}
			}
			return `{"question_number": 99, "score": 50, "feedback": "noted"}`, nil
		}
		return aggregate, nil
	}
	return mock
}

func TestRunScalesOverallScoreToIndexRange(t *testing.T) {
	mock := scriptedProvider("gpt4o",
		map[string]float64{"What is a prompt?": 80, "distrust": 90},
		`{"overall_score": 85, "index": ["a", "b"], "analysis": "solid", "operational_projection": "keeps improving"}`,
	)
	s := NewSessionAnalyzer(mock, RolePromptFor("gpt4o"))

	res := s.Run(context.Background(), NewSessionPayload(twoQuestions(), []Answer{
		{QuestionID: 1, AnswerText: "An instruction to a model"},
		{QuestionID: 2, AnswerText: "When sources are missing"},
	}, "technical", "level_2"))

	require.False(t, res.Failed())
	assert.Equal(t, float64(850), res.OverallScore)
	assert.Equal(t, "solid", res.Analysis)
	assert.Equal(t, "keeps improving", res.OperationalProjection)
	require.Len(t, res.QuestionFeedback, 2)
}

func TestRunForcesQuestionNumbersToInputIDs(t *testing.T) {
	// The scripted provider always echoes question_number 99; the result
	// must carry the original ids anyway.
	mock := scriptedProvider("claude", nil,
		`{"overall_score": 50, "index": [], "analysis": "", "operational_projection": ""}`,
	)
	s := NewSessionAnalyzer(mock, RolePromptFor("claude"))

	res := s.Run(context.Background(), NewSessionPayload(twoQuestions(), nil, "general", "level_1"))

	require.False(t, res.Failed())
	require.Len(t, res.QuestionFeedback, 2)
	numbers := []int{res.QuestionFeedback[0].QuestionNumber, res.QuestionFeedback[1].QuestionNumber}
	assert.ElementsMatch(t, []int{1, 2}, numbers)
}

func TestRunSubstitutesPlaceholderForMissingAnswers(t *testing.T) {
	mock := scriptedProvider("grok", nil,
		`{"overall_score": 50, "index": [], "analysis": "", "operational_projection": ""}`,
	)
	s := NewSessionAnalyzer(mock, RolePromptFor("grok"))

	s.Run(context.Background(), NewSessionPayload(twoQuestions(), []Answer{
		{QuestionID: 1, AnswerText: "Answered"},
	}, "school", "level_1"))

	var sawPlaceholder bool
	for _, call := range mock.Calls {
		if isQuestionPrompt(call) && strings.Contains(call.Prompt, "distrust") {
			sawPlaceholder = strings.Contains(call.Prompt, NoAnswerPlaceholder)
		}
	}
	assert.True(t, sawPlaceholder, "unanswered question should be evaluated with the placeholder text")
}

func TestRunTruncatesIndexToSevenItems(t *testing.T) {
	mock := scriptedProvider("mistral", nil,
		`{"overall_score": 50, "index": ["1","2","3","4","5","6","7","8","9"], "analysis": "x", "operational_projection": "y"}`,
	)
	s := NewSessionAnalyzer(mock, RolePromptFor("mistral"))

	res := s.Run(context.Background(), NewSessionPayload(twoQuestions(), nil, "company", "level_3"))

	require.False(t, res.Failed())
	assert.Len(t, res.Index, 7)
	assert.Equal(t, "7", res.Index[6])
}

func TestRunAbsorbsPerQuestionFailures(t *testing.T) {
	mock := llm.NewMockProvider("groq")
	mock.InvokeFunc = func(ctx context.Context, req llm.Request) (string, error) {
		if isQuestionPrompt(req) {
			if strings.Contains(req.Prompt, "What is a prompt?") {
				return `{"question_number": 1, "score": 100, "feedback": "good"}`, nil
			}
			return "", errors.New("backend exploded")
		}
		return `{"overall_score": 50, "index": [], "analysis": "", "operational_projection": ""}`, nil
	}
	s := NewSessionAnalyzer(mock, RolePromptFor("groq"))

	res := s.Run(context.Background(), NewSessionPayload(twoQuestions(), nil, "general", "level_1"))

	require.False(t, res.Failed())
	require.Len(t, res.QuestionFeedback, 2)

	byNumber := map[int]QuestionResult{}
	for _, f := range res.QuestionFeedback {
		byNumber[f.QuestionNumber] = f
	}
	assert.Equal(t, float64(100), byNumber[1].Score)
	assert.Equal(t, float64(0), byNumber[2].Score)
	assert.Equal(t, "Analysis unavailable", byNumber[2].Feedback)

	// The mean counts the zero-score fallback: (100+0)/2 = 50, x10 = 500.
	assert.Equal(t, float64(500), res.OverallScore)
}

func TestRunClampsScores(t *testing.T) {
	mock := scriptedProvider("gpt4o",
		map[string]float64{"What is a prompt?": 250, "distrust": -40},
		`{"overall_score": 50, "index": [], "analysis": "", "operational_projection": ""}`,
	)
	s := NewSessionAnalyzer(mock, RolePromptFor("gpt4o"))

	res := s.Run(context.Background(), NewSessionPayload(twoQuestions(), nil, "general", "level_1"))

	require.False(t, res.Failed())
	byNumber := map[int]QuestionResult{}
	for _, f := range res.QuestionFeedback {
		byNumber[f.QuestionNumber] = f
	}
	assert.Equal(t, float64(100), byNumber[1].Score)
	assert.Equal(t, float64(0), byNumber[2].Score)
}

func TestRunReturnsErrorVariantWhenAggregateFails(t *testing.T) {
	mock := llm.NewMockProvider("claude")
	mock.InvokeFunc = func(ctx context.Context, req llm.Request) (string, error) {
		if isQuestionPrompt(req) {
			return `{"question_number": 1, "score": 70, "feedback": "fine"}`, nil
		}
		return "", errors.New("aggregate call failed")
	}
	s := NewSessionAnalyzer(mock, RolePromptFor("claude"))

	res := s.Run(context.Background(), NewSessionPayload(twoQuestions(), nil, "general", "level_1"))

	require.True(t, res.Failed())
	assert.Contains(t, res.Err, "aggregate call failed")
}

func TestRunReturnsErrorVariantWhenAggregateUnparsable(t *testing.T) {
	mock := llm.NewMockProvider("grok")
	mock.InvokeFunc = func(ctx context.Context, req llm.Request) (string, error) {
		if isQuestionPrompt(req) {
			return `{"question_number": 1, "score": 70, "feedback": "fine"}`, nil
		}
		return "Here is my analysis in plain prose instead of JSON.", nil
	}
	s := NewSessionAnalyzer(mock, RolePromptFor("grok"))

	res := s.Run(context.Background(), NewSessionPayload(twoQuestions(), nil, "general", "level_1"))
	assert.True(t, res.Failed())
}

func TestSerializedDispatchPreservesQuestionOrder(t *testing.T) {
	mock := scriptedProvider("gemini", nil,
		`{"overall_score": 50, "index": [], "analysis": "", "operational_projection": ""}`,
	)
	mock.SetPolicy(llm.DispatchPolicy{Serialized: true, MinDelay: time.Millisecond})
	s := NewSessionAnalyzer(mock, RolePromptFor("gemini"))

	questions := []Question{
		{QuestionID: 1, QuestionText: "first question"},
		{QuestionID: 2, QuestionText: "second question"},
		{QuestionID: 3, QuestionText: "third question"},
	}
	s.Run(context.Background(), NewSessionPayload(questions, nil, "general", "level_1"))

	var order []string
	for _, call := range mock.Calls {
		if !isQuestionPrompt(call) {
			continue
		}
		for _, q := range questions {
			if strings.Contains(call.Prompt, q.QuestionText) {
				order = append(order, q.QuestionText)
			}
		}
	}
	assert.Equal(t, []string{"first question", "second question", "third question"}, order)
}

func TestSerializedDispatchPausesBeforeAggregate(t *testing.T) {
	const delay = 30 * time.Millisecond

	var stamps []time.Time
	mock := llm.NewMockProvider("gemini")
	mock.InvokeFunc = func(ctx context.Context, req llm.Request) (string, error) {
		stamps = append(stamps, time.Now())
		if isQuestionPrompt(req) {
			return `{"question_number": 1, "score": 50, "feedback": "ok"}`, nil
		}
		return `{"overall_score": 50, "index": [], "analysis": "", "operational_projection": ""}`, nil
	}
	mock.SetPolicy(llm.DispatchPolicy{Serialized: true, MinDelay: delay})
	s := NewSessionAnalyzer(mock, RolePromptFor("gemini"))

	res := s.Run(context.Background(), NewSessionPayload([]Question{
		{QuestionID: 1, QuestionText: "only question"},
	}, nil, "general", "level_1"))

	require.False(t, res.Failed())
	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), delay,
		"aggregation call should wait out the inter-request delay")
}

func TestMeanScoreOfEmptyFeedbackIsZero(t *testing.T) {
	assert.Equal(t, float64(0), meanScore(nil))
}
