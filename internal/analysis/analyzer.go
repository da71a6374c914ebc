package analysis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prajwalmandlik2004/indx-corporate/internal/llm"
	"github.com/prajwalmandlik2004/indx-corporate/internal/util"
	"github.com/tidwall/gjson"
)

const (
	evaluateTemperature  = 0.3
	evaluateMaxTokens    = 500
	aggregateTemperature = 0.5
	aggregateMaxTokens   = 1000

	// maxIndexItems caps the index phrase list even when a provider
	// returns more.
	maxIndexItems = 7

	unavailableFeedback = "Analysis unavailable"
)

// SessionAnalyzer drives one provider through a full session: every question
// evaluated in isolation, then one narrative aggregation call. It owns the
// ProviderResult it builds until Run returns.
type SessionAnalyzer struct {
	provider   llm.Provider
	rolePrompt string
}

// NewSessionAnalyzer pairs a provider with its role framing.
func NewSessionAnalyzer(provider llm.Provider, rolePrompt string) *SessionAnalyzer {
	return &SessionAnalyzer{provider: provider, rolePrompt: rolePrompt}
}

// Run produces the provider's session result. It never returns an error:
// any failure it cannot absorb per-question becomes the {error} variant, so
// the orchestrator can keep provider branches isolated.
func (s *SessionAnalyzer) Run(ctx context.Context, payload *SessionPayload) ProviderResult {
	feedback, err := s.evaluateAll(ctx, payload)
	if err != nil {
		// Only dispatch-level failures (context cancellation) land
		// here; per-question errors are already absorbed.
		log.Printf("%s: session evaluation aborted: %v", s.provider.Name(), err)
		return ErrorResult(err)
	}

	mean := meanScore(feedback)

	// Serialized backends get the same inter-request pause before the
	// aggregation call as between question evaluations.
	if policy := s.provider.Policy(); policy.Serialized && policy.MinDelay > 0 {
		select {
		case <-ctx.Done():
			return ErrorResult(ctx.Err())
		case <-time.After(policy.MinDelay):
		}
	}

	raw, err := s.provider.Invoke(ctx, llm.Request{
		Prompt:      buildAggregatePrompt(s.rolePrompt, len(payload.Questions), mean),
		System:      assessorSystem,
		Temperature: aggregateTemperature,
		MaxTokens:   aggregateMaxTokens,
	})
	if err != nil {
		log.Printf("%s: aggregate analysis failed: %v", s.provider.Name(), err)
		return ErrorResult(err)
	}

	text, err := util.SanitizeAndParse(raw)
	if err != nil {
		log.Printf("%s: aggregate analysis unparsable: %v", s.provider.Name(), err)
		return ErrorResult(err)
	}

	index := []string{}
	for _, item := range gjson.Get(text, "index").Array() {
		if len(index) == maxIndexItems {
			break
		}
		index = append(index, item.String())
	}

	return ProviderResult{
		OverallScore:          mean * 10,
		Index:                 index,
		Analysis:              gjson.Get(text, "analysis").String(),
		OperationalProjection: gjson.Get(text, "operational_projection").String(),
		QuestionFeedback:      feedback,
	}
}

// evaluateAll dispatches per-question evaluation according to the provider's
// policy: strictly serialized in input order with an enforced inter-request
// delay for rate-limited backends, concurrent otherwise.
func (s *SessionAnalyzer) evaluateAll(ctx context.Context, payload *SessionPayload) ([]QuestionResult, error) {
	results := make([]QuestionResult, len(payload.Questions))
	policy := s.provider.Policy()

	if policy.Serialized {
		for i, q := range payload.Questions {
			if policy.MinDelay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(policy.MinDelay):
				}
			}
			results[i] = s.evaluateQuestion(ctx, payload, q)
		}
		return results, nil
	}

	var wg sync.WaitGroup
	for i, q := range payload.Questions {
		wg.Add(1)
		go func(i int, q Question) {
			defer wg.Done()
			results[i] = s.evaluateQuestion(ctx, payload, q)
		}(i, q)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluateQuestion scores one question-answer pair. Provider and parse
// failures never propagate: the question falls back to a zero-score record
// so the session can still aggregate.
func (s *SessionAnalyzer) evaluateQuestion(ctx context.Context, payload *SessionPayload, q Question) QuestionResult {
	fallback := QuestionResult{
		QuestionNumber: q.QuestionID,
		Score:          0,
		Feedback:       unavailableFeedback,
	}

	raw, err := s.provider.Invoke(ctx, llm.Request{
		Prompt:      buildIsolatedPrompt(s.rolePrompt, q, payload.AnswerText(q.QuestionID)),
		System:      evaluatorSystem,
		Temperature: evaluateTemperature,
		MaxTokens:   evaluateMaxTokens,
	})
	if err != nil {
		log.Printf("%s: question %d evaluation failed: %v", s.provider.Name(), q.QuestionID, err)
		return fallback
	}

	text, err := util.SanitizeAndParse(raw)
	if err != nil {
		log.Printf("%s: question %d response unparsable: %v", s.provider.Name(), q.QuestionID, err)
		return fallback
	}

	return QuestionResult{
		// The provider may omit or corrupt question_number; the
		// original id is authoritative.
		QuestionNumber: q.QuestionID,
		Score:          clampScore(gjson.Get(text, "score").Float()),
		Feedback:       gjson.Get(text, "feedback").String(),
	}
}

func meanScore(feedback []QuestionResult) float64 {
	if len(feedback) == 0 {
		return 0
	}
	var total float64
	for _, f := range feedback {
		total += f.Score
	}
	return total / float64(len(feedback))
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
