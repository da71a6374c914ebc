package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prajwalmandlik2004/indx-corporate/internal/analysis"
	"github.com/prajwalmandlik2004/indx-corporate/internal/llm"
	"github.com/prajwalmandlik2004/indx-corporate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeStore struct {
	mu       sync.Mutex
	attempts map[string]model.TestAttempt
	done     chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{attempts: map[string]model.TestAttempt{}, done: make(chan struct{}, 4)}
}

func (s *fakeStore) CreateAttempt(attempt *model.TestAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = uuid.New()
	attempt.CreatedAt = time.Now()
	s.attempts[attempt.ID.String()] = *attempt
	return nil
}

func (s *fakeStore) UpdateAttempt(attempt *model.TestAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.UpdatedAt = time.Now()
	s.attempts[attempt.ID.String()] = *attempt
	if attempt.Status == "completed" || attempt.Status == "failed" {
		s.done <- struct{}{}
	}
	return nil
}

func (s *fakeStore) FindAttemptByID(id string) (*model.TestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &attempt, nil
}

func (s *fakeStore) ListAttempts(page, pageSize int) ([]model.TestAttempt, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TestAttempt
	for _, a := range s.attempts {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (s *fakeStore) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not finish in time")
	}
}

func scoringProvider(name string, score float64) *llm.MockProvider {
	mock := llm.NewMockProvider(name)
	mock.InvokeFunc = func(ctx context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.Prompt, "SINGLE question") {
			return fmt.Sprintf(`{"question_number": 1, "score": %g, "feedback": "ok"}`, score), nil
		}
		if strings.Contains(req.Prompt, "cognitive interaction") {
			return fmt.Sprintf(`{"overall_score": %g, "index": ["a"], "analysis": "x", "operational_projection": "y"}`, score), nil
		}
		// Legacy aggregate or question generation.
		return fmt.Sprintf(`{"overall_score": %g, "detailed_analysis": "x", "strengths": ["s"], "improvements": ["i"], "recommendations": "r"}`, score), nil
	}
	return mock
}

func failingProvider(name string) *llm.MockProvider {
	mock := llm.NewMockProvider(name)
	mock.InvokeFunc = func(ctx context.Context, req llm.Request) (string, error) {
		return "", errors.New("backend unavailable")
	}
	return mock
}

func newUsecase(store *fakeStore, providers []llm.Provider, fallback llm.Provider) *AttemptUsecase {
	orchestrator := analysis.NewOrchestrator(analysis.DefaultEngines(providers))
	generator := analysis.NewQuestionGenerator(failingProvider("generator"))
	return NewAttemptUsecase(store, orchestrator, generator, fallback)
}

func TestStartValidatesCategoryAndLevel(t *testing.T) {
	uc := newUsecase(newFakeStore(), []llm.Provider{scoringProvider("gpt4o", 80)}, nil)

	_, _, err := uc.Start(context.Background(), "astrology", "level_1")
	assert.Error(t, err)

	_, _, err = uc.Start(context.Background(), "school", "level_9")
	assert.Error(t, err)
}

func TestStartCreatesAttemptWithQuestions(t *testing.T) {
	store := newFakeStore()
	uc := newUsecase(store, []llm.Provider{scoringProvider("gpt4o", 80)}, nil)

	attempt, questions, err := uc.Start(context.Background(), "school", "level_1")
	require.NoError(t, err)
	require.Len(t, questions, questionsPerTest)
	assert.Equal(t, "School - Level 1", attempt.TestName)
	assert.Equal(t, "created", attempt.Status)
	assert.NotEqual(t, uuid.Nil, attempt.ID)

	stored, err := store.FindAttemptByID(attempt.ID.String())
	require.NoError(t, err)
	assert.True(t, gjson.Valid(stored.Questions))
}

func TestSubmitRunsAnalysisInBackground(t *testing.T) {
	store := newFakeStore()
	uc := newUsecase(store, []llm.Provider{
		scoringProvider("gpt4o", 80),
		failingProvider("claude"),
	}, nil)

	attempt, _, err := uc.Start(context.Background(), "technical", "level_2")
	require.NoError(t, err)

	submitted, err := uc.Submit(context.Background(), attempt.ID.String(), []analysis.Answer{
		{QuestionID: 1, AnswerText: "an answer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "processing", submitted.Status)

	store.waitDone(t)

	final, err := uc.Result(attempt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "completed", final.Status)
	assert.NotNil(t, final.Completed)
	assert.Equal(t, float64(800), final.Score)

	analyses := gjson.Get(final.Analysis, "analyses")
	assert.True(t, analyses.Get("gpt4o.overall_score").Exists())
	assert.Equal(t, "backend unavailable", analyses.Get("claude.error").String())
}

func TestSubmitFallsBackWhenEveryProviderFails(t *testing.T) {
	store := newFakeStore()
	uc := newUsecase(store, []llm.Provider{
		failingProvider("gpt4o"),
		failingProvider("claude"),
	}, scoringProvider("gemini", 80))

	attempt, _, err := uc.Start(context.Background(), "general", "level_1")
	require.NoError(t, err)

	_, err = uc.Submit(context.Background(), attempt.ID.String(), nil)
	require.NoError(t, err)

	store.waitDone(t)

	final, err := uc.Result(attempt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "completed", final.Status)

	// Legacy shape carries 0-100; the attempt score is rescaled to 0-1000.
	assert.Equal(t, float64(800), final.Score)
	assert.True(t, gjson.Get(final.Analysis, "question_feedback").IsArray())
}

func TestSubmitReturnsSnapshotDetachedFromAnalysis(t *testing.T) {
	store := newFakeStore()
	uc := newUsecase(store, []llm.Provider{scoringProvider("gpt4o", 80)}, nil)

	attempt, _, err := uc.Start(context.Background(), "general", "level_2")
	require.NoError(t, err)

	submitted, err := uc.Submit(context.Background(), attempt.ID.String(), nil)
	require.NoError(t, err)

	store.waitDone(t)

	// The background goroutine works on its own copy: the attempt handed
	// back by Submit stays in the state it was returned in.
	assert.Equal(t, "processing", submitted.Status)
	assert.Nil(t, submitted.Completed)
	assert.Zero(t, submitted.Score)

	final, err := uc.Result(attempt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "completed", final.Status)
	assert.NotNil(t, final.Completed)
}

func TestSubmitRejectsCompletedAttempt(t *testing.T) {
	store := newFakeStore()
	uc := newUsecase(store, []llm.Provider{scoringProvider("gpt4o", 80)}, nil)

	attempt, _, err := uc.Start(context.Background(), "company", "level_3")
	require.NoError(t, err)

	_, err = uc.Submit(context.Background(), attempt.ID.String(), nil)
	require.NoError(t, err)
	store.waitDone(t)

	_, err = uc.Submit(context.Background(), attempt.ID.String(), nil)
	assert.Error(t, err)
}

func TestSubmitUnknownAttempt(t *testing.T) {
	uc := newUsecase(newFakeStore(), []llm.Provider{scoringProvider("gpt4o", 80)}, nil)

	_, err := uc.Submit(context.Background(), uuid.NewString(), nil)
	assert.Error(t, err)
}

func TestHeadlineScorePrefersConfiguredOrder(t *testing.T) {
	result := &analysis.Result{
		Analyses: map[string]analysis.ProviderResult{
			"gemini": {OverallScore: 300},
			"claude": {OverallScore: 700},
			"gpt4o":  analysis.ErrorResult(errors.New("down")),
		},
	}
	assert.Equal(t, float64(700), headlineScore(result))
}

func TestTestName(t *testing.T) {
	assert.Equal(t, "School - Level 1", testName("school", "level_1"))
	assert.Equal(t, "General - Level 5", testName("general", "level_5"))
}
