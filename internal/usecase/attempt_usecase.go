package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/prajwalmandlik2004/indx-corporate/internal/analysis"
	"github.com/prajwalmandlik2004/indx-corporate/internal/llm"
	"github.com/prajwalmandlik2004/indx-corporate/internal/model"
)

const questionsPerTest = 5

// scorePreference orders providers for the headline attempt score: the first
// configured provider in this list that produced a full analysis wins.
var scorePreference = []string{"gpt4o", "claude", "grok", "groq", "mistral", "gemini"}

var validCategories = map[string]bool{
	"school":       true,
	"professional": true,
	"technical":    true,
	"company":      true,
	"general":      true,
}

var validLevels = map[string]bool{
	"level_1": true,
	"level_2": true,
	"level_3": true,
	"level_4": true,
	"level_5": true,
}

// AttemptStore is the persistence surface the usecase needs.
type AttemptStore interface {
	CreateAttempt(attempt *model.TestAttempt) error
	UpdateAttempt(attempt *model.TestAttempt) error
	FindAttemptByID(id string) (*model.TestAttempt, error)
	ListAttempts(page, pageSize int) ([]model.TestAttempt, int64, error)
}

type AttemptUsecase struct {
	repo         AttemptStore
	orchestrator *analysis.Orchestrator
	generator    *analysis.QuestionGenerator
	fallback     llm.Provider
}

func NewAttemptUsecase(repo AttemptStore, orchestrator *analysis.Orchestrator, generator *analysis.QuestionGenerator, fallback llm.Provider) *AttemptUsecase {
	return &AttemptUsecase{repo: repo, orchestrator: orchestrator, generator: generator, fallback: fallback}
}

// Start generates a fresh question set and persists a new attempt.
func (uc *AttemptUsecase) Start(ctx context.Context, category, level string) (*model.TestAttempt, []analysis.Question, error) {
	if !validCategories[category] {
		return nil, nil, fmt.Errorf("unknown category %q", category)
	}
	if !validLevels[level] {
		return nil, nil, fmt.Errorf("unknown level %q", level)
	}

	questions := uc.generator.Generate(ctx, category, level, questionsPerTest)
	rawQuestions, err := json.Marshal(questions)
	if err != nil {
		return nil, nil, err
	}

	attempt := &model.TestAttempt{
		Category:  category,
		Level:     level,
		TestName:  testName(category, level),
		Questions: string(rawQuestions),
		Answers:   "[]",
		Status:    "created",
		Analysis:  "{}",
	}
	if err := uc.repo.CreateAttempt(attempt); err != nil {
		return nil, nil, err
	}
	return attempt, questions, nil
}

// Submit stores the answers and kicks off analysis in the background. The
// attempt is returned immediately in "processing" state; clients poll the
// result endpoint until the status flips.
func (uc *AttemptUsecase) Submit(ctx context.Context, id string, answers []analysis.Answer) (*model.TestAttempt, error) {
	attempt, err := uc.repo.FindAttemptByID(id)
	if err != nil {
		return nil, err
	}
	if attempt.Completed != nil {
		return nil, fmt.Errorf("test already completed")
	}

	var questions []analysis.Question
	if err := json.Unmarshal([]byte(attempt.Questions), &questions); err != nil {
		return nil, fmt.Errorf("stored questions corrupted: %w", err)
	}

	rawAnswers, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	attempt.Answers = string(rawAnswers)
	attempt.Status = "processing"
	if err := uc.repo.UpdateAttempt(attempt); err != nil {
		return nil, err
	}

	// The background goroutine gets its own copy; the returned attempt is a
	// snapshot the handler can read without racing the analysis writes.
	snapshot := *attempt
	go uc.processAttempt(&snapshot, questions, answers)

	return attempt, nil
}

// processAttempt runs the full multi-provider analysis and persists the
// outcome. It runs detached from the request context.
func (uc *AttemptUsecase) processAttempt(attempt *model.TestAttempt, questions []analysis.Question, answers []analysis.Answer) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("attempt %s: analysis panicked: %v", attempt.ID, r)
			uc.completeDegraded(ctx, attempt, questions, answers)
		}
	}()

	result := uc.orchestrator.Analyze(ctx, questions, answers, attempt.Category, attempt.Level)

	if allFailed(result) {
		log.Printf("attempt %s: every provider failed, falling back to single-provider analysis", attempt.ID)
		uc.completeDegraded(ctx, attempt, questions, answers)
		return
	}

	blob, err := json.Marshal(result)
	if err != nil {
		log.Printf("attempt %s: cannot serialize analysis: %v", attempt.ID, err)
		uc.fail(attempt)
		return
	}

	uc.complete(attempt, string(blob), headlineScore(result))
}

// completeDegraded runs the legacy single-provider path and persists its
// result. Only the orchestrated path's catastrophic failures land here.
func (uc *AttemptUsecase) completeDegraded(ctx context.Context, attempt *model.TestAttempt, questions []analysis.Question, answers []analysis.Answer) {
	if uc.fallback == nil {
		uc.fail(attempt)
		return
	}

	legacy := analysis.AnalyzeSingle(ctx, uc.fallback, questions, answers, attempt.Category, attempt.Level)
	blob, err := json.Marshal(legacy)
	if err != nil {
		log.Printf("attempt %s: cannot serialize fallback analysis: %v", attempt.ID, err)
		uc.fail(attempt)
		return
	}

	// The legacy shape scores 0-100; rescale so the attempt score stays on
	// the same 0-1000 index scale regardless of path.
	uc.complete(attempt, string(blob), legacy.OverallScore*10)
}

func (uc *AttemptUsecase) complete(attempt *model.TestAttempt, analysisJSON string, score float64) {
	now := time.Now()
	attempt.Analysis = analysisJSON
	attempt.Score = score
	attempt.Status = "completed"
	attempt.Completed = &now
	if err := uc.repo.UpdateAttempt(attempt); err != nil {
		log.Printf("attempt %s: cannot persist analysis: %v", attempt.ID, err)
	}
}

func (uc *AttemptUsecase) fail(attempt *model.TestAttempt) {
	attempt.Status = "failed"
	if err := uc.repo.UpdateAttempt(attempt); err != nil {
		log.Printf("attempt %s: cannot persist failure: %v", attempt.ID, err)
	}
}

// Result returns the attempt in whatever state it currently is.
func (uc *AttemptUsecase) Result(id string) (*model.TestAttempt, error) {
	return uc.repo.FindAttemptByID(id)
}

// Dashboard lists attempts newest first.
func (uc *AttemptUsecase) Dashboard(page, pageSize int) ([]model.TestAttempt, int64, error) {
	return uc.repo.ListAttempts(page, pageSize)
}

type Category struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Categories returns the static category catalogue.
func (uc *AttemptUsecase) Categories() []Category {
	return []Category{
		{Value: "school", Label: "School", Description: "Academic assessments for students"},
		{Value: "professional", Label: "Professional", Description: "Career development tests"},
		{Value: "technical", Label: "Technical", Description: "Technical skill assessments"},
		{Value: "company", Label: "Company", Description: "Corporate assessments"},
		{Value: "general", Label: "General Knowledge", Description: "General knowledge tests"},
	}
}

// headlineScore picks the backward-compatible single score stored on the
// attempt row from the per-provider results.
func headlineScore(result *analysis.Result) float64 {
	for _, name := range scorePreference {
		if res, ok := result.Analyses[name]; ok && !res.Failed() {
			return res.OverallScore
		}
	}
	for _, res := range result.Analyses {
		if !res.Failed() {
			return res.OverallScore
		}
	}
	return 0
}

func allFailed(result *analysis.Result) bool {
	for _, res := range result.Analyses {
		if !res.Failed() {
			return false
		}
	}
	return true
}

// testName renders "school"/"level_1" as "School - Level 1".
func testName(category, level string) string {
	caser := func(s string) string {
		words := strings.Fields(strings.ReplaceAll(s, "_", " "))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	}
	return caser(category) + " - " + caser(level)
}
