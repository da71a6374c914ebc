package analysis

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/prajwalmandlik2004/indx-corporate/internal/llm"
)

// Engine pairs a provider adapter with the role framing it analyzes under.
type Engine struct {
	Provider   llm.Provider
	RolePrompt string
}

// Orchestrator fans one assessment session out to every configured provider
// and joins the results. Provider branches are fully independent: they share
// only the read-only SessionPayload, and a failing branch surfaces as the
// {error} variant in its own slot instead of aborting the others.
type Orchestrator struct {
	engines []Engine
}

// NewOrchestrator builds an orchestrator over the given engines.
func NewOrchestrator(engines []Engine) *Orchestrator {
	return &Orchestrator{engines: engines}
}

// DefaultEngines assigns each provider its role framing.
func DefaultEngines(providers []llm.Provider) []Engine {
	engines := make([]Engine, len(providers))
	for i, p := range providers {
		engines[i] = Engine{Provider: p, RolePrompt: RolePromptFor(p.Name())}
	}
	return engines
}

// Providers lists the configured provider names.
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.engines))
	for i, eng := range o.engines {
		names[i] = eng.Provider.Name()
	}
	return names
}

// Analyze runs every provider's session analysis concurrently and returns
// the joined result. It does not return an error: per-provider failures are
// captured in the corresponding Analyses slot.
func (o *Orchestrator) Analyze(ctx context.Context, questions []Question, answers []Answer, category, level string) *Result {
	payload := NewSessionPayload(questions, answers, category, level)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		analyses = make(map[string]ProviderResult, len(o.engines))
	)

	for _, eng := range o.engines {
		wg.Add(1)
		go func(eng Engine) {
			defer wg.Done()
			res := runGuarded(ctx, eng, payload)
			mu.Lock()
			analyses[eng.Provider.Name()] = res
			mu.Unlock()
		}(eng)
	}
	wg.Wait()

	return &Result{
		SessionID: payload.SessionID,
		Analyses:  analyses,
	}
}

// runGuarded executes one provider branch with a panic barrier so a bug in
// one adapter can never take down the sibling branches.
func runGuarded(ctx context.Context, eng Engine, payload *SessionPayload) (res ProviderResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s: analysis branch panicked: %v", eng.Provider.Name(), r)
			res = ErrorResult(fmt.Errorf("analysis failed: %v", r))
		}
	}()

	return NewSessionAnalyzer(eng.Provider, eng.RolePrompt).Run(ctx, payload)
}
