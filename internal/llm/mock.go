package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned completion for the MockProvider.
type MockResponse struct {
	Raw string
	Err error
}

// MockProvider is a deterministic Provider for tests. It returns canned
// responses in FIFO order and records every request. When the queue is
// empty, InvokeFunc (if set) answers instead.
type MockProvider struct {
	mu        sync.Mutex
	name      string
	policy    DispatchPolicy
	responses []MockResponse
	Calls     []Request

	// InvokeFunc, when set and the canned queue is exhausted, computes
	// the response from the request.
	InvokeFunc func(ctx context.Context, req Request) (string, error)
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(name string, responses ...MockResponse) *MockProvider {
	return &MockProvider{name: name, responses: responses}
}

func (m *MockProvider) Invoke(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		fn := m.InvokeFunc
		m.mu.Unlock()
		if fn != nil {
			return fn(ctx, req)
		}
		return "", &ProviderError{Provider: m.name, Err: ErrEmptyCompletion}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Raw, nil
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Policy() DispatchPolicy { return m.policy }

// SetPolicy overrides the dispatch policy, e.g. to exercise serialized
// dispatch in tests.
func (m *MockProvider) SetPolicy(p DispatchPolicy) { m.policy = p }

// CallCount returns the number of Invoke calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
