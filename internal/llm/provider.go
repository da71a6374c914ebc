package llm

import (
	"context"
	"time"
)

// Provider is the adapter contract for one LLM backend. Implementations wrap
// a single transport (SDK or raw HTTP) and isolate that backend's failure
// modes behind typed errors. The returned string is the raw model output and
// is never assumed to be clean JSON.
type Provider interface {
	// Invoke sends one prompt and returns the raw text of the completion.
	Invoke(ctx context.Context, req Request) (string, error)

	// Name returns the provider identifier used as the analyses map key.
	Name() string

	// Policy returns the dispatch constraints for this backend.
	Policy() DispatchPolicy
}

// Request describes a single completion call.
type Request struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

// DispatchPolicy captures how a backend tolerates being called. Providers
// with strict RPM ceilings are serialized with a minimum inter-request delay;
// the rest may be called concurrently.
type DispatchPolicy struct {
	// Serialized forces one in-flight request at a time, in input order.
	Serialized bool

	// MinDelay is the enforced pause before each request when Serialized.
	MinDelay time.Duration

	// CallTimeout bounds a single Invoke, retries included. Reasoning
	// models need the long end of the range.
	CallTimeout time.Duration
}
