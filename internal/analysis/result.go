package analysis

import "encoding/json"

// QuestionResult is the parsed score+feedback record for one
// (provider, question) pair. QuestionNumber always equals the originating
// question's id regardless of what the provider echoed back.
type QuestionResult struct {
	QuestionNumber int     `json:"question_number"`
	Score          float64 `json:"score"`
	Feedback       string  `json:"feedback"`
}

// ProviderResult is one provider's full session analysis, or a captured
// failure. OverallScore is on the 0-1000 scale: 10 x the mean of the
// per-question 0-100 scores. Downstream persistence and display depend on
// that rescale, so it is fixed.
type ProviderResult struct {
	OverallScore          float64          `json:"overall_score"`
	Index                 []string         `json:"index"`
	Analysis              string           `json:"analysis"`
	OperationalProjection string           `json:"operational_projection"`
	QuestionFeedback      []QuestionResult `json:"question_feedback"`

	// Err is set when the provider branch failed; the other fields are
	// then meaningless and omitted from serialization.
	Err string `json:"-"`
}

// Failed reports whether this result is the error variant.
func (r ProviderResult) Failed() bool { return r.Err != "" }

// ErrorResult builds the failure variant of ProviderResult.
func ErrorResult(err error) ProviderResult {
	return ProviderResult{Err: err.Error()}
}

// MarshalJSON renders the tagged union: a failed branch serializes as
// {"error": "..."} only, a successful one as the full analysis object.
func (r ProviderResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Err})
	}

	type success ProviderResult
	return json.Marshal(success(r))
}

// UnmarshalJSON restores either variant from persisted storage.
func (r *ProviderResult) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != "" {
		*r = ProviderResult{Err: probe.Error}
		return nil
	}

	type success ProviderResult
	var s success
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ProviderResult(s)
	return nil
}

// Result is the output of one orchestration run, keyed by provider name.
// It is created fresh per submission and never mutated after return.
type Result struct {
	SessionID string                    `json:"session_id"`
	Analyses  map[string]ProviderResult `json:"analyses"`
}
