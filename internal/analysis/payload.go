package analysis

// Question is one assessment item as stored on the test attempt.
type Question struct {
	QuestionID       int    `json:"question_id"`
	QuestionText     string `json:"question_text"`
	ExpectedCriteria string `json:"expected_criteria,omitempty"`
}

// Answer is the user's response to one question. Answers are not guaranteed
// to cover every question.
type Answer struct {
	QuestionID int    `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// NoAnswerPlaceholder is what the evaluator sees for an unanswered question.
const NoAnswerPlaceholder = "No answer provided"

// SessionPayload is the frozen input of one orchestration run. It is shared
// by reference across all provider branches; no component mutates it.
type SessionPayload struct {
	SessionID string            `json:"session_id"`
	Questions []Question        `json:"questions"`
	Answers   []Answer          `json:"answers"`
	Metadata  map[string]string `json:"metadata"`
}

// NewSessionPayload freezes the submitted questions and answers for one run.
func NewSessionPayload(questions []Question, answers []Answer, category, level string) *SessionPayload {
	return &SessionPayload{
		SessionID: category + "_" + level,
		Questions: questions,
		Answers:   answers,
		Metadata: map[string]string{
			"category": category,
			"level":    level,
		},
	}
}

// AnswerText returns the answer for a question id, or the placeholder when
// the user skipped it.
func (p *SessionPayload) AnswerText(questionID int) string {
	for _, a := range p.Answers {
		if a.QuestionID == questionID {
			return a.AnswerText
		}
	}
	return NoAnswerPlaceholder
}
