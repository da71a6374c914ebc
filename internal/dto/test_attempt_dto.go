package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartTestRequest struct {
	Category string `json:"category"`
	Level    string `json:"level"`
}

type AnswerRequest struct {
	QuestionID int    `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

type SubmitTestRequest struct {
	TestID  string          `json:"test_id"`
	Answers []AnswerRequest `json:"answers"`
}

type TestAttemptDTO struct {
	ID        uuid.UUID  `json:"id"`
	Category  string     `json:"category"`
	Level     string     `json:"level"`
	TestName  string     `json:"test_name"`
	Status    string     `json:"status"` // e.g. "created", "processing", "completed", "failed"
	Score     float64    `json:"score"`
	Completed *time.Time `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
