package model

import (
	"time"

	"github.com/google/uuid"
)

type TestAttempt struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Category  string     `gorm:"type:varchar(100)" json:"category"`
	Level     string     `gorm:"type:varchar(50)" json:"level"`
	TestName  string     `gorm:"type:varchar(255)" json:"test_name"`
	Questions string     `gorm:"type:jsonb" json:"questions"`
	Answers   string     `gorm:"type:jsonb" json:"answers"`
	Status    string     `gorm:"type:varchar(50)" json:"status"` // e.g. "created", "processing", "completed", "failed"
	Score     float64    `gorm:"type:float" json:"score"`        // 0-1000 index scale
	Analysis  string     `gorm:"type:jsonb" json:"analysis"`
	Completed *time.Time `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
